// Package config resolves run settings from embedded defaults, an optional
// YAML file or Parameter Store value, and ADRISKMAP_* environment variables.
package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"adriskmap/internal/analysis"
	"adriskmap/internal/aws"
	"adriskmap/internal/graph"
	"adriskmap/internal/logging"
	"adriskmap/internal/recommendations"
)

//go:embed defaults.yaml
var defaultConfigYAML []byte

// SSMPrefix marks a config source stored in SSM Parameter Store
const SSMPrefix = "ssm:"

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatBoth  = "both"
)

// ErrInvalidConfig is returned when resolved settings are out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every tunable setting of a run
type Config struct {
	Analysis        AnalysisConfig             `yaml:"analysis"`
	Recommendations recommendations.Thresholds `yaml:"recommendations"`
	Output          OutputConfig               `yaml:"output"`
	Logging         LoggingConfig              `yaml:"logging"`
}

// AnalysisConfig bounds graph construction
type AnalysisConfig struct {
	MaxDelegationEdgesPerUser int `yaml:"max_delegation_edges_per_user"`
}

// OutputConfig says where and how results are written
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Format    string `yaml:"format"`
}

// LoggingConfig sets the logger
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Structured bool   `yaml:"structured"`
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := parse(defaultConfigYAML, &Config{})
	if err != nil {
		panic("failed to load embedded default config: " + err.Error())
	}
	return cfg
}

// LoadConfig loads configuration from YAML.
// If configPath is empty, uses embedded default config.
// If configPath is provided, its keys override the defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if _, err := parse(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// IsSSMSource reports whether source names a Parameter Store parameter.
func IsSSMSource(source string) bool {
	return strings.HasPrefix(source, SSMPrefix)
}

// LoadFromSSM overlays the YAML stored in the named parameter onto the defaults.
func LoadFromSSM(ctx context.Context, client aws.SSMGetParameter, source string) (*Config, error) {
	name := strings.TrimPrefix(source, SSMPrefix)
	if name == "" {
		return nil, fmt.Errorf("%w: empty parameter name in %q", ErrInvalidConfig, source)
	}

	value, err := aws.FetchSSMParameter(ctx, client, name)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if _, err := parse([]byte(value), cfg); err != nil {
		return nil, fmt.Errorf("parameter %s: %w", name, err)
	}
	logging.LogDebug("Loaded config from Parameter Store", map[string]interface{}{"parameter": name})
	return cfg, nil
}

func parse(data []byte, into *Config) (*Config, error) {
	if err := yaml.Unmarshal(data, into); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return into, nil
}

// ApplyEnv overrides settings from ADRISKMAP_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	ints := []struct {
		key    string
		target *int
	}{
		{"ADRISKMAP_MAX_DELEGATION_EDGES", &c.Analysis.MaxDelegationEdgesPerUser},
		{"ADRISKMAP_KRBTGT_ROTATION_DAYS", &c.Recommendations.KrbtgtRotationDays},
		{"ADRISKMAP_MIN_PASSWORD_LENGTH", &c.Recommendations.MinPasswordLength},
		{"ADRISKMAP_FAILED_LOGON_ALERT", &c.Recommendations.FailedLogonAlert},
		{"ADRISKMAP_EMPTY_GROUP_ALERT", &c.Recommendations.EmptyGroupAlert},
	}
	for _, v := range ints {
		raw := strings.TrimSpace(getenv(v.key))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, v.key, raw)
		}
		*v.target = n
	}

	if s := strings.TrimSpace(getenv("ADRISKMAP_OUTPUT_DIR")); s != "" {
		c.Output.Directory = s
	}
	if s := strings.TrimSpace(getenv("ADRISKMAP_OUTPUT_FORMAT")); s != "" {
		c.Output.Format = strings.ToLower(s)
	}
	if s := strings.TrimSpace(getenv("ADRISKMAP_LOG_LEVEL")); s != "" {
		c.Logging.Level = strings.ToLower(s)
	}
	if s := strings.TrimSpace(getenv("ADRISKMAP_LOG_STRUCTURED")); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("%w: ADRISKMAP_LOG_STRUCTURED=%q is not a boolean", ErrInvalidConfig, s)
		}
		c.Logging.Structured = b
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var problems []string
	if c.Analysis.MaxDelegationEdgesPerUser < 0 {
		problems = append(problems, "analysis.max_delegation_edges_per_user must be >= 0")
	}
	t := c.Recommendations
	if t.KrbtgtRotationDays < 0 || t.MinPasswordLength < 0 || t.FailedLogonAlert < 0 || t.EmptyGroupAlert < 0 {
		problems = append(problems, "recommendation thresholds must be >= 0")
	}
	switch c.Output.Format {
	case FormatTable, FormatJSON, FormatBoth:
	default:
		problems = append(problems, fmt.Sprintf("output.format %q is not one of table, json, both", c.Output.Format))
	}
	if c.Output.Directory == "" {
		problems = append(problems, "output.directory must not be empty")
	}
	if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
		problems = append(problems, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// AnalysisOptions maps the settings onto analysis.Run options.
func (c *Config) AnalysisOptions() analysis.Options {
	return analysis.Options{
		Graph:      graph.Options{MaxDelegationEdgesPerUser: c.Analysis.MaxDelegationEdgesPerUser},
		Thresholds: c.Recommendations,
	}
}
