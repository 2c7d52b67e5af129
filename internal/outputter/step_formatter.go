package outputter

import (
	"fmt"
	"strings"
	"time"

	"adriskmap/internal/domain"
)

const ruleWidth = 79

// FormatStepOutput formats one analysis stage: header, description, body and timing.
func FormatStepOutput(step domain.Step, body string, duration time.Duration) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("═", ruleWidth))
	sb.WriteString(fmt.Sprintf("\nSTEP %d: %s", step.Number, step.Name))
	if duration > 0 {
		sb.WriteString(fmt.Sprintf(" ⏱️  %s", FormatDuration(duration)))
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("═", ruleWidth))
	sb.WriteString(fmt.Sprintf("\n%s\n\n", step.Description))
	sb.WriteString(body)
	if body != "" && !strings.HasSuffix(body, "\n") {
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatPathFlow renders an attack path as a chain of node labels.
func FormatPathFlow(path domain.AttackPath) string {
	parts := make([]string, 0, len(path.Path))
	for _, id := range path.Path {
		parts = append(parts, fmt.Sprintf("%s %s", GetNodeIcon(id), NodeLabel(id)))
	}
	return strings.Join(parts, " → ")
}

// NodeLabel strips the kind prefix from a node id.
func NodeLabel(id string) string {
	for _, prefix := range []string{"domain_", "user_", "group_", "comp_"} {
		if strings.HasPrefix(id, prefix) {
			return strings.TrimPrefix(id, prefix)
		}
	}
	return id
}

// GetNodeIcon returns the icon for a node id's kind
func GetNodeIcon(id string) string {
	switch {
	case strings.HasPrefix(id, "domain_"):
		return "🏢"
	case strings.HasPrefix(id, "user_"):
		return "👤"
	case strings.HasPrefix(id, "group_"):
		return "👥"
	case strings.HasPrefix(id, "comp_"):
		return "🖥️"
	default:
		return "❓"
	}
}

// GetSeverityIcon returns the icon for a severity
func GetSeverityIcon(severity domain.Severity) string {
	switch severity {
	case domain.SeverityCritical:
		return "🔴"
	case domain.SeverityHigh:
		return "🟠"
	case domain.SeverityMedium:
		return "🟡"
	default:
		return "⚪"
	}
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
