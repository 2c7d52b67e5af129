package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Load .env file if present (optional; production should use env vars directly)
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	debug      bool
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "adriskmap",
		Short: "AD Risk Map - Active Directory snapshot risk analyzer",
		Long: "Scores a collected Active Directory snapshot, builds its privilege relationship graph " +
			"and detects attack paths such as kerberoasting, delegation abuse and AS-REP roasting",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging (verbose output)")
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Config file path or ssm:<parameter-name> (defaults are embedded)")

	rootCmd.AddCommand(newAnalyzeCmd(opts), newValidateCmd(opts), newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "adriskmap %s\n", version)
		},
	}
}
