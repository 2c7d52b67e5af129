package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"adriskmap/internal/app"
	"adriskmap/internal/logging"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <snapshot>",
		Short: "Check that a snapshot can be analyzed and show how each section decoded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := setup(ctx, root)
			if err != nil {
				return err
			}

			auditor, err := app.NewAuditor(ctx, cfg, version, args[0])
			if err != nil {
				return fmt.Errorf("error initializing auditor: %w", err)
			}
			s, err := auditor.Load(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			sections := logging.GetMetrics().Summary().Sections
			names := make([]string, 0, len(sections))
			for name := range sections {
				names = append(names, name)
			}
			sort.Strings(names)

			tbl := table.New("Section", "Status", "Records", "Skipped")
			tbl.WithWriter(out)
			tbl.WithHeaderFormatter(color.New(color.FgGreen, color.Underline).SprintfFunc()).
				WithFirstColumnFormatter(color.New(color.FgYellow).SprintfFunc())
			for _, name := range names {
				sec := sections[name]
				tbl.AddRow(name, sec.Status, sec.Records, sec.Skipped)
			}
			fmt.Fprintln(out)
			tbl.Print()
			fmt.Fprintf(out, "\n✓ %s is a valid snapshot of %s (%d users, %d computers, %d groups)\n",
				args[0], s.Domain, len(s.Users), len(s.Computers), len(s.Groups))
			return nil
		},
	}
}
