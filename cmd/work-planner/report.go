package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"work-planner/internal/digest"
)

func reportCmd(a *app) *cobra.Command {
	var (
		team   string
		days   int
		dryRun bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the full pipeline for a team and email the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.setup(ctx); err != nil {
				return err
			}
			defer a.pushMetrics(ctx)

			runner, err := a.buildRunner(ctx, dryRun)
			if err != nil {
				return err
			}
			res, err := runner.Run(ctx, team, digest.RunOptions{DaysBack: days, DryRun: dryRun})
			if res != nil && res.Report != nil && output != "" {
				if werr := os.WriteFile(output, []byte(res.Report.HTML), 0o644); werr != nil {
					return fmt.Errorf("write report: %w", werr)
				}
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Team:         %s\n", res.Team)
			fmt.Fprintf(out, "Run:          %s\n", res.RunID)
			fmt.Fprintf(out, "Action items: %d\n", res.Todos.Total())
			for _, e := range res.Todos.Errors {
				fmt.Fprintf(out, "Source error: %s\n", e.String())
			}
			switch {
			case dryRun:
				fmt.Fprintf(out, "Subject:      %s (not sent)\n", res.Report.Subject)
			case res.Delivered:
				fmt.Fprintf(out, "Delivered:    %s after %d attempt(s)\n", res.Delivery.MessageID, res.Delivery.Attempts)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&team, "team", "t", "", "team key, name or alias")
	cmd.Flags().IntVarP(&days, "days", "d", 0, "days of activity to analyze (default: run.days_back)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render the report without sending it")
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the rendered HTML to this file")
	_ = cmd.MarkFlagRequired("team")
	return cmd
}
