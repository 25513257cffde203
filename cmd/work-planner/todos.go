package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	aggregatetodos "work-planner/internal/workers/todos/aggregate-todos"
)

func todosCmd(a *app) *cobra.Command {
	var (
		team   string
		days   int
		format string
	)
	cmd := &cobra.Command{
		Use:   "todos",
		Short: "Extract and print a team's action items without sending email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q (json or yaml)", format)
			}
			ctx := cmd.Context()
			if err := a.setup(ctx); err != nil {
				return err
			}
			defer a.pushMetrics(ctx)

			runner, err := a.buildRunner(ctx, true)
			if err != nil {
				return err
			}
			res, err := runner.ExtractTodos(ctx, team, days)
			if err != nil {
				return err
			}
			return writeTodos(cmd.OutOrStdout(), format, res)
		},
	}
	cmd.Flags().StringVarP(&team, "team", "t", "", "team key, name or alias")
	cmd.Flags().IntVarP(&days, "days", "d", 0, "days of activity to analyze (default: run.days_back)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	_ = cmd.MarkFlagRequired("team")
	return cmd
}

func writeTodos(w io.Writer, format string, res *aggregatetodos.Result) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
