package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func teamsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "List configured teams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd.Context()); err != nil {
				return err
			}
			names := a.cfg.TeamNames()
			sort.Strings(names)
			out := cmd.OutOrStdout()
			for _, key := range names {
				t := a.cfg.Teams[key]
				fmt.Fprintf(out, "%-12s %-20s channels=%d jira=%s recipients=%s\n",
					key, t.Name, len(t.SlackChannels), valueOr(t.Jira.Project, "-"), strings.Join(t.Recipients, ","))
			}
			return nil
		},
	}
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
