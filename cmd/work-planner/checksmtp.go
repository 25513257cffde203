package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"work-planner/internal/digest"
)

func checkSMTPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-smtp",
		Short: "Connect to the SMTP server and authenticate without sending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.setup(ctx); err != nil {
				return err
			}
			mailer, err := digest.NewMailer(ctx, a.cfg, nil, a.log)
			if err != nil {
				return err
			}
			if err := mailer.CheckConnection(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "SMTP connection to %s OK\n", a.cfg.Email.SMTP.Address())
			return nil
		},
	}
}
