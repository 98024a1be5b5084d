package main

import (
	"fmt"

	"github.com/MrEthical07/goForms/internal"
	"github.com/spf13/cobra"
)

func newSignCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sign [raw-token]",
		Short: "Sign a raw session token; a fresh raw token is generated when omitted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app()
			if err != nil {
				return err
			}
			cfg, err := app.Config()
			if err != nil {
				return err
			}

			raw := ""
			if len(args) == 1 {
				raw = args[0]
			} else {
				if raw, err = internal.NewRawToken(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "raw: %s\n", raw)
			}

			token, err := app.Signer().Sign(cfg.CSRF.SecretKey, cfg.CSRF.FieldName, raw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
