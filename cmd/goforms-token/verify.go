package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goForms/internal"
	"github.com/spf13/cobra"
)

func newVerifyCmd(opts *rootOptions) *cobra.Command {
	var (
		expectRaw string
		maxAge    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a signed token and print its raw session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app()
			if err != nil {
				return err
			}
			cfg, err := app.Config()
			if err != nil {
				return err
			}

			limit := cfg.CSRF.TimeLimit
			if cmd.Flags().Changed("max-age") {
				limit = maxAge
			}

			secrets := append([][]byte{cfg.CSRF.SecretKey}, cfg.CSRF.SecretKeyFallbacks...)
			raw, err := app.Signer().Verify(args[0], secrets, limit, cfg.CSRF.FieldName)
			if err != nil {
				return fmt.Errorf("verify: %w", err)
			}
			if expectRaw != "" && !internal.Equal(expectRaw, raw) {
				return errors.New("verify: raw token does not match")
			}

			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		},
	}

	cmd.Flags().StringVar(&expectRaw, "raw", "", "fail unless the token carries this raw session token")
	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "maximum token age; 0 disables expiry (default: CSRF_TIME_LIMIT)")
	return cmd
}
