package main

import (
	"errors"
	"fmt"

	goForms "github.com/MrEthical07/goForms"
	"github.com/MrEthical07/goForms/settings"
	"github.com/MrEthical07/goForms/signer"
	"github.com/spf13/cobra"
)

const envPrefix = "GOFORMS_"

type rootOptions struct {
	secret     string
	envFile    string
	configFile string
	field      string
	salt       string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "goforms-token",
		Short:         "Sign and verify goForms CSRF tokens",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&opts.secret, "secret", "", "CSRF secret key (default: CSRF_SECRET_KEY or SECRET_KEY from config, .env or GOFORMS_* env)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file to read settings from")
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML settings file")
	root.PersistentFlags().StringVar(&opts.field, "field", "", "form field name (default: CSRF_FIELD_NAME or csrf_token)")
	root.PersistentFlags().StringVar(&opts.salt, "salt", signer.DefaultSalt, "signing salt")

	root.AddCommand(newSignCmd(opts), newVerifyCmd(opts), newLoadtestCmd(opts))
	return root
}

// settings layers, lowest precedence first: YAML file, dotenv file, GOFORMS_* env,
// then --secret and --field.
func (o *rootOptions) settings() (settings.Map, error) {
	var layers []settings.Map
	if o.configFile != "" {
		m, err := settings.LoadYAML(o.configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		layers = append(layers, m)
	}
	if o.envFile != "" {
		m, err := settings.LoadDotEnv(o.envFile)
		if err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
		layers = append(layers, m)
	}
	layers = append(layers, settings.FromEnviron(envPrefix))

	flags := settings.Map{}
	if o.secret != "" {
		flags[goForms.KeyCSRFSecretKey] = o.secret
	}
	if o.field != "" {
		flags[goForms.KeyCSRFFieldName] = o.field
	}
	layers = append(layers, flags)

	return settings.Merge(layers...), nil
}

func (o *rootOptions) app() (*goForms.App, error) {
	s, err := o.settings()
	if err != nil {
		return nil, err
	}
	app, err := goForms.New().
		WithSettings(s).
		WithSigner(signer.New(signer.WithSalt(o.salt))).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true).
		Build()
	if errors.Is(err, goForms.ErrSecretKeyRequired) {
		return nil, fmt.Errorf("no secret: pass --secret or set %sCSRF_SECRET_KEY", envPrefix)
	}
	return app, err
}
