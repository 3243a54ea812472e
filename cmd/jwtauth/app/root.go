// Package app implements the jwtauth command line tool.
package app

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	jwtauth "github.com/kumuluz/go-jwt-auth"
	"github.com/kumuluz/go-jwt-auth/config"
	"github.com/kumuluz/go-jwt-auth/validator"
)

type rootOptions struct {
	configFile string
	logLevel   string
	logger     *logrus.Logger
}

// NewRootCommand returns the jwtauth command with its subcommands.
func NewRootCommand() *cobra.Command {
	o := &rootOptions{logger: logrus.New()}

	cmd := &cobra.Command{
		Use:   "jwtauth",
		Short: "Verify bearer tokens and check role policies",
		Long: `jwtauth verifies RS256 JSON Web Tokens against the configured issuer and
keys, evaluates role policies and can run a protected demo server.

Configuration is read from --config and from JWT_AUTH_* / MP_JWT_VERIFY_*
environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(o.logLevel)
			if err != nil {
				return err
			}
			o.logger.SetLevel(level)
			o.logger.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}

	fs := cmd.PersistentFlags()
	fs.StringVarP(&o.configFile, "config", "c", "", "configuration file (yaml, json or toml)")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newVerifyCommand(o),
		newAuthorizeCommand(o),
		newServeCommand(o),
	)
	return cmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.configFile)
}

func (o *rootOptions) newValidator(ctx context.Context, cfg *config.Config) (*validator.Validator, error) {
	return cfg.NewValidator(ctx, config.WithLogger(jwtauth.NewLogrusLogger(o.logger)))
}
