package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kumuluz/go-jwt-auth/core"
	"github.com/kumuluz/go-jwt-auth/principal"
)

func newVerifyCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [token|-]",
		Short: "Verify a token and print its principal",
		Long: `Verify a token and print the principal it carries as JSON.

The token is read from the argument, or from standard input when the
argument is "-" or missing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := readToken(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if token == "" {
				return errors.New("no token given")
			}

			p, err := o.verify(cmd, token)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
}

func (o *rootOptions) verify(cmd *cobra.Command, token string) (*principal.Principal, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	v, err := o.newValidator(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}

	p, err := v.ValidateToken(cmd.Context(), token)
	if err != nil {
		verr := core.Classify(err)
		o.logger.WithError(err).WithField("code", verr.Code).Debug("token rejected")
		return nil, fmt.Errorf("token rejected (%s): %w", verr.Code, err)
	}
	return p, nil
}

func readToken(in io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return strings.TrimSpace(args[0]), nil
	}

	b, err := io.ReadAll(io.LimitReader(in, 1<<20))
	if err != nil {
		return "", fmt.Errorf("could not read token: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
