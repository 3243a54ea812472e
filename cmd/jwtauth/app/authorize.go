package app

import (
	"github.com/spf13/cobra"

	"github.com/kumuluz/go-jwt-auth/authz"
	"github.com/kumuluz/go-jwt-auth/principal"
)

type authorizeResult struct {
	Policy    string `json:"policy"`
	Principal string `json:"principal,omitempty"`
	Decision  string `json:"decision"`
	Status    int    `json:"status"`
}

func newAuthorizeCommand(o *rootOptions) *cobra.Command {
	var policySpec string

	cmd := &cobra.Command{
		Use:   "authorize --policy <policy> [token|-]",
		Short: "Evaluate a role policy for a token",
		Long: `Evaluate a role policy for the principal of a token and print the
decision. Without a token the caller is anonymous.

Policies: open, permit-all, deny-all, roles:<role>[,<role>...]`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := authz.ParsePolicy(policySpec)
			if err != nil {
				return err
			}

			token, err := readToken(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			var p *principal.Principal
			if token != "" {
				if p, err = o.verify(cmd, token); err != nil {
					return err
				}
			}

			decision := authz.Evaluate(policy, p)
			return printJSON(cmd.OutOrStdout(), authorizeResult{
				Policy:    policy.String(),
				Principal: p.Name(),
				Decision:  decision.String(),
				Status:    decision.StatusCode(),
			})
		},
	}

	cmd.Flags().StringVarP(&policySpec, "policy", "p", "", "policy to evaluate")
	_ = cmd.MarkFlagRequired("policy")
	return cmd
}
