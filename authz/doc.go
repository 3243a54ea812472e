/*
Package authz renders admission decisions for endpoints guarded by role
policies.

A Policy is declared per endpoint, either on the endpoint itself or on the
group it belongs to; Resolve picks the endpoint declaration over the group one.
Evaluate then compares the policy with the caller's principal:

	policy := authz.Resolve(authz.NoPolicy(), authz.Roles("admin"))
	switch authz.Evaluate(policy, p) {
	case authz.Allow:
	case authz.DenyUnauthenticated: // 401
	case authz.DenyForbidden: // 403
	}

Evaluation never fails. Unauthenticated and forbidden stay distinct decisions.
*/
package authz
