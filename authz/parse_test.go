package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		wantKind  Kind
		wantRoles []string
	}{
		{name: "empty", input: "", wantKind: Open, wantRoles: []string{}},
		{name: "open", input: "open", wantKind: Open, wantRoles: []string{}},
		{name: "permit all", input: "Permit-All", wantKind: PermitAll, wantRoles: []string{}},
		{name: "deny all", input: "denyall", wantKind: DenyAll, wantRoles: []string{}},
		{name: "roles keep their case", input: "roles: Admin, user ,", wantKind: RolesAllowed, wantRoles: []string{"Admin", "user"}},
		{name: "roles without names", input: "roles:", wantKind: RolesAllowed, wantRoles: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ParsePolicy(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.wantKind, p.Kind())
			assert.Equal(t, tc.wantRoles, p.AllowedRoles())
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := ParsePolicy("admins-only")
		assert.Error(t, err)
	})
}
