package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleSatisfies(t *testing.T) {
	tests := []struct {
		have, need Role
		want       bool
	}{
		{ReadRole, ReadRole, true},
		{ReadRole, WriteRole, false},
		{ReadRole, AdminRole, false},
		{WriteRole, ReadRole, true},
		{WriteRole, WriteRole, true},
		{WriteRole, AdminRole, false},
		{AdminRole, ReadRole, true},
		{AdminRole, WriteRole, true},
		{AdminRole, AdminRole, true},
		{"", ReadRole, false},
		{"owner", ReadRole, false},
		{AdminRole, "", false},
		{AdminRole, "superuser", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.have)+"->"+string(tt.need), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.have.Satisfies(tt.need))
		})
	}
}

func TestRoleSatisfiesIsMonotone(t *testing.T) {
	roles := []Role{ReadRole, WriteRole, AdminRole}
	for i, lower := range roles {
		for _, higher := range roles[i:] {
			for _, need := range roles {
				if lower.Satisfies(need) {
					assert.True(t, higher.Satisfies(need), "%s satisfies %s but %s does not", lower, need, higher)
				}
			}
		}
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("write")
	require.NoError(t, err)
	assert.Equal(t, WriteRole, r)

	for _, bad := range []string{"", "Admin", "owner", " read"} {
		_, err := ParseRole(bad)
		assert.Error(t, err, bad)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ada", User{Name: "Ada", Email: "ada@example.com"}.DisplayName())
	assert.Equal(t, "ada@example.com", User{Email: "ada@example.com"}.DisplayName())
}
