package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"admin", "moderator", "user", "guest"} {
		role, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, Role(s), role)
	}

	for _, s := range []string{"", "Admin", "root", "superuser", "users"} {
		_, err := ParseRole(s)
		assert.Error(t, err, "role %q must not parse", s)
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"active", "inactive", "suspended", "pending"} {
		status, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, Status(s), status)
	}

	for _, s := range []string{"", "Active", "banned", "deleted"} {
		_, err := ParseStatus(s)
		assert.Error(t, err, "status %q must not parse", s)
	}
}
