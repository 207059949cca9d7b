package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cardcycle/internal/auth"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()

	return out.String(), err
}

func TestIssueToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_ISSUER", "cardcycle-test")

	userID := uuid.New()

	out, err := runRoot(t, "issue-token", userID.String(), "--ttl", "1h")
	require.NoError(t, err)

	got, err := auth.New("test-secret", "cardcycle-test").Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestIssueToken_Errors(t *testing.T) {
	type testCase struct {
		name   string
		secret string
		args   []string
	}

	tests := []testCase{
		{name: "MissingUserID", secret: "s", args: []string{"issue-token"}},
		{name: "InvalidUserID", secret: "s", args: []string{"issue-token", "not-a-uuid"}},
		{name: "NonPositiveTTL", secret: "s", args: []string{"issue-token", uuid.NewString(), "--ttl", "0s"}},
		{name: "MissingSecret", args: []string{"issue-token", uuid.NewString(), "--ttl", "1h"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", tt.secret)

			_, err := runRoot(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
