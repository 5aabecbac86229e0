package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Foo@Bar.com", "foo@bar.com"},
		{"  alice@example.com ", "alice@example.com"},
		{"BOB@EXAMPLE.COM", "bob@example.com"},
		{"already@lower.io", "already@lower.io"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEmail(tt.in))
	}
}

func TestSanitizeStripsPasswordHash(t *testing.T) {
	a := &Account{
		Email:        "alice@example.com",
		PasswordHash: "bcrypt-hash",
		FirstName:    "Alice",
		BlockedEmails: []string{
			"spam@example.com",
		},
	}

	clean := a.Sanitize()

	assert.Empty(t, clean.PasswordHash)
	assert.Equal(t, "alice@example.com", clean.Email)
	assert.Equal(t, "Alice", clean.FirstName)
	// The original is untouched.
	assert.Equal(t, "bcrypt-hash", a.PasswordHash)
}

func TestSanitizeNil(t *testing.T) {
	var a *Account
	assert.Nil(t, a.Sanitize())
}

func TestPasswordHashNeverSerialized(t *testing.T) {
	a := &Account{Email: "alice@example.com", PasswordHash: "secret"}

	raw, err := json.Marshal(a)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.NotContains(t, m, "password_hash")
	assert.NotContains(t, string(raw), "secret")
}

func TestIsPaymentLinked(t *testing.T) {
	a := &Account{}
	assert.False(t, a.IsPaymentLinked())

	a.PaymentAccountID = "acct_123"
	assert.True(t, a.IsPaymentLinked())
}
