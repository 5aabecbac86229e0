// Package vault provides one-way hashing and verification for passwords.
package vault

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// Vault hashes plaintext secrets and verifies them against stored hashes.
type Vault interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, hash string) bool
}

// Bcrypt implements Vault using bcrypt.
type Bcrypt struct {
	cost int
}

// NewBcrypt creates a bcrypt vault. A non-positive cost falls back to the
// default cost of 12.
func NewBcrypt(cost int) *Bcrypt {
	if cost <= 0 {
		cost = bcryptCost
	}
	return &Bcrypt{cost: cost}
}

// Hash returns the bcrypt hash of plaintext.
func (v *Bcrypt) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), v.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare reports whether plaintext matches the stored hash.
func (v *Bcrypt) Compare(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
