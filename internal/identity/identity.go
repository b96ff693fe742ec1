// Package identity hands out advisory client identities on registration.
package identity

import "github.com/google/uuid"

// Generator produces unique client identifiers.
type Generator interface {
	NewID() string
}

// UUID generates random (version 4) UUIDs.
type UUID struct{}

// NewID returns a new random UUID string.
func (UUID) NewID() string {
	return uuid.NewString()
}
