package utils

import "github.com/google/uuid"

// GenerateID returns a fresh identifier for a new proposal record.
func GenerateID() string {
	return uuid.NewString()
}
