package uid

import "github.com/google/uuid"

// New generates a time-ordered identifier, so request IDs sort in the
// order requests arrived when grepping logs.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
