package engine

import "github.com/google/uuid"

// generateID creates a random session ID.
func generateID() string {
	return uuid.NewString()
}

// shortID is the log-friendly prefix of an ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
