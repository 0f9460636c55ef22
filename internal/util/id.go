package util

import "github.com/google/uuid"

// NewID returns a fresh random identifier. Records in every collection are
// keyed by these, so they only need to be unique, not sortable.
func NewID() string {
	return uuid.NewString()
}
