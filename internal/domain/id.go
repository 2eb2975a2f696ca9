package domain

import (
	"strings"

	"github.com/google/uuid"
)

// idLength is the length of the short record tokens used for reads and sessions.
const idLength = 8

// NewID returns a short opaque token for a new record. Uniqueness is
// collision-resistant, not enforced: 8 hex chars from a random UUID.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
}
