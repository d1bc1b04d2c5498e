package authpad

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewID returns a lexicographically sortable unique id for new user and OTP
// token rows. Stores may substitute their own scheme (e.g. database-side
// UUIDs) as long as ids stay unique.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
