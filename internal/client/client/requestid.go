package client

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// newRequestID returns a ULID used to correlate client and server logs.
func newRequestID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), rand.Reader)
	if err != nil {
		return ""
	}
	return id.String()
}
