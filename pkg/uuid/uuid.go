// Package uuid provides UUID v7 generation for invocation identifiers.
// UUID v7 sorts by creation time, which keeps interleaved tool-invocation
// logs readable without an extra sequence number.
package uuid

import (
	crand "crypto/rand"
	"fmt"
	"time"
)

// UUID is a 16-byte UUID v7 identifier.
type UUID [16]byte

// NewV7 generates a new UUID v7 (draft-ietf-uuidrev-rfc4122bis):
// 48 bits of unix-millis timestamp, then version/variant bits over
// cryptographically random payload.
func NewV7() UUID {
	var u UUID

	now := time.Now().UnixMilli()
	u[0] = byte(now >> 40)
	u[1] = byte(now >> 32)
	u[2] = byte(now >> 24)
	u[3] = byte(now >> 16)
	u[4] = byte(now >> 8)
	u[5] = byte(now)

	// crypto/rand.Read does not fail on supported platforms.
	if _, err := crand.Read(u[6:]); err != nil {
		panic("uuid: crypto/rand unavailable: " + err.Error())
	}

	// Version 7 in the high nibble of byte 6, RFC 4122 variant in byte 8.
	u[6] = 0x70 | (u[6] & 0x0f)
	u[8] = 0x80 | (u[8] & 0x3f)

	return u
}

// IsZero reports whether u is the all-zero UUID.
func (u UUID) IsZero() bool {
	return u == UUID{}
}

// String renders the canonical xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx form.
func (u UUID) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		u[0:4],
		u[4:6],
		u[6:8],
		u[8:10],
		u[10:16],
	)
}
