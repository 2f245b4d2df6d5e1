package activity

import (
	"encoding/base64"
	"encoding/binary"
	"time"
)

// cursorLen is the decoded size of a cursor: two big-endian int64s,
// microsecond timestamp then event id.
const cursorLen = 16

// Cursor marks a position in the feed ordering. The zero Cursor means
// "start from the newest event".
type Cursor struct {
	CreatedAt time.Time
	ID        int64
}

// IsZero reports whether the cursor is the start-of-feed position.
func (c Cursor) IsZero() bool {
	return c.ID == 0 && c.CreatedAt.IsZero()
}

// Encode renders the cursor as an opaque URL-safe token. The zero cursor
// encodes as the empty string.
func (c Cursor) Encode() string {
	if c.IsZero() {
		return ""
	}
	var buf [cursorLen]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(c.CreatedAt.UnixMicro()))
	binary.BigEndian.PutUint64(buf[8:16], uint64(c.ID))
	return base64.RawURLEncoding.EncodeToString(buf[:])
}

// DecodeCursor parses a cursor token. Any malformed token decodes to the zero
// cursor so a stale or corrupted token restarts the feed instead of failing
// the request.
func DecodeCursor(s string) Cursor {
	if s == "" {
		return Cursor{}
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || len(raw) != cursorLen {
		return Cursor{}
	}
	ts := int64(binary.BigEndian.Uint64(raw[0:8]))
	id := int64(binary.BigEndian.Uint64(raw[8:16]))
	if ts <= 0 || id <= 0 {
		return Cursor{}
	}
	return Cursor{CreatedAt: time.UnixMicro(ts).UTC(), ID: id}
}
