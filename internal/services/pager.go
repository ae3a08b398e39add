package services

import (
	"encoding/base64"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// Pager collapses identical in-flight page loads: while one query for a
// list/cursor pair is running, equal requests wait for and share its result
// instead of issuing another query.
type Pager struct {
	group singleflight.Group
}

// LoadPage runs fn once per key among concurrent callers. shared reports
// whether the result came from another caller's request.
func LoadPage[T any](p *Pager, key string, fn func() (T, error)) (page T, shared bool, err error) {
	v, err, shared := p.group.Do(key, func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, shared, err
	}
	return v.(T), shared, nil
}

// Cursor is a keyset position in a reverse-chronological listing.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// Encode returns the opaque form handed to clients.
func (c Cursor) Encode() string {
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses an opaque cursor. An empty string is the first page.
func DecodeCursor(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, invalid("malformed cursor")
	}
	ts, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return nil, invalid("malformed cursor")
	}
	at, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, invalid("malformed cursor")
	}
	return &Cursor{CreatedAt: at, ID: id}, nil
}
