// Package pagination encodes keyset resume points as opaque cursors.
package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is a keyset resume point: listing continues at entries whose Field
// value is >= Value. Resumption is inclusive, so the entry the cursor was
// taken from is served again as the first row of the next page.
type Cursor struct {
	Field string
	Value string
}

// Encode renders the cursor as base64(field:value).
func Encode(field, value string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(field + ":" + value))
}

// Decode parses base64(field:value) into a Cursor.
func Decode(cursor string) (Cursor, error) {
	cursor = strings.TrimSpace(cursor)
	if cursor == "" {
		return Cursor{}, ErrInvalidCursor
	}
	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return Cursor{}, ErrInvalidCursor
	}
	return Cursor{Field: parts[0], Value: parts[1]}, nil
}
