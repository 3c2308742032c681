// Package pagination implements keyset paging over (timestamp DESC, id DESC)
// ordered listings such as production orders.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

// Params is what a list endpoint receives from the caller.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor marks the last row of the previous page.
type Cursor struct {
	CreatedAt time.Time `json:"t"`
	ID        int64     `json:"id"`
}

var errInvalidCursor = errors.New("invalid cursor")

func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer is the row count to fetch so a next page can be detected.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

func EncodeCursor(cursor Cursor) string {
	cursor.CreatedAt = cursor.CreatedAt.UTC()
	payload, _ := json.Marshal(cursor)
	return base64.RawURLEncoding.EncodeToString(payload)
}

// ParseCursor decodes an opaque cursor. A blank value is the first page and
// yields nil.
func ParseCursor(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidCursor, err)
	}
	var cursor Cursor
	if err := json.Unmarshal(raw, &cursor); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidCursor, err)
	}
	if cursor.ID <= 0 || cursor.CreatedAt.IsZero() {
		return nil, errInvalidCursor
	}
	return &cursor, nil
}

// After returns the WHERE fragment selecting rows that sort after c in
// (timeColumn DESC, idColumn DESC) order.
func (c *Cursor) After(timeColumn, idColumn string) (string, []any) {
	clause := fmt.Sprintf("%[1]s < ? OR (%[1]s = ? AND %[2]s < ?)", timeColumn, idColumn)
	return clause, []any{c.CreatedAt, c.CreatedAt, c.ID}
}

// Trim cuts a page fetched with LimitWithBuffer down to limit rows and returns
// the cursor of the next page, or "" when rows was the last page.
func Trim[T any](rows []T, limit int, key func(T) Cursor) ([]T, string) {
	limit = NormalizeLimit(limit)
	if len(rows) <= limit {
		return rows, ""
	}
	page := rows[:limit]
	return page, EncodeCursor(key(page[limit-1]))
}
