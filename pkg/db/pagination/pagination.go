// Package pagination implements keyset pagination over snowflake ids.
// Snowflake ids grow with time, so "id < cursor" walks newest first.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"strconv"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

var ErrInvalidPageToken = errors.New("invalid_page_token")

type Pagination struct {
	PageToken string `form:"page_token" json:"page_token,omitempty"`
	PageSize  int    `form:"page_size" json:"page_size,omitempty"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token,omitempty"`
	HasMore       bool   `json:"has_more"`
}

type Cursor struct {
	ID string `json:"id"`
}

// Size clamps the requested page size.
func (p Pagination) Size() int {
	switch {
	case p.PageSize <= 0:
		return DefaultPageSize
	case p.PageSize > MaxPageSize:
		return MaxPageSize
	default:
		return p.PageSize
	}
}

func EncodeCursor(c Cursor) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidPageToken
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil || c.ID == "" {
		return Cursor{}, ErrInvalidPageToken
	}
	return c, nil
}

// Scope orders by the given id column descending and fetches one extra row
// so BuildCursorPageInfo can tell whether another page exists.
func Scope(p Pagination, column string) (func(*gorm.DB) *gorm.DB, error) {
	var after int64
	if p.PageToken != "" {
		c, err := DecodeCursor(p.PageToken)
		if err != nil {
			return nil, err
		}
		after, err = strconv.ParseInt(c.ID, 10, 64)
		if err != nil {
			return nil, ErrInvalidPageToken
		}
	}
	return func(db *gorm.DB) *gorm.DB {
		if after != 0 {
			db = db.Where(column+" < ?", after)
		}
		return db.Order(column + " DESC").Limit(p.Size() + 1)
	}, nil
}

// BuildCursorPageInfo trims the look-ahead row and returns the page info.
func BuildCursorPageInfo[T any](items []T, size int, cursorID func(T) string) ([]T, *PageInfo) {
	if len(items) <= size {
		return items, &PageInfo{}
	}
	items = items[:size]
	token, err := EncodeCursor(Cursor{ID: cursorID(items[len(items)-1])})
	if err != nil {
		return items, &PageInfo{}
	}
	return items, &PageInfo{NextPageToken: token, HasMore: true}
}
