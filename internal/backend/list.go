package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items []T
	Total int
}

type envelope[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// ListPage fetches one page of path. Both the {data, total} envelope and a
// bare JSON array are accepted; for the latter Total is the array length.
func ListPage[T any](ctx context.Context, c *Client, path string, page, limit int) (Page[T], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	var raw json.RawMessage
	if err := c.Get(ctx, path, query, &raw); err != nil {
		return Page[T]{}, err
	}
	items, total, err := decodeList[T](raw)
	if err != nil {
		return Page[T]{}, fmt.Errorf("backend: decode %s: %w", path, err)
	}
	return Page[T]{Items: items, Total: total}, nil
}

// ListAll fetches an unpaged reference list such as /categories/list.
func ListAll[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, path, query, &raw); err != nil {
		return nil, err
	}
	items, _, err := decodeList[T](raw)
	if err != nil {
		return nil, fmt.Errorf("backend: decode %s: %w", path, err)
	}
	return items, nil
}

func decodeList[T any](raw json.RawMessage) ([]T, int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, 0, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, 0, err
		}
		return items, len(items), nil
	}
	var env envelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, 0, err
	}
	if env.Data == nil {
		env.Data = []T{}
	}
	return env.Data, env.Total, nil
}
