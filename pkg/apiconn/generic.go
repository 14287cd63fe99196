package apiconn

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

// Fetch issues a GET with Accept: application/json and decodes a 2xx body
// into T. A non-2xx status or an empty body yields T's zero value and a nil
// error; the returned Response lets callers tell the two apart.
func Fetch[T any](ctx context.Context, c *Connection, url string) (T, *Response, error) {
	var zero T
	resp, err := c.do(ctx, "get", http.MethodGet, url, mimeJSON, nil, nil)
	if err != nil {
		return zero, nil, err
	}
	if !resp.IsSuccess() || len(bytes.TrimSpace(resp.Body)) == 0 {
		return zero, resp, nil
	}

	var out T
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return zero, resp, serializationErr("get", resp.URL, err)
	}
	return out, resp, nil
}

// Get returns the decoded body of a successful GET, or T's zero value when
// the server answers with a non-2xx status.
func Get[T any](ctx context.Context, c *Connection, url string) (T, error) {
	v, _, err := Fetch[T](ctx, c, url)
	return v, err
}

// GetList decodes a JSON array. A non-2xx status yields a nil slice.
func GetList[T any](ctx context.Context, c *Connection, url string) ([]T, error) {
	v, _, err := Fetch[[]T](ctx, c, url)
	return v, err
}

// PostList serializes data as a JSON array and issues a POST.
func PostList[T any](ctx context.Context, c *Connection, url string, data []T) (*Response, error) {
	return c.sendJSON(ctx, "post", http.MethodPost, url, data)
}

// PutList serializes data as a JSON array and issues a PUT.
func PutList[T any](ctx context.Context, c *Connection, url string, data []T) (*Response, error) {
	return c.sendJSON(ctx, "put", http.MethodPut, url, data)
}
