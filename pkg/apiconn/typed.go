package apiconn

import (
	"context"
	"io"
)

// TypedConnection binds a Connection to a single payload type T. Every
// method delegates to the per-call functions, so both variants share one
// request path.
type TypedConnection[T any] struct {
	conn *Connection
}

// NewTypedConnection builds a Connection and binds it to T.
func NewTypedConnection[T any](baseAddress string, opts ...Option) (*TypedConnection[T], error) {
	c, err := NewConnection(baseAddress, opts...)
	if err != nil {
		return nil, err
	}
	return &TypedConnection[T]{conn: c}, nil
}

// Bind views an existing Connection through payload type T. Headers and
// base address stay shared with c.
func Bind[T any](c *Connection) *TypedConnection[T] {
	return &TypedConnection[T]{conn: c}
}

// Conn returns the underlying per-call Connection.
func (t *TypedConnection[T]) Conn() *Connection { return t.conn }

// AddBaseAddress replaces the base address of the underlying Connection.
func (t *TypedConnection[T]) AddBaseAddress(url string) error { return t.conn.AddBaseAddress(url) }

// AddHeader appends a default header on the underlying Connection.
func (t *TypedConnection[T]) AddHeader(name, value string) error {
	return t.conn.AddHeader(name, value)
}

// Get decodes a 2xx body into T; any other status yields T's zero value and a nil error.
func (t *TypedConnection[T]) Get(ctx context.Context, url string) (T, error) {
	return Get[T](ctx, t.conn, url)
}

// GetList decodes a 2xx JSON array; any other status yields a nil slice.
func (t *TypedConnection[T]) GetList(ctx context.Context, url string) ([]T, error) {
	return GetList[T](ctx, t.conn, url)
}

// Fetch is Get with the raw response, so an empty success can be told from a failed call.
func (t *TypedConnection[T]) Fetch(ctx context.Context, url string) (T, *Response, error) {
	return Fetch[T](ctx, t.conn, url)
}

// Post sends data as a JSON body.
func (t *TypedConnection[T]) Post(ctx context.Context, url string, data T) (*Response, error) {
	return t.conn.Post(ctx, url, data)
}

// PostList sends data as a JSON array.
func (t *TypedConnection[T]) PostList(ctx context.Context, url string, data []T) (*Response, error) {
	return PostList(ctx, t.conn, url, data)
}

// PostFile uploads file as a single multipart part. The caller closes file.
func (t *TypedConnection[T]) PostFile(ctx context.Context, url string, file io.Reader, contentType, fieldName, fileName string) (*Response, error) {
	return t.conn.PostFile(ctx, url, file, contentType, fieldName, fileName)
}

// Put sends data as a JSON body.
func (t *TypedConnection[T]) Put(ctx context.Context, url string, data T) (*Response, error) {
	return t.conn.Put(ctx, url, data)
}

// PutList sends data as a JSON array.
func (t *TypedConnection[T]) PutList(ctx context.Context, url string, data []T) (*Response, error) {
	return PutList(ctx, t.conn, url, data)
}

// PutFile is PostFile issued as PUT.
func (t *TypedConnection[T]) PutFile(ctx context.Context, url string, file io.Reader, contentType, fieldName, fileName string) (*Response, error) {
	return t.conn.PutFile(ctx, url, file, contentType, fieldName, fileName)
}

// Delete issues a DELETE and returns the response whatever its status.
func (t *TypedConnection[T]) Delete(ctx context.Context, url string) (*Response, error) {
	return t.conn.Delete(ctx, url)
}
