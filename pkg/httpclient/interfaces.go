package httpclient

import (
	"context"
	"io"
	"net/http"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
	IsSuccess() bool
}

// FilePart describes the single file part of a multipart/form-data body.
// Reader is owned by the caller and is never closed by the transport.
type FilePart struct {
	FieldName   string
	FileName    string
	ContentType string
	Reader      io.Reader
}

// Request is everything a transport needs to issue one call.
// Body and File are mutually exclusive; Body is sent as-is.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
	File   *FilePart
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req *Request) (Response, error)
}
