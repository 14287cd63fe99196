package apiconn

import (
	"context"
	"net/http"
	"sync"

	"github.com/samvad-hq/apiconnection-toolkit/pkg/httpclient"
)

type fakeResponse struct {
	status  int
	body    []byte
	header  http.Header
	success *bool
}

func (f *fakeResponse) Body() []byte        { return f.body }
func (f *fakeResponse) StatusCode() int     { return f.status }
func (f *fakeResponse) Header() http.Header { return f.header }
func (f *fakeResponse) IsSuccess() bool {
	if f.success != nil {
		return *f.success
	}
	return f.status >= 200 && f.status < 300
}

// fakeTransport records every request and answers with a fixed response or error.
type fakeTransport struct {
	mu       sync.Mutex
	requests []*httpclient.Request
	status   int
	body     []byte
	success  *bool
	err      error
}

func (f *fakeTransport) Do(_ context.Context, req *httpclient.Request) (httpclient.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	return &fakeResponse{status: status, body: f.body, header: http.Header{}, success: f.success}, nil
}

func (f *fakeTransport) last() *httpclient.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

type widget struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Tags  []string `json:"tags,omitempty"`
	Price float64  `json:"price"`
}
