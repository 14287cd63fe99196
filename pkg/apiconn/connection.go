package apiconn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/apiconnection-toolkit/pkg/httpclient"
	"golang.org/x/net/http/httpguts"
)

const (
	mimeJSON      = "application/json"
	mimeMultipart = "multipart/form-data"
)

var (
	errNilConnection = errors.New("connection is nil")
	errNilResponse   = errors.New("response is nil")
	errNilFile       = errors.New("file reader is nil")
)

// Connection is a JSON REST client whose payload type is chosen per call.
//
// The base address and default headers may be changed at any time; each
// request works on a snapshot taken when it starts, so in-flight requests
// never observe a half-applied update.
type Connection struct {
	mu      sync.RWMutex
	base    *url.URL
	headers http.Header

	transport httpclient.Client
	log       Logger
}

// NewConnection builds a Connection. An empty baseAddress means relative
// URLs are rejected until AddBaseAddress is called.
func NewConnection(baseAddress string, opts ...Option) (*Connection, error) {
	o := buildOptions(opts)
	c := &Connection{
		headers:   make(http.Header),
		transport: o.transport,
		log:       o.log,
	}
	if strings.TrimSpace(baseAddress) != "" {
		if err := c.AddBaseAddress(baseAddress); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddBaseAddress replaces the base address used to resolve relative URLs.
func (c *Connection) AddBaseAddress(raw string) error {
	if c == nil {
		return configErr("set base address", raw, errNilConnection)
	}
	base, err := parseBaseAddress(raw)
	if err != nil {
		return configErr("set base address", raw, err)
	}
	c.mu.Lock()
	c.base = base
	c.mu.Unlock()
	return nil
}

// AddHeader appends a default header sent with every subsequent request.
// Repeated names accumulate values instead of replacing them.
func (c *Connection) AddHeader(name, value string) error {
	if c == nil {
		return configErr("add header", "", errNilConnection)
	}
	name = strings.TrimSpace(name)
	if !httpguts.ValidHeaderFieldName(name) {
		return configErr("add header", "", fmt.Errorf("invalid header name %q", name))
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return configErr("add header", "", fmt.Errorf("invalid value for header %q", name))
	}
	c.mu.Lock()
	c.headers.Add(name, value)
	c.mu.Unlock()
	return nil
}

// BaseAddress returns the current base address, or "" when unset.
func (c *Connection) BaseAddress() string {
	if c == nil {
		return ""
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.base == nil {
		return ""
	}
	return c.base.String()
}

// Headers returns a copy of the default header set.
func (c *Connection) Headers() http.Header {
	if c == nil {
		return http.Header{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers.Clone()
}

// Post serializes data as JSON and issues a POST. The response is returned
// whatever its status.
func (c *Connection) Post(ctx context.Context, url string, data any) (*Response, error) {
	return c.sendJSON(ctx, "post", http.MethodPost, url, data)
}

// Put serializes data as JSON and issues a PUT.
func (c *Connection) Put(ctx context.Context, url string, data any) (*Response, error) {
	return c.sendJSON(ctx, "put", http.MethodPut, url, data)
}

// PostFile uploads file as the single part of a multipart/form-data POST.
// The caller owns file: it is read but never closed.
func (c *Connection) PostFile(ctx context.Context, url string, file io.Reader, contentType, fieldName, fileName string) (*Response, error) {
	return c.sendFile(ctx, "post file", http.MethodPost, url, file, contentType, fieldName, fileName)
}

// PutFile is PostFile issued as PUT.
func (c *Connection) PutFile(ctx context.Context, url string, file io.Reader, contentType, fieldName, fileName string) (*Response, error) {
	return c.sendFile(ctx, "put file", http.MethodPut, url, file, contentType, fieldName, fileName)
}

// Delete issues a DELETE and returns the response whatever its status.
func (c *Connection) Delete(ctx context.Context, url string) (*Response, error) {
	return c.do(ctx, "delete", http.MethodDelete, url, mimeJSON, nil, nil)
}

func (c *Connection) sendJSON(ctx context.Context, op, method, url string, data any) (*Response, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, serializationErr(op, url, err)
	}
	return c.do(ctx, op, method, url, mimeJSON, body, nil)
}

func (c *Connection) sendFile(ctx context.Context, op, method, url string, file io.Reader, contentType, fieldName, fileName string) (*Response, error) {
	if file == nil {
		return nil, configErr(op, url, errNilFile)
	}
	part := &httpclient.FilePart{
		FieldName:   fieldName,
		FileName:    fileName,
		ContentType: contentType,
		Reader:      file,
	}
	return c.do(ctx, op, method, url, mimeMultipart, nil, part)
}

// do resolves the URL against a config snapshot, sets Accept for this call
// only and hands the request to the transport.
func (c *Connection) do(ctx context.Context, op, method, rawURL, accept string, body []byte, file *httpclient.FilePart) (*Response, error) {
	if c == nil {
		return nil, configErr(op, rawURL, errNilConnection)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	snap := c.snapshot()
	target, err := snap.resolve(rawURL)
	if err != nil {
		return nil, configErr(op, rawURL, err)
	}

	// Set drops any Accept carried in the defaults.
	header := snap.headers
	header.Set("Accept", accept)

	start := time.Now()
	raw, err := c.transport.Do(ctx, &httpclient.Request{
		Method: method,
		URL:    target,
		Header: header,
		Body:   body,
		File:   file,
	})
	if err != nil {
		c.log.WarnObj("request failed", "request", map[string]any{
			"method":     method,
			"url":        target,
			"elapsed_ms": time.Since(start).Milliseconds(),
			"error":      err.Error(),
		})
		return nil, networkErr(op, target, err)
	}

	resp := newResponse(method, target, raw)
	c.log.DebugObj("request completed", "request", map[string]any{
		"method":     method,
		"url":        target,
		"status":     resp.StatusCode,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return resp, nil
}

type configSnapshot struct {
	base    *url.URL
	headers http.Header
}

func (c *Connection) snapshot() configSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := configSnapshot{headers: c.headers.Clone()}
	if snap.headers == nil {
		snap.headers = make(http.Header)
	}
	if c.base != nil {
		b := *c.base
		snap.base = &b
	}
	return snap
}

// resolve turns raw into an absolute URL. Absolute inputs pass through.
func (s configSnapshot) resolve(raw string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	if s.base == nil {
		return "", fmt.Errorf("%w: relative url %q with no base address", ErrInvalidAddress, raw)
	}
	return s.base.ResolveReference(ref).String(), nil
}

// ValidateBaseAddress reports whether raw is accepted by AddBaseAddress.
func ValidateBaseAddress(raw string) error {
	if _, err := parseBaseAddress(raw); err != nil {
		return configErr("validate base address", raw, err)
	}
	return nil
}

// parseBaseAddress requires an absolute URI. The path always gets a
// trailing slash so "http://h/api" + "users" becomes "http://h/api/users".
func parseBaseAddress(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty base address", ErrInvalidAddress)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute uri", ErrInvalidAddress, raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		if u.RawPath != "" {
			u.RawPath += "/"
		}
	}
	return u, nil
}
