package apiconn

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/samvad-hq/apiconnection-toolkit/pkg/httpclient"
)

// Response is the raw, uninterpreted result of a call.
type Response struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte

	// success is the transport's own classification, when one was made.
	success    bool
	classified bool
}

func newResponse(method, url string, r httpclient.Response) *Response {
	return &Response{
		Method:     method,
		URL:        url,
		StatusCode: r.StatusCode(),
		Header:     r.Header(),
		Body:       r.Body(),
		success:    r.IsSuccess(),
		classified: true,
	}
}

// IsSuccess reports the transport's success classification. A Response
// built by hand falls back to checking for a 2xx status.
func (r *Response) IsSuccess() bool {
	if r == nil {
		return false
	}
	if r.classified {
		return r.success
	}
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if r == nil {
		return serializationErr("decode", "", errNilResponse)
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return serializationErr("decode", r.URL, err)
	}
	return nil
}

// CheckStatus returns a KindStatus error for any non-2xx response.
func (r *Response) CheckStatus() error {
	if r == nil {
		return statusErr("check", "", 0, nil)
	}
	if r.IsSuccess() {
		return nil
	}
	return statusErr(strings.ToLower(r.Method), r.URL, r.StatusCode, r.Body)
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
