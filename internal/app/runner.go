package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samvad-hq/apiconnection-toolkit/internal/config"
	"github.com/samvad-hq/apiconnection-toolkit/internal/logger"
	"github.com/samvad-hq/apiconnection-toolkit/pkg/apiconn"
	"github.com/samvad-hq/apiconnection-toolkit/pkg/httpclient"
	"github.com/samvad-hq/apiconnection-toolkit/pkg/profiles"
)

// Overrides are per-invocation settings layered on top of config and profile.
type Overrides struct {
	BaseAddress string
	Profile     string
	Headers     []string
	Timeout     time.Duration
}

// Runner executes single API calls for the CLI and writes the results.
type Runner struct {
	conn   *apiconn.Connection
	log    logger.Logger
	out    io.Writer
	errOut io.Writer
}

// NewRunner builds a Connection from config, the selected profile and the
// overrides, in that order of precedence (later wins for the base address,
// headers accumulate).
func NewRunner(cfg *config.Config, log logger.Logger, ov Overrides, out, errOut io.Writer) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}

	profile, err := selectProfile(cfg, ov.Profile)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if profile != nil {
		timeout = profile.Timeout()
	}
	if ov.Timeout > 0 {
		timeout = ov.Timeout
	}

	conn, err := apiconn.NewConnection(cfg.BaseAddress,
		apiconn.WithTransport(httpclient.NewRestyClient(timeout)),
		apiconn.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("init connection: %w", err)
	}
	if profile != nil {
		if err := profile.Apply(conn); err != nil {
			return nil, err
		}
	}
	if base := strings.TrimSpace(ov.BaseAddress); base != "" {
		if err := conn.AddBaseAddress(base); err != nil {
			return nil, fmt.Errorf("base address: %w", err)
		}
	}
	for _, raw := range ov.Headers {
		name, value, err := parseHeader(raw)
		if err != nil {
			return nil, err
		}
		if err := conn.AddHeader(name, value); err != nil {
			return nil, fmt.Errorf("header %q: %w", name, err)
		}
	}

	log.DebugObj("connection ready", "connection", map[string]any{
		"base_address": conn.BaseAddress(),
		"header_count": len(conn.Headers()),
		"timeout":      timeout.String(),
	})

	return &Runner{conn: conn, log: log, out: out, errOut: errOut}, nil
}

func selectProfile(cfg *config.Config, override string) (*profiles.Profile, error) {
	id := strings.TrimSpace(override)
	if id == "" {
		id = cfg.Profile
	}
	if id == "" {
		return nil, nil
	}
	reg, err := profiles.LoadRegistry(cfg.ProfilesFile)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	p, ok := reg.ByID(id)
	if !ok {
		return nil, fmt.Errorf("profile %q not found in %s", id, cfg.ProfilesFile)
	}
	return &p, nil
}

func parseHeader(raw string) (string, string, error) {
	name, value, ok := strings.Cut(raw, ":")
	if !ok || strings.TrimSpace(name) == "" {
		return "", "", fmt.Errorf("header %q must be in name:value form", raw)
	}
	return strings.TrimSpace(name), strings.TrimSpace(value), nil
}

// Get fetches url and prints the decoded JSON body. A non-2xx status is
// reported as an error after the body is echoed to errOut.
func (r *Runner) Get(ctx context.Context, url string, list bool) error {
	var (
		value any
		resp  *apiconn.Response
		err   error
	)
	if list {
		value, resp, err = apiconn.Fetch[[]json.RawMessage](ctx, r.conn, url)
	} else {
		value, resp, err = apiconn.Fetch[json.RawMessage](ctx, r.conn, url)
	}
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return r.report(resp)
	}
	r.status(resp)
	return r.writeJSON(value)
}

// Send posts or puts a JSON document. A top-level array goes through the
// list helpers.
func (r *Runner) Send(ctx context.Context, method, url string, data []byte) error {
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return fmt.Errorf("request body is not valid JSON")
	}

	var (
		resp *apiconn.Response
		err  error
	)
	if data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode request list: %w", err)
		}
		switch method {
		case http.MethodPost:
			resp, err = apiconn.PostList(ctx, r.conn, url, items)
		case http.MethodPut:
			resp, err = apiconn.PutList(ctx, r.conn, url, items)
		default:
			return fmt.Errorf("unsupported method %q", method)
		}
	} else {
		doc := json.RawMessage(data)
		switch method {
		case http.MethodPost:
			resp, err = r.conn.Post(ctx, url, doc)
		case http.MethodPut:
			resp, err = r.conn.Put(ctx, url, doc)
		default:
			return fmt.Errorf("unsupported method %q", method)
		}
	}
	if err != nil {
		return err
	}
	return r.report(resp)
}

// Delete issues a DELETE and prints the response.
func (r *Runner) Delete(ctx context.Context, url string) error {
	resp, err := r.conn.Delete(ctx, url)
	if err != nil {
		return err
	}
	return r.report(resp)
}

// Upload describes a single-file multipart call.
type Upload struct {
	Method      string
	URL         string
	Path        string
	FieldName   string
	FileName    string
	ContentType string
}

// Upload opens the file, sends it as one multipart part and closes it.
func (r *Runner) Upload(ctx context.Context, u Upload) error {
	file, err := os.Open(u.Path)
	if err != nil {
		return fmt.Errorf("open upload file: %w", err)
	}
	defer file.Close()

	field := strings.TrimSpace(u.FieldName)
	if field == "" {
		field = "file"
	}
	name := strings.TrimSpace(u.FileName)
	if name == "" {
		name = filepath.Base(u.Path)
	}
	contentType := strings.TrimSpace(u.ContentType)
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(name))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var resp *apiconn.Response
	switch strings.ToUpper(u.Method) {
	case "", http.MethodPost:
		resp, err = r.conn.PostFile(ctx, u.URL, file, contentType, field, name)
	case http.MethodPut:
		resp, err = r.conn.PutFile(ctx, u.URL, file, contentType, field, name)
	default:
		return fmt.Errorf("unsupported upload method %q", u.Method)
	}
	if err != nil {
		return err
	}
	return r.report(resp)
}

// report prints status and body, returning a status error for non-2xx.
func (r *Runner) report(resp *apiconn.Response) error {
	r.status(resp)
	if len(resp.Body) > 0 {
		w := r.out
		if !resp.IsSuccess() {
			w = r.errOut
		}
		if err := writeBody(w, resp.Body); err != nil {
			return err
		}
	}
	return resp.CheckStatus()
}

func (r *Runner) status(resp *apiconn.Response) {
	fmt.Fprintf(r.errOut, "%s %s -> %d %s\n", resp.Method, resp.URL, resp.StatusCode, http.StatusText(resp.StatusCode))
}

func (r *Runner) writeJSON(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(r.out, string(raw))
	return err
}

func writeBody(w io.Writer, body []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err == nil {
		body = buf.Bytes()
	}
	_, err := fmt.Fprintln(w, string(body))
	return err
}
