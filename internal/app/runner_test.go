package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/apiconnection-toolkit/internal/config"
	"github.com/samvad-hq/apiconnection-toolkit/pkg/apiconn"
)

type recorded struct {
	method string
	path   string
	header http.Header
	body   []byte
}

func newRecordingServer(t *testing.T, status int, reply string, calls *[]recorded) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*calls = append(*calls, recorded{method: r.Method, path: r.URL.Path, header: r.Header.Clone(), body: body})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
}

func newTestRunner(t *testing.T, ov Overrides) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	r, err := NewRunner(&config.Config{Timeout: 2 * time.Second}, nil, ov, &out, &errOut)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r, &out, &errOut
}

func TestRunnerGetPrintsBody(t *testing.T) {
	var calls []recorded
	srv := newRecordingServer(t, http.StatusOK, `{"id":1,"name":"gear"}`, &calls)
	defer srv.Close()

	r, out, errOut := newTestRunner(t, Overrides{BaseAddress: srv.URL + "/api", Headers: []string{"X-Team: core", "X-Team:ops"}})
	if err := r.Get(context.Background(), "widgets/1", false); err != nil {
		t.Fatalf("Get: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("stdout is not JSON: %q", out.String())
	}
	if got["name"] != "gear" {
		t.Fatalf("stdout = %v", got)
	}
	if !strings.Contains(errOut.String(), "200") {
		t.Fatalf("status line missing: %q", errOut.String())
	}
	if len(calls) != 1 || calls[0].path != "/api/widgets/1" {
		t.Fatalf("calls = %#v", calls)
	}
	if v := calls[0].header.Values("X-Team"); len(v) != 2 || v[0] != "core" || v[1] != "ops" {
		t.Fatalf("X-Team = %v", v)
	}
}

func TestRunnerGetReportsFailureStatus(t *testing.T) {
	var calls []recorded
	srv := newRecordingServer(t, http.StatusNotFound, `{"error":"missing"}`, &calls)
	defer srv.Close()

	r, out, errOut := newTestRunner(t, Overrides{BaseAddress: srv.URL})
	err := r.Get(context.Background(), "widgets", true)
	if !apiconn.IsKind(err, apiconn.KindStatus) {
		t.Fatalf("expected status error, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("stdout should be empty, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "missing") {
		t.Fatalf("error body not echoed: %q", errOut.String())
	}
}

func TestRunnerSendUsesListHelpersForArrays(t *testing.T) {
	var calls []recorded
	srv := newRecordingServer(t, http.StatusCreated, `{"ok":true}`, &calls)
	defer srv.Close()

	r, _, _ := newTestRunner(t, Overrides{BaseAddress: srv.URL})
	ctx := context.Background()

	if err := r.Send(ctx, http.MethodPost, "widgets", []byte(` [{"id":1},{"id":2}] `)); err != nil {
		t.Fatalf("Send list: %v", err)
	}
	if err := r.Send(ctx, http.MethodPut, "widgets/1", []byte(`{"id":1}`)); err != nil {
		t.Fatalf("Send doc: %v", err)
	}
	if err := r.Send(ctx, http.MethodPost, "widgets", []byte(`{nope`)); err == nil {
		t.Fatalf("expected invalid JSON to be rejected")
	}

	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	var items []map[string]int
	if err := json.Unmarshal(calls[0].body, &items); err != nil || len(items) != 2 {
		t.Fatalf("list body = %s (%v)", calls[0].body, err)
	}
	if calls[1].method != http.MethodPut || string(calls[1].body) != `{"id":1}` {
		t.Fatalf("doc call = %s %s", calls[1].method, calls[1].body)
	}
}

func TestRunnerDeleteReturnsStatusError(t *testing.T) {
	var calls []recorded
	srv := newRecordingServer(t, http.StatusConflict, "", &calls)
	defer srv.Close()

	r, _, _ := newTestRunner(t, Overrides{BaseAddress: srv.URL})
	if err := r.Delete(context.Background(), "widgets/1"); !apiconn.IsKind(err, apiconn.KindStatus) {
		t.Fatalf("expected status error, got %v", err)
	}
	if len(calls) != 1 || calls[0].method != http.MethodDelete {
		t.Fatalf("calls = %#v", calls)
	}
}

func TestRunnerUploadDefaultsNameAndContentType(t *testing.T) {
	var field, name, ctype, content string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		for k, files := range r.MultipartForm.File {
			field = k
			name = files[0].Filename
			ctype = files[0].Header.Get("Content-Type")
			f, _ := files[0].Open()
			data, _ := io.ReadAll(f)
			f.Close()
			content = string(data)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(`{"a":1}`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	r, _, _ := newTestRunner(t, Overrides{BaseAddress: srv.URL})
	if err := r.Upload(context.Background(), Upload{Method: "put", URL: "files", Path: path}); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if field != "file" || name != "data.json" || ctype != "application/json" || content != `{"a":1}` {
		t.Fatalf("got field=%q name=%q type=%q content=%q", field, name, ctype, content)
	}

	if err := r.Upload(context.Background(), Upload{URL: "files", Path: path + ".missing"}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestNewRunnerAppliesProfile(t *testing.T) {
	var calls []recorded
	srv := newRecordingServer(t, http.StatusNoContent, "", &calls)
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "profiles.yaml")
	raw := "profiles:\n  - id: svc\n    base_address: " + srv.URL + "/v3\n    headers:\n      - name: X-Profile\n        value: svc\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	var out, errOut bytes.Buffer
	cfg := &config.Config{Timeout: time.Second, ProfilesFile: path}
	r, err := NewRunner(cfg, nil, Overrides{Profile: "svc", Headers: []string{"X-Extra: 1"}}, &out, &errOut)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if err := r.Delete(context.Background(), "things/1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(calls) != 1 || calls[0].path != "/v3/things/1" {
		t.Fatalf("calls = %#v", calls)
	}
	if calls[0].header.Get("X-Profile") != "svc" || calls[0].header.Get("X-Extra") != "1" {
		t.Fatalf("headers = %v", calls[0].header)
	}

	if _, err := NewRunner(cfg, nil, Overrides{Profile: "other"}, &out, &errOut); err == nil {
		t.Fatalf("expected error for unknown profile")
	}
}

func TestNewRunnerRejectsBadInput(t *testing.T) {
	cfg := &config.Config{Timeout: time.Second}
	if _, err := NewRunner(nil, nil, Overrides{}, nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := NewRunner(cfg, nil, Overrides{Headers: []string{"no-colon"}}, nil, nil); err == nil {
		t.Fatalf("expected error for malformed header")
	}
	if _, err := NewRunner(cfg, nil, Overrides{BaseAddress: "not a uri"}, nil, nil); !apiconn.IsKind(err, apiconn.KindConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}
