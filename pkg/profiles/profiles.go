package profiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/apiconnection-toolkit/pkg/apiconn"
	"gopkg.in/yaml.v3"
)

// Package profiles loads named connection settings from YAML/JSON files.

const defaultTimeoutSeconds = 100

// configFile represents the structure of the profiles configuration file.
type configFile struct {
	Profiles []Profile `json:"profiles" yaml:"profiles"`
}

// Header is one default header line. A list keeps repeated names.
type Header struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Profile is a reusable connection definition.
type Profile struct {
	ID             string   `json:"id" yaml:"id"`
	BaseAddress    string   `json:"base_address" yaml:"base_address"`
	TimeoutSeconds int      `json:"timeout_seconds" yaml:"timeout_seconds"`
	Headers        []Header `json:"headers" yaml:"headers"`
}

// Registry holds the profiles loaded from a file.
type Registry struct {
	mu       sync.RWMutex
	profiles []Profile
	idx      map[string]Profile
}

// LoadRegistry loads the profile registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("profiles file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}

	cf, err := parseProfiles(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(cf.Profiles) == 0 {
		return nil, errors.New("profiles file contains no profiles entries")
	}

	reg := &Registry{
		profiles: make([]Profile, len(cf.Profiles)),
		idx:      make(map[string]Profile, len(cf.Profiles)),
	}
	for i := range cf.Profiles {
		p := sanitizeProfile(cf.Profiles[i])
		if err := validateProfile(p); err != nil {
			return nil, fmt.Errorf("profiles[%d]: %w", i, err)
		}
		if _, exists := reg.idx[p.ID]; exists {
			return nil, fmt.Errorf("duplicate profile id %q", p.ID)
		}
		reg.profiles[i] = p
		reg.idx[p.ID] = p
	}
	return reg, nil
}

func parseProfiles(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var cf configFile
		err := d.fn(data, &cf)
		if err == nil {
			return cf, nil
		}
		lastErr = fmt.Errorf("decode %s profiles: %w", d.name, err)
	}
	if lastErr != nil {
		return configFile{}, lastErr
	}
	return configFile{}, errors.New("profiles file format not recognized (expected YAML or JSON)")
}

func sanitizeProfile(p Profile) Profile {
	p.ID = strings.TrimSpace(p.ID)
	p.BaseAddress = strings.TrimSpace(p.BaseAddress)
	if p.TimeoutSeconds <= 0 {
		p.TimeoutSeconds = defaultTimeoutSeconds
	}
	headers := make([]Header, 0, len(p.Headers))
	for _, h := range p.Headers {
		h.Name = strings.TrimSpace(h.Name)
		if h.Name == "" {
			continue
		}
		headers = append(headers, h)
	}
	p.Headers = headers
	return p
}

func validateProfile(p Profile) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if p.BaseAddress != "" {
		if err := apiconn.ValidateBaseAddress(p.BaseAddress); err != nil {
			return fmt.Errorf("profile %q: %w", p.ID, err)
		}
	}
	return nil
}

// ByID returns the profile with the given id.
func (r *Registry) ByID(id string) (Profile, bool) {
	if r == nil {
		return Profile{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Profile{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.idx[id]
	return p, ok
}

// All returns all configured profiles.
func (r *Registry) All() []Profile {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// Timeout returns the per-call timeout for the profile.
func (p Profile) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Apply copies the profile's base address and headers onto c.
func (p Profile) Apply(c *apiconn.Connection) error {
	if p.BaseAddress != "" {
		if err := c.AddBaseAddress(p.BaseAddress); err != nil {
			return fmt.Errorf("apply profile %q: %w", p.ID, err)
		}
	}
	for _, h := range p.Headers {
		if err := c.AddHeader(h.Name, h.Value); err != nil {
			return fmt.Errorf("apply profile %q: %w", p.ID, err)
		}
	}
	return nil
}
