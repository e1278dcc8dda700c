package config

import (
	"bytes"
	"encoding/json"
	"maps"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/kbukum/pmnps/errors"
)

// Store owns the root config of one workspace. Load reads it, Update
// mutates and persists it, Flush writes it back.
type Store struct {
	root string
	lc   LoaderConfig

	mu        sync.Mutex
	file      *Config // as written on disk, no defaults or env overrides
	effective *Config
}

// NewStore creates a store for the workspace at root.
func NewStore(root string, opts ...LoaderOption) *Store {
	lc := LoaderConfig{EnvPrefix: EnvPrefix}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}
	if lc.EnvFile == "" {
		lc.EnvFile = filepath.Join(root, ".env")
	}
	return &Store{root: root, lc: lc}
}

// Root returns the workspace root directory.
func (s *Store) Root() string { return s.root }

// Path returns the config file path.
func (s *Store) Path() string { return filepath.Join(s.root, FileName) }

// Load reads the config file, applies environment overrides and defaults,
// and validates the result. A missing file is CONFIG_NOT_FOUND.
func (s *Store) Load() (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path()
	if !s.lc.FileSystem.Exists(path) {
		return nil, errors.ConfigNotFound(path)
	}

	file := &Config{}
	if err := readFile(path, file); err != nil {
		return nil, err
	}
	effective := &Config{}
	if err := readEffective(path, s.lc, effective); err != nil {
		return nil, err
	}
	effective.ApplyDefaults()
	if err := effective.Validate(); err != nil {
		return nil, err
	}

	s.file, s.effective = file, effective
	return effective, nil
}

// Update applies fn to the stored config and flushes it. fn also sees the
// effective config so the running command observes the change.
func (s *Store) Update(fn func(*Config)) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}

	s.mu.Lock()
	next := cloneConfig(s.file)
	fn(next)

	check := cloneConfig(next)
	check.ApplyDefaults()
	if err := check.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.file = next
	fn(s.effective)
	s.mu.Unlock()

	return s.Flush()
}

// Flush writes the stored config to disk as indented JSON. Keys on disk
// that Config does not model are kept.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return errors.New(errors.ErrCodeInternal, "config store flushed before load")
	}
	data, err := s.merged()
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := s.lc.FileSystem.WriteFile(s.Path(), data); err != nil {
		return errors.Internal(err)
	}
	return nil
}

// merged overlays the stored config on the document currently on disk, so
// keys Config does not model survive a write. Caller holds s.mu.
func (s *Store) merged() ([]byte, error) {
	doc := map[string]json.RawMessage{}
	if raw, err := s.lc.FileSystem.ReadFile(s.Path()); err == nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, errors.Validation("Unable to parse " + s.Path()).WithCause(err)
		}
	}
	for _, key := range configKeys() {
		delete(doc, key)
	}

	own, err := json.Marshal(s.file)
	if err != nil {
		return nil, errors.Internal(err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(own, &fields); err != nil {
		return nil, errors.Internal(err)
	}
	maps.Copy(doc, fields)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Internal(err)
	}
	return data, nil
}

// configKeys lists the top-level JSON keys Config owns.
func configKeys() []string {
	t := reflect.TypeFor[Config]()
	keys := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys = append(keys, name)
		}
	}
	return keys
}

func (s *Store) ensureLoaded() error {
	s.mu.Lock()
	loaded := s.file != nil
	s.mu.Unlock()
	if loaded {
		return nil
	}
	_, err := s.Load()
	return err
}

func cloneConfig(c *Config) *Config {
	out := *c
	out.BuildModes = append([]string(nil), c.BuildModes...)
	return &out
}
