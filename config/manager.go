package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Manager owns the sources file. Unlike the credentials it lives on disk so
// the watchlist and filter tables can be edited without a rebuild.
type Manager struct {
	path    string
	mu      sync.RWMutex
	sources Sources
	saveErr error
}

type managerOptions struct {
	configPath     string
	initialSources *Sources
	readOnly       bool
}

type ManagerOption func(*managerOptions)

func NewManager(opts ...ManagerOption) (*Manager, error) {
	var options managerOptions
	for _, opt := range opts {
		opt(&options)
	}

	m := &Manager{path: options.configPath}
	if m.path == "" {
		var err error
		if m.path, err = defaultSourcesPath(); err != nil {
			m.saveErr = fmt.Errorf("locate config dir: %w", err)
			options.readOnly = true
		}
	}

	if !options.readOnly {
		if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
			m.saveErr = fmt.Errorf("create config dir: %w", err)
			options.readOnly = true
		}
	}

	sources, err := m.loadOrCreateSources(options)
	if err != nil {
		return nil, err
	}
	m.sources = sources
	return m, nil
}

// Get returns a copy of the loaded tables.
func (m *Manager) Get() Sources {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sources
}

func (m *Manager) Path() string {
	return m.path
}

// SaveError reports why the built-in tables could not be written to Path on
// first run. The manager still serves them from memory.
func (m *Manager) SaveError() error {
	return m.saveErr
}

func (m *Manager) loadOrCreateSources(options managerOptions) (Sources, error) {
	if m.path != "" {
		_, err := os.Stat(m.path)
		switch {
		case err == nil:
			s, err := loadSourcesFromFile(m.path)
			if err != nil {
				return Sources{}, fmt.Errorf("load sources: %w", err)
			}
			return s, nil
		case errors.Is(err, os.ErrNotExist):
		case m.saveErr == nil:
			return Sources{}, fmt.Errorf("stat sources: %w", err)
		}
	}

	var s Sources
	switch {
	case options.initialSources != nil:
		s = *options.initialSources
	default:
		s = *DefaultSources()
	}
	if err := s.applyDefaults(); err != nil {
		return Sources{}, err
	}
	if err := s.Validate(); err != nil {
		return Sources{}, err
	}

	if options.readOnly {
		return s, nil
	}
	if err := writeSourcesFile(m.path, s); err != nil {
		m.saveErr = fmt.Errorf("write initial sources: %w", err)
	}
	return s, nil
}

func loadSourcesFromFile(path string) (Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Sources{}, err
	}
	var s Sources
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Sources{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if err := s.applyDefaults(); err != nil {
		return Sources{}, err
	}
	if err := s.Validate(); err != nil {
		return Sources{}, err
	}
	return s, nil
}

func defaultSourcesPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "CortexBrief", "sources.yaml"), nil
}

func writeSourcesFile(path string, s Sources) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "sources-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp sources: %w", err)
	}
	encoder := yaml.NewEncoder(tmpFile)
	encoder.SetIndent(2)
	if err := encoder.Encode(&s); err != nil {
		tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
		return fmt.Errorf("encode sources: %w", err)
	}
	if err := encoder.Close(); err != nil {
		tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
		return fmt.Errorf("flush sources: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpFile.Name())
		return fmt.Errorf("close temp sources: %w", err)
	}
	return os.Rename(tmpFile.Name(), path)
}

func WithConfigDir(dir string) ManagerOption {
	return func(o *managerOptions) {
		if dir == "" {
			return
		}
		o.configPath = filepath.Join(dir, "sources.yaml")
	}
}

func WithConfigPath(path string) ManagerOption {
	return func(o *managerOptions) {
		if path != "" {
			o.configPath = path
		}
	}
}

func WithInitialSources(s *Sources) ManagerOption {
	return func(o *managerOptions) {
		o.initialSources = s
	}
}

// WithReadOnly never writes a missing file back to disk.
func WithReadOnly() ManagerOption {
	return func(o *managerOptions) {
		o.readOnly = true
	}
}
