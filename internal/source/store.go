package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("source not found")

// DefaultRoot resolves the bookd config directory the same way across
// platforms: APPDATA, then XDG_CONFIG_HOME, then ~/.config.
func DefaultRoot() string {
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "bookd")
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "bookd")
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "bookd")
}

// Store is a directory of YAML source configs, one file per source, named
// <id>.yaml.
type Store struct {
	dir string
}

func NewStore(root string) *Store {
	if root == "" {
		root = DefaultRoot()
	}
	return &Store{dir: filepath.Join(root, "sources")}
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) ensure() error {
	return os.MkdirAll(s.dir, 0755)
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".yaml")
}

// List returns the ids of all stored sources, sorted.
func (s *Store) List() ([]string, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".yaml"))
	}

	sort.Strings(ids)
	return ids, nil
}

// Load reads and validates one source config. A missing file is
// ErrNotFound; a malformed file is a *ConfigError.
func (s *Store) Load(id string) (*Config, error) {
	b, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("source %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	cfg, err := ParseYAML(b)
	if err != nil {
		return nil, err
	}
	if cfg.ID == "" || cfg.ID == NormalizeID(cfg.Name) {
		cfg.ID = id
	}
	return cfg, nil
}

// LoadAll returns every valid stored config; files that fail to parse are
// reported through the errs map rather than aborting the whole listing.
func (s *Store) LoadAll() ([]*Config, map[string]error, error) {
	ids, err := s.List()
	if err != nil {
		return nil, nil, err
	}

	var out []*Config
	broken := map[string]error{}
	for _, id := range ids {
		cfg, err := s.Load(id)
		if err != nil {
			broken[id] = err
			continue
		}
		out = append(out, cfg)
	}
	return out, broken, nil
}

// Add validates and stores a config file under the id derived from it.
func (s *Store) Add(srcPath string) (string, error) {
	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return "", err
	}

	cfg, err := ParseYAML(raw)
	if err != nil {
		return "", err
	}

	if err := s.ensure(); err != nil {
		return "", err
	}

	dst := s.path(cfg.ID)
	if _, err := os.Stat(dst); err == nil {
		return "", fmt.Errorf("source %q already exists", cfg.ID)
	}

	return cfg.ID, os.WriteFile(dst, raw, 0644)
}

// Save writes a config back to the store, overwriting any existing file.
func (s *Store) Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := s.ensure(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(cfg.ID), data, 0644)
}

func (s *Store) Remove(id string) error {
	path := s.path(id)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("source %q: %w", id, ErrNotFound)
	}
	return os.Remove(path)
}
