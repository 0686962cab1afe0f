// Package source holds the declarative per-site configuration that drives
// the generic parser: endpoints, selectors and content-cleanup rules.
package source

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigError reports a malformed or missing configuration field. It is
// surfaced at parser construction and is not retryable.
type ConfigError struct {
	Source string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	src := e.Source
	if src == "" {
		src = "(unnamed source)"
	}
	return fmt.Sprintf("source %s: field %q: %s", src, e.Field, e.Reason)
}

// Selector is an ordered list of selector paths. Each path is a CSS
// selector, optionally suffixed with "@attr" to read an attribute instead
// of text. A scalar in YAML/JSON is accepted as a one-element list. The
// zero value is an empty list, never nil-typed.
type Selector struct {
	Paths []string
}

func (s Selector) IsEmpty() bool {
	for _, p := range s.Paths {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}

func (s *Selector) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var one string
		if err := node.Decode(&one); err != nil {
			return err
		}
		if one != "" {
			s.Paths = []string{one}
		}
		return nil
	case yaml.SequenceNode:
		return node.Decode(&s.Paths)
	default:
		return fmt.Errorf("selector must be a string or a list of strings")
	}
}

func (s Selector) MarshalYAML() (any, error) {
	if len(s.Paths) == 1 {
		return s.Paths[0], nil
	}
	return s.Paths, nil
}

func (s *Selector) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one != "" {
			s.Paths = []string{one}
		}
		return nil
	}
	return json.Unmarshal(data, &s.Paths)
}

func (s Selector) MarshalJSON() ([]byte, error) {
	if len(s.Paths) == 1 {
		return json.Marshal(s.Paths[0])
	}
	return json.Marshal(s.Paths)
}

type SearchConfig struct {
	// URL template, must contain the {keyword} placeholder.
	URL         string   `yaml:"url" json:"url"`
	Item        Selector `yaml:"item" json:"item"`
	Title       Selector `yaml:"title" json:"title"`
	Author      Selector `yaml:"author" json:"author"`
	Description Selector `yaml:"description" json:"description"`
	Cover       Selector `yaml:"cover" json:"cover"`
	// Link locates the anchor carrying the book URL. Defaults to "a@href".
	Link Selector `yaml:"link" json:"link"`
}

type PageURLConfig struct {
	// Fmt builds chapter-list page URLs from {book_url} and {page}.
	Fmt string `yaml:"fmt" json:"fmt"`
	// SkipEnding is trimmed from the book URL before substitution,
	// e.g. a trailing "/".
	SkipEnding string `yaml:"skip_endding" json:"skip_endding"`
}

type ChapterListConfig struct {
	List     Selector      `yaml:"list" json:"list"`
	Item     Selector      `yaml:"item" json:"item"`
	Pager    Selector      `yaml:"pager" json:"pager"`
	PageURL  PageURLConfig `yaml:"page_url" json:"page_url"`
	MaxPages int           `yaml:"max_pages" json:"max_pages"`
}

type BookConfig struct {
	Title       Selector `yaml:"title" json:"title"`
	Author      Selector `yaml:"author" json:"author"`
	Description Selector `yaml:"description" json:"description"`
	Cover       Selector `yaml:"cover" json:"cover"`
}

type ContentConfig struct {
	Body           Selector `yaml:"selector" json:"selector"`
	RemoveTags     []string `yaml:"remove_tags" json:"remove_tags"`
	RemovePatterns []string `yaml:"remove_patterns" json:"remove_patterns"`
	Next           Selector `yaml:"next" json:"next"`
}

// Config describes one book source. A parser instance owns exactly one
// Config for its lifetime and never mutates it after Validate.
type Config struct {
	Name     string `yaml:"name" json:"name"`
	ID       string `yaml:"id" json:"id"`
	BaseURL  string `yaml:"url" json:"url"`
	Encoding string `yaml:"encoding" json:"encoding"`

	Search      SearchConfig      `yaml:"search" json:"search"`
	ChapterList ChapterListConfig `yaml:"chapter_list" json:"chapter_list"`
	Book        BookConfig        `yaml:"book" json:"book"`
	Content     ContentConfig     `yaml:"content" json:"content"`

	patterns []*regexp.Regexp
}

// requiredKeys are the top-level keys a stored config must carry.
var requiredKeys = []string{"name", "url", "encoding", "search", "chapter_list", "book", "content"}

// ParseYAML decodes and validates a stored source config. Missing required
// top-level keys are detected on the raw document, since a struct decode
// cannot distinguish an absent section from an empty one.
func ParseYAML(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Field: "(document)", Reason: err.Error()}
	}
	if err := checkRequired(raw); err != nil {
		return nil, err
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, &ConfigError{Field: "(document)", Reason: err.Error()}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ParseJSON is the JSON twin of ParseYAML, for configs arriving over the
// wire rather than from the config directory.
func ParseJSON(data []byte) (*Config, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Field: "(document)", Reason: err.Error()}
	}
	if err := checkRequired(raw); err != nil {
		return nil, err
	}

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, &ConfigError{Field: "(document)", Reason: err.Error()}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func checkRequired(raw map[string]any) error {
	name, _ := raw["name"].(string)
	for _, k := range requiredKeys {
		if _, ok := raw[k]; !ok {
			return &ConfigError{Source: name, Field: k, Reason: "required key missing"}
		}
	}
	return nil
}

// Validate checks the invariants every URL template and pattern must hold
// and compiles the content removal patterns. It is idempotent.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return c.errf("name", "must not be empty")
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return c.errf("url", "must not be empty")
	}
	if c.Encoding == "" {
		c.Encoding = "utf-8"
	}
	if c.ID == "" {
		c.ID = NormalizeID(c.Name)
	}

	if c.Search.URL != "" && !strings.Contains(c.Search.URL, "{keyword}") {
		return c.errf("search.url", "template must contain {keyword}")
	}
	if f := c.ChapterList.PageURL.Fmt; f != "" && !strings.Contains(f, "{page}") {
		return c.errf("chapter_list.page_url.fmt", "template must contain {page}")
	}

	c.patterns = c.patterns[:0]
	for _, p := range c.Content.RemovePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return c.errf("content.remove_patterns", "invalid pattern %q: %v", p, err)
		}
		c.patterns = append(c.patterns, re)
	}
	return nil
}

// Patterns returns the compiled content removal patterns. Validate must
// have run first; an unvalidated config yields none.
func (c *Config) Patterns() []*regexp.Regexp {
	return c.patterns
}

func (c *Config) errf(field, format string, args ...any) error {
	return &ConfigError{Source: c.Name, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NormalizeID collapses a display name into a stable lookup key, the way
// source names are matched against parser identities.
func NormalizeID(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	for _, cut := range []string{" ", "-", "_"} {
		s = strings.ReplaceAll(s, cut, "")
	}
	return s
}
