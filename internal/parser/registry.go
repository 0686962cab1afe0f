package parser

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/brogergvhs/bookd/internal/source"
	"github.com/brogergvhs/bookd/internal/ui"
)

// MatchType tags how a URL was resolved to a registered parser.
type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchFuzzy MatchType = "fuzzy"
	MatchNone  MatchType = ""
)

// Factory builds a parser bound to one source config.
type Factory func(cfg *source.Config, fetch Fetcher, log *ui.Logger) (Parser, error)

// Registration declares one specialized parser: its stable identity, the
// hostnames it owns outright, and a fuzzy URL ownership test.
type Registration struct {
	// Name is the stable identity matched against source names/ids.
	Name string
	// Domains are hostnames matched verbatim ("exact" tier).
	Domains []string
	// Keyword drives the default fuzzy test: hostname substring
	// containment. CanHandle overrides it for sites where that
	// heuristic is wrong.
	Keyword string
	// CanHandle, when set, replaces the keyword test ("fuzzy" tier).
	CanHandle func(rawURL string) bool

	New Factory
}

func (r Registration) handles(rawURL string) bool {
	if r.CanHandle != nil {
		return r.CanHandle(rawURL)
	}
	if r.Keyword == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(u.Hostname()), strings.ToLower(r.Keyword))
}

// Registry maps parser identities to factories. It is populated once at
// startup via explicit Register calls and read-only afterwards, so
// concurrent lookups need no locking.
type Registry struct {
	order  []Registration
	byName map[string]Registration
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]Registration{}}
}

// Register adds a parser. A duplicate name is a configuration error
// surfaced at load time, never a silent overwrite.
func (r *Registry) Register(reg Registration) error {
	key := source.NormalizeID(reg.Name)
	if key == "" {
		return fmt.Errorf("parser registration with empty name")
	}
	if reg.New == nil {
		return fmt.Errorf("parser %q registered without a factory", reg.Name)
	}
	if _, dup := r.byName[key]; dup {
		return fmt.Errorf("duplicate parser name %q", reg.Name)
	}

	r.byName[key] = reg
	r.order = append(r.order, reg)
	return nil
}

func (r *Registry) MustRegister(reg Registration) {
	if err := r.Register(reg); err != nil {
		panic(err)
	}
}

// Names lists registered parser identities in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	for i, reg := range r.order {
		names[i] = reg.Name
	}
	return names
}

// ForSource returns the parser registered under the source's name or id,
// falling back to the generic Base when none is.
func (r *Registry) ForSource(nameOrID string, cfg *source.Config, fetch Fetcher, log *ui.Logger) (Parser, error) {
	key := source.NormalizeID(nameOrID)
	if reg, ok := r.byName[key]; ok {
		return reg.New(cfg, fetch, log)
	}
	return NewBase(cfg, fetch, log)
}

// ForURL resolves a book URL to a registered parser. Exact hostname
// ownership is consulted first; only when no parser owns the hostname do
// the fuzzy tests run, in registration order, first hit winning. Given
// the same URL and registry state the outcome is always the same. No
// match is a normal outcome: the caller falls back to Base or to manual
// source selection.
func (r *Registry) ForURL(rawURL string) (Registration, MatchType) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return Registration{}, MatchNone
	}
	host := u.Hostname()

	for _, reg := range r.order {
		if slices.Contains(reg.Domains, host) {
			return reg, MatchExact
		}
	}
	for _, reg := range r.order {
		if reg.handles(rawURL) {
			return reg, MatchFuzzy
		}
	}
	return Registration{}, MatchNone
}

// ParserForURL is ForURL plus construction, with the Base fallback.
func (r *Registry) ParserForURL(rawURL string, cfg *source.Config, fetch Fetcher, log *ui.Logger) (Parser, MatchType, error) {
	reg, match := r.ForURL(rawURL)
	if match == MatchNone {
		p, err := NewBase(cfg, fetch, log)
		return p, MatchNone, err
	}
	p, err := reg.New(cfg, fetch, log)
	return p, match, err
}

var defaultRegistry = NewRegistry()

// Default is the process-wide registry the sites package populates at
// init time.
func Default() *Registry { return defaultRegistry }
