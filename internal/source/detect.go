package source

import (
	"net/url"
	"strings"
)

// MatchType is the confidence tier of a URL-to-source match.
type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchFuzzy MatchType = "fuzzy"
)

// Match is the result of resolving a book URL to a configured source.
type Match struct {
	SourceID   string
	SourceName string
	Type       MatchType
}

// Detect resolves a book URL against the configured sources. Exact match:
// the URL's hostname equals the hostname of a source's base URL. Fuzzy
// match: the URL's first registrable hostname label (minus "www.") and a
// source's id or name contain one another, or the label appears in the
// source's base URL. Mirror hostnames like biquge5200.cc still land on the
// biquge source that way. No match is a normal outcome, not an error; the
// caller falls back to manual source selection.
func Detect(configs []*Config, rawURL string) (Match, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return Match{}, false
	}
	host := u.Hostname()

	for _, cfg := range configs {
		if b, err := url.Parse(cfg.BaseURL); err == nil && b.Hostname() == host {
			return Match{SourceID: cfg.ID, SourceName: cfg.Name, Type: MatchExact}, true
		}
	}

	keyword := hostKeyword(host)
	if keyword == "" {
		return Match{}, false
	}
	for _, cfg := range configs {
		if overlaps(strings.ToLower(cfg.ID), keyword) ||
			overlaps(strings.ToLower(cfg.Name), keyword) ||
			strings.Contains(strings.ToLower(cfg.BaseURL), keyword) {
			return Match{SourceID: cfg.ID, SourceName: cfg.Name, Type: MatchFuzzy}, true
		}
	}

	return Match{}, false
}

func overlaps(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// hostKeyword extracts the leading registrable label of a hostname,
// skipping generic subdomains: "www.biquge.com" and "m.biquge.com" both
// yield "biquge".
func hostKeyword(host string) string {
	for _, label := range strings.Split(strings.ToLower(host), ".") {
		switch label {
		case "", "www", "m", "wap", "mobile":
			continue
		}
		return label
	}
	return ""
}
