// Package selector evaluates declarative selectors against parsed HTML.
// A selector is a CSS path, an attribute path ("a.title@href"), or an
// ordered fallback list where the first path yielding a non-empty result
// wins. Absent matches produce empty results, never errors, so callers can
// apply defaults on top of unreliable markup.
package selector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type part struct {
	css  string
	attr string
}

type Selector struct {
	parts []part
}

// Parse builds a selector from one or more "css" or "css@attr" paths.
// Blank paths are dropped; a path of just "@attr" reads the attribute off
// the current node.
func Parse(paths ...string) Selector {
	var s Selector
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		css, attr := p, ""
		if i := strings.LastIndexByte(p, '@'); i >= 0 {
			css = strings.TrimSpace(p[:i])
			attr = strings.TrimSpace(p[i+1:])
		}
		s.parts = append(s.parts, part{css: css, attr: attr})
	}
	return s
}

func (s Selector) IsEmpty() bool { return len(s.parts) == 0 }

// Nodes returns the matched nodes of the first path that matches anything.
// The attribute suffix is ignored here; it only matters for extraction.
func (s Selector) Nodes(root *goquery.Selection) *goquery.Selection {
	for _, p := range s.parts {
		m := findPart(root, p)
		if m.Length() > 0 {
			return m
		}
	}
	return root.Slice(0, 0)
}

// Extract returns the non-empty text (or attribute) values of the first
// path that yields any. Missing matches are an empty slice.
func (s Selector) Extract(root *goquery.Selection) []string {
	for _, p := range s.parts {
		vals := extractPart(root, p)
		if len(vals) > 0 {
			return vals
		}
	}
	return nil
}

// ExtractOne returns the first value, reporting whether any path matched.
func (s Selector) ExtractOne(root *goquery.Selection) (string, bool) {
	vals := s.Extract(root)
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

func findPart(root *goquery.Selection, p part) *goquery.Selection {
	if p.css == "" {
		return root
	}
	return root.Find(p.css)
}

func extractPart(root *goquery.Selection, p part) []string {
	var vals []string
	findPart(root, p).Each(func(_ int, el *goquery.Selection) {
		var v string
		if p.attr != "" {
			v, _ = el.Attr(p.attr)
		} else {
			v = el.Text()
		}
		v = strings.TrimSpace(v)
		if v != "" {
			vals = append(vals, v)
		}
	})
	return vals
}
