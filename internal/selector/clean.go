package selector

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	reSpaces     = regexp.MustCompile(`[ \t]+`)
	reBlankLines = regexp.MustCompile(`\n\s*\n`)
)

// Clean turns a content body into reader text: configured tags are removed
// first, then the removal patterns run over the remaining plain text, then
// whitespace is normalized with paragraph breaks preserved. Tag removal
// precedes pattern removal because patterns target the surviving text.
// Clean mutates the passed selection; callers hand in a per-fetch document.
//
// The result is stable: cleaning already-clean text again is a no-op.
func Clean(body *goquery.Selection, removeTags []string, patterns []*regexp.Regexp) string {
	for _, tag := range removeTags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		body.Find(tag).Remove()
	}

	return CleanText(Paragraphs(body), patterns)
}

// CleanText applies the removal patterns to plain text, longest pattern
// first, non-overlapping, then normalizes whitespace. Patterns carry no
// state between calls.
func CleanText(text string, patterns []*regexp.Regexp) string {
	ordered := make([]*regexp.Regexp, len(patterns))
	copy(ordered, patterns)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].String()) > len(ordered[j].String())
	})

	for _, re := range ordered {
		text = re.ReplaceAllString(text, "")
	}
	return normalize(text)
}

// Paragraphs extracts text preserving paragraph separation: <p> blocks
// when present, otherwise <br>-separated lines, otherwise the bare text.
func Paragraphs(sel *goquery.Selection) string {
	var paras []string

	if ps := sel.Find("p"); ps.Length() > 0 {
		ps.Each(func(_ int, p *goquery.Selection) {
			if t := strings.TrimSpace(p.Text()); t != "" {
				paras = append(paras, t)
			}
		})
		return strings.Join(paras, "\n\n")
	}

	sel.Find("br").ReplaceWithHtml("\n")
	for _, line := range strings.Split(sel.Text(), "\n") {
		if t := strings.TrimSpace(line); t != "" {
			paras = append(paras, t)
		}
	}
	return strings.Join(paras, "\n\n")
}

func normalize(text string) string {
	text = reSpaces.ReplaceAllString(text, " ")
	text = reBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
