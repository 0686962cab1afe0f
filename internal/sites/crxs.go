// Package sites holds the specialized per-site parsers. Each embeds
// *parser.Base and overrides only what its target site needs; the rest of
// the behavior stays generic and config-driven. Registrations run at init
// time into the default registry, so importing this package is what makes
// the specializations available.
package sites

import (
	"context"
	"regexp"
	"strings"

	"github.com/brogergvhs/bookd/internal/parser"
	"github.com/brogergvhs/bookd/internal/selector"
	"github.com/brogergvhs/bookd/internal/source"
	"github.com/brogergvhs/bookd/internal/ui"
)

func init() {
	parser.Default().MustRegister(parser.Registration{
		Name:    "crxs",
		Domains: []string{"crxs.me", "www.crxs.me"},
		Keyword: "crxs",
		New:     newCrxs,
	})
}

// crxs serves crxs.me. The site puts book covers in a background-image
// style attribute instead of an <img>, so book info needs a second look
// at the cover element when the generic extraction comes up empty.
type crxs struct {
	*parser.Base
}

func newCrxs(cfg *source.Config, fetch parser.Fetcher, log *ui.Logger) (parser.Parser, error) {
	b, err := parser.NewBase(cfg, fetch, log)
	if err != nil {
		return nil, err
	}
	return &crxs{Base: b}, nil
}

var reBackgroundImage = regexp.MustCompile(`background-image:\s*url\(["']?(.*?)["']?\)`)

func (c *crxs) GetBookInfo(ctx context.Context, bookURL string) (*parser.BookInfo, error) {
	info, err := c.Base.GetBookInfo(ctx, bookURL)
	if err != nil || info.CoverURL != "" {
		return info, err
	}

	doc, err := c.Document(ctx, bookURL)
	if err != nil {
		// Metadata is already complete enough; the cover stays empty.
		return info, nil
	}

	cover := selector.Parse(styledPaths(c.Config().Book.Cover.Paths)...)
	if style, ok := cover.ExtractOne(doc.Selection); ok {
		if m := reBackgroundImage.FindStringSubmatch(style); m != nil {
			info.CoverURL = parser.ResolveURL(bookURL, m[1])
		}
	}
	return info, nil
}

// styledPaths rewrites the configured cover paths to read the style
// attribute instead of whatever the config asked for.
func styledPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if i := strings.LastIndexByte(p, '@'); i >= 0 {
			p = p[:i]
		}
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p+"@style")
		}
	}
	if len(out) == 0 {
		out = []string{".cover@style", ".book-cover@style"}
	}
	return out
}
