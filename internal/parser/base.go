package parser

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/bookd/internal/selector"
	"github.com/brogergvhs/bookd/internal/source"
	"github.com/brogergvhs/bookd/internal/ui"
)

// DefaultMaxPages bounds every multi-page walk (chapter lists and split
// chapters) against malformed pager configs.
const DefaultMaxPages = 50

var defaultLinkSelector = selector.Parse("a@href")

// Base is the generic parser: all four operations driven purely by the
// bound source config. Specialized parsers embed *Base and override what
// the target site needs.
type Base struct {
	cfg   *source.Config
	fetch Fetcher
	log   *ui.Logger
}

// NewBase validates the config and binds it to a parser instance. The
// instance owns the config exclusively for its lifetime; no shared state
// exists between concurrently running parsers.
func NewBase(cfg *source.Config, fetch Fetcher, log *ui.Logger) (*Base, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = ui.NewSilentLogger()
	}
	return &Base{cfg: cfg, fetch: fetch, log: log}, nil
}

func (b *Base) Config() *source.Config { return b.cfg }

// Document fetches a page and parses it. goquery parses anything the
// server sends, so malformed markup degrades to empty matches rather than
// errors; only transport failures and bad statuses surface.
func (b *Base) Document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := b.fetch.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if resp.Status >= 400 {
		return nil, &FetchError{URL: pageURL, Status: resp.Status}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	return doc, nil
}

// SearchURL builds the search endpoint from the configured template.
func (b *Base) SearchURL(keyword string) string {
	return strings.ReplaceAll(b.cfg.Search.URL, "{keyword}", url.QueryEscape(keyword))
}

func (b *Base) Search(ctx context.Context, keyword string, limit int) ([]SearchResult, error) {
	if b.cfg.Search.Item.IsEmpty() {
		return nil, &ParseError{Source: b.cfg.ID, URL: b.cfg.Search.URL, Step: "search", Field: "search.item"}
	}

	doc, err := b.Document(ctx, b.SearchURL(keyword))
	if err != nil {
		return nil, err
	}

	link := selector.Parse(b.cfg.Search.Link.Paths...)
	if link.IsEmpty() {
		link = defaultLinkSelector
	}

	var results []SearchResult
	items := selector.Parse(b.cfg.Search.Item.Paths...).Nodes(doc.Selection)
	items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if limit > 0 && len(results) >= limit {
			return false
		}

		title, _ := selector.Parse(b.cfg.Search.Title.Paths...).ExtractOne(item)
		href, _ := link.ExtractOne(item)
		if title == "" || href == "" {
			// Not a usable result item; skip, don't fail the search.
			return true
		}

		author, _ := selector.Parse(b.cfg.Search.Author.Paths...).ExtractOne(item)
		desc, _ := selector.Parse(b.cfg.Search.Description.Paths...).ExtractOne(item)
		cover, _ := selector.Parse(b.cfg.Search.Cover.Paths...).ExtractOne(item)

		results = append(results, SearchResult{
			Title:       title,
			Author:      stripAuthorPrefix(author),
			Description: desc,
			CoverURL:    ResolveURL(b.cfg.BaseURL, cover),
			SourceURL:   ResolveURL(b.cfg.BaseURL, href),
		})
		return true
	})

	b.log.Debugf("search %q on %s: %d results", keyword, b.cfg.ID, len(results))
	return results, nil
}

func (b *Base) GetBookInfo(ctx context.Context, bookURL string) (*BookInfo, error) {
	doc, err := b.Document(ctx, bookURL)
	if err != nil {
		return nil, err
	}

	title, ok := selector.Parse(b.cfg.Book.Title.Paths...).ExtractOne(doc.Selection)
	if !ok {
		// Title identifies the book downstream; without it the record
		// is useless.
		return nil, &ParseError{Source: b.cfg.ID, URL: bookURL, Step: "book info", Field: "book.title"}
	}

	author, _ := selector.Parse(b.cfg.Book.Author.Paths...).ExtractOne(doc.Selection)
	desc, _ := selector.Parse(b.cfg.Book.Description.Paths...).ExtractOne(doc.Selection)
	cover, _ := selector.Parse(b.cfg.Book.Cover.Paths...).ExtractOne(doc.Selection)

	return &BookInfo{
		Title:       title,
		Author:      stripAuthorPrefix(author),
		Description: desc,
		CoverURL:    ResolveURL(bookURL, cover),
		SourceURL:   bookURL,
	}, nil
}

func (b *Base) GetChapterList(ctx context.Context, bookURL string) ([]ChapterRef, error) {
	raw, err := b.RawChapterList(ctx, bookURL)
	refs := Dedupe(raw)
	if err != nil {
		return refs, err
	}
	return refs, nil
}

// RawChapterList walks all chapter-list pages and returns the refs in
// traversal order, duplicates included. Specialized parsers that need to
// reorder or trim before deduplication start from here.
func (b *Base) RawChapterList(ctx context.Context, bookURL string) ([]ChapterRef, error) {
	w := &Walker{
		Fetch:   b.Document,
		Extract: b.chaptersOnPage,
		Next: func(doc *goquery.Document, pageURL string, page int) string {
			return b.nextListPage(doc, pageURL, bookURL, page)
		},
		MaxPages: b.maxPages(),
	}

	res := w.Walk(ctx, bookURL)
	if res.Partial {
		return res.Chapters, &PartialError{Collected: len(res.Chapters), Pages: res.Pages, Err: res.Err}
	}
	return res.Chapters, nil
}

func (b *Base) maxPages() int {
	if n := b.cfg.ChapterList.MaxPages; n > 0 {
		return n
	}
	return DefaultMaxPages
}

func (b *Base) chaptersOnPage(doc *goquery.Document, pageURL string) []ChapterRef {
	scope := doc.Selection
	if list := selector.Parse(b.cfg.ChapterList.List.Paths...); !list.IsEmpty() {
		if nodes := list.Nodes(doc.Selection); nodes.Length() > 0 {
			scope = nodes
		}
	}

	item := selector.Parse(b.cfg.ChapterList.Item.Paths...)
	if item.IsEmpty() {
		item = selector.Parse("a[href]")
	}

	var refs []ChapterRef
	item.Nodes(scope).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		title := strings.TrimSpace(a.Text())
		if !validChapterLink(title, href) {
			return
		}
		refs = append(refs, ChapterRef{Title: title, URL: ResolveURL(pageURL, href)})
	})
	return refs
}

func (b *Base) nextListPage(doc *goquery.Document, pageURL, bookURL string, page int) string {
	pager := selector.Parse(b.cfg.ChapterList.Pager.Paths...)
	if pager.IsEmpty() {
		return ""
	}
	val, ok := pager.ExtractOne(doc.Selection)
	if !ok {
		return ""
	}

	if fmtStr := b.cfg.ChapterList.PageURL.Fmt; fmtStr != "" {
		return BuildPageURL(fmtStr, bookURL, b.cfg.ChapterList.PageURL.SkipEnding, page+1)
	}
	return ResolveURL(pageURL, val)
}

func (b *Base) GetChapterContent(ctx context.Context, chapterURL string, followNext bool) (*ChapterContent, error) {
	body := selector.Parse(b.cfg.Content.Body.Paths...)

	var rawParts, textParts []string
	cur := chapterURL
	nextURL := ""

	for page := 1; page <= b.maxPages(); page++ {
		doc, err := b.Document(ctx, cur)
		if err != nil {
			return nil, err
		}

		node := body.Nodes(doc.Selection)
		if node.Length() == 0 {
			return nil, &ParseError{Source: b.cfg.ID, URL: cur, Step: "content", Field: "content.selector"}
		}

		for _, tag := range b.cfg.Content.RemoveTags {
			if tag = strings.TrimSpace(tag); tag != "" {
				node.Find(tag).Remove()
			}
		}

		if raw, err := goquery.OuterHtml(node.First()); err == nil {
			rawParts = append(rawParts, raw)
		}
		if text := selector.Clean(node, b.cfg.Content.RemoveTags, b.cfg.Patterns()); text != "" {
			textParts = append(textParts, text)
		}

		nextURL = ""
		if next, ok := selector.Parse(b.cfg.Content.Next.Paths...).ExtractOne(doc.Selection); ok {
			resolved := ResolveURL(cur, next)
			if resolved != cur {
				nextURL = resolved
			}
		}

		if !followNext || nextURL == "" || !nextSectionMatch(nextURL, cur) {
			break
		}
		cur = nextURL
	}

	return &ChapterContent{
		Raw:     strings.Join(rawParts, "\n"),
		Text:    strings.Join(textParts, "\n\n"),
		NextURL: nextURL,
	}, nil
}

// Dedupe drops repeated chapter URLs keeping first-seen order and assigns
// zero-based, strictly increasing ordinals.
func Dedupe(refs []ChapterRef) []ChapterRef {
	seen := map[string]bool{}
	out := make([]ChapterRef, 0, len(refs))
	for _, r := range refs {
		if seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		r.Ordinal = len(out)
		out = append(out, r)
	}
	return out
}

// ResolveURL makes href absolute against base; an already-absolute href
// passes through. Unparseable input falls back to the href as-is.
func ResolveURL(base, href string) string {
	if href == "" {
		return ""
	}

	u, err := url.Parse(href)
	if err == nil && u.IsAbs() {
		return u.String()
	}

	b, err2 := url.Parse(base)
	if err != nil || err2 != nil {
		return href
	}
	return b.ResolveReference(u).String()
}

var skipLinkPrefixes = []string{"javascript:", "mailto:", "#"}

func validChapterLink(title, href string) bool {
	if title == "" || href == "" {
		return false
	}
	if len(title) < 2 || len(title) > 200 {
		return false
	}

	h := strings.ToLower(href)
	for _, p := range skipLinkPrefixes {
		if strings.HasPrefix(h, p) {
			return false
		}
	}
	return true
}

var reSectionSuffix = regexp.MustCompile(`^(.*)_(\d+)$`)

// nextSectionMatch reports whether next is the section following cur when
// a site splits chapters: x.html -> x_2.html -> x_3.html.
func nextSectionMatch(next, cur string) bool {
	nb, ni := splitSection(strings.TrimSuffix(next, ".html"))
	cb, ci := splitSection(strings.TrimSuffix(cur, ".html"))
	return nb == cb && ni == ci+1
}

func splitSection(u string) (string, int) {
	if m := reSectionSuffix.FindStringSubmatch(u); m != nil {
		n := 0
		for _, r := range m[2] {
			n = n*10 + int(r-'0')
		}
		return m[1], n
	}
	return u, 1
}

var reAuthorPrefix = regexp.MustCompile(`^(作者[：:]?\s*|by[：:]?\s*)`)

func stripAuthorPrefix(author string) string {
	return strings.TrimSpace(reAuthorPrefix.ReplaceAllString(author, ""))
}
