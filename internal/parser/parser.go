// Package parser implements the source-parsing framework: a generic,
// config-driven extraction engine for book sites plus the registry that
// matches a source name or book URL to the most specific parser available.
package parser

import "context"

// SearchResult is one item of a search response. Created per response
// item, immutable, consumed by the caller to request an import.
type SearchResult struct {
	Title       string
	Author      string
	Description string
	CoverURL    string
	// SourceURL is absolute, resolved against the source's base URL.
	SourceURL string
}

// BookInfo is the metadata extracted from a book's detail page.
type BookInfo struct {
	Title       string
	Author      string
	Description string
	CoverURL    string
	SourceURL   string
}

// ChapterRef is one entry of the assembled chapter list. The ordered
// sequence of refs is the authoritative reading order; ordinals are
// zero-based and assigned in traversal order across all pages.
type ChapterRef struct {
	Title   string
	URL     string
	Ordinal int
}

// ChapterContent is the outcome of one chapter fetch. It is transient;
// the framework caches nothing.
type ChapterContent struct {
	// Raw is the extracted body HTML before cleanup, page-concatenated.
	Raw string
	// Text is the cleaned reader text.
	Text string
	// NextURL points at a following page of the same chapter when the
	// source splits chapters, empty otherwise.
	NextURL string
}

// Parser is the capability surface every source parser provides. A
// specialized parser typically embeds *Base and overrides a subset.
type Parser interface {
	Search(ctx context.Context, keyword string, limit int) ([]SearchResult, error)
	GetBookInfo(ctx context.Context, bookURL string) (*BookInfo, error)
	GetChapterList(ctx context.Context, bookURL string) ([]ChapterRef, error)
	GetChapterContent(ctx context.Context, chapterURL string, followNext bool) (*ChapterContent, error)
}

// Response is what the transport collaborator hands back. The body is
// decoded to UTF-8 by the transport; the framework never touches raw
// charsets.
type Response struct {
	Status      int
	Body        []byte
	ContentType string
}

// Fetcher is the transport collaborator boundary. Implementations own
// retries, TLS and timeouts; the framework treats a timeout like any other
// fetch failure.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (*Response, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (*Response, error) {
	return f(ctx, url)
}
