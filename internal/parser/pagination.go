package parser

import (
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// walkState is the chapter-list walker's state machine.
type walkState int

const (
	stateFetchingPage walkState = iota
	stateHavePage
	stateDone
	stateFailed
)

// Walker drives multi-page chapter-list assembly. It owns only control
// flow: fetching, item extraction and next-page computation are injected.
type Walker struct {
	Fetch   func(ctx context.Context, pageURL string) (*goquery.Document, error)
	Extract func(doc *goquery.Document, pageURL string) []ChapterRef
	// Next returns the following page URL, or "" when the walk is over.
	Next func(doc *goquery.Document, pageURL string, page int) string
	// MaxPages bounds the walk; <= 0 falls back to DefaultMaxPages.
	MaxPages int
}

// WalkResult carries whatever was collected, plus the partial flag when
// the walk failed midway. Callers decide whether partial results are
// acceptable.
type WalkResult struct {
	Chapters []ChapterRef
	Pages    int
	Partial  bool
	Err      error
}

// Walk runs the state machine from the first page. A next page equal to
// the current one ends the walk (cycle guard); the page cap holds even
// when the pager always reports another page.
func (w *Walker) Walk(ctx context.Context, start string) WalkResult {
	maxPages := w.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var res WalkResult
	var doc *goquery.Document
	cur := start
	page := 1

	for state := stateFetchingPage; state != stateDone && state != stateFailed; {
		switch state {
		case stateFetchingPage:
			var err error
			doc, err = w.Fetch(ctx, cur)
			if err != nil {
				res.Partial = true
				res.Err = err
				state = stateFailed
				continue
			}
			state = stateHavePage

		case stateHavePage:
			res.Chapters = append(res.Chapters, w.Extract(doc, cur)...)
			res.Pages++

			if res.Pages >= maxPages {
				state = stateDone
				continue
			}

			next := w.Next(doc, cur, page)
			if next == "" || next == cur {
				state = stateDone
				continue
			}

			cur = next
			page++
			state = stateFetchingPage
		}
	}

	return res
}

// BuildPageURL expands a chapter-list page template: {book_url} is the
// book URL with skipEnding trimmed off, {page} is the 1-based page number.
func BuildPageURL(format, bookURL, skipEnding string, page int) string {
	b := bookURL
	if skipEnding != "" {
		b = strings.TrimSuffix(b, skipEnding)
	}
	s := strings.ReplaceAll(format, "{book_url}", b)
	return strings.ReplaceAll(s, "{page}", strconv.Itoa(page))
}
