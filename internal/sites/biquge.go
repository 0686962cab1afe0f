package sites

import (
	"context"

	"github.com/brogergvhs/bookd/internal/parser"
	"github.com/brogergvhs/bookd/internal/source"
	"github.com/brogergvhs/bookd/internal/ui"
)

func init() {
	parser.Default().MustRegister(parser.Registration{
		Name:    "biquge",
		Domains: []string{"www.biquge.com", "biquge.com"},
		Keyword: "biquge",
		New:     newBiquge,
	})
}

// biquge serves biquge.com and its many mirrors. Their catalog pages open
// with a "latest chapters" block that repeats the newest entries ahead of
// the full list; first-seen dedup would pin those at the front in the
// wrong order, so the leading block has to go before deduplication.
type biquge struct {
	*parser.Base
}

func newBiquge(cfg *source.Config, fetch parser.Fetcher, log *ui.Logger) (parser.Parser, error) {
	b, err := parser.NewBase(cfg, fetch, log)
	if err != nil {
		return nil, err
	}
	return &biquge{Base: b}, nil
}

func (b *biquge) GetChapterList(ctx context.Context, bookURL string) ([]parser.ChapterRef, error) {
	raw, err := b.RawChapterList(ctx, bookURL)
	refs := parser.Dedupe(trimLatestBlock(raw))
	return refs, err
}

// trimLatestBlock drops the longest prefix whose every URL reappears
// later in the list. A catalog without the duplicate block is untouched.
func trimLatestBlock(refs []parser.ChapterRef) []parser.ChapterRef {
	last := make(map[string]int, len(refs))
	for i, r := range refs {
		last[r.URL] = i
	}

	cut := 0
	for i, r := range refs {
		if last[r.URL] <= i {
			break
		}
		cut = i + 1
	}
	return refs[cut:]
}
