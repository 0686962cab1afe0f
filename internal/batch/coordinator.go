// Package batch sequences imports of many book URLs. Processing is
// strictly sequential, one import in flight at a time: a rate-limit
// contract towards the target sites, not a data-race concern.
package batch

import (
	"context"
	"time"

	"github.com/brogergvhs/bookd/internal/ui"
)

type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomeFailed     Outcome = "failed"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeUnresolved Outcome = "unresolved"
)

// ItemResult is the per-URL record of a batch run.
type ItemResult struct {
	URL      string
	SourceID string
	Outcome  Outcome
	Err      error
}

// Summary is the final accounting. Unresolved sources count as failed;
// skipped covers items never started because the run was cancelled.
type Summary struct {
	Succeeded int
	Failed    int
	Skipped   int
	Items     []ItemResult
}

// Progress is emitted before each item starts and after each finishes, so
// a caller can render live status.
type Progress struct {
	Done    int
	Total   int
	Current string
}

// ImportFunc performs one import; supplied by the caller so the
// coordinator stays free of parser and persistence wiring.
type ImportFunc func(ctx context.Context, sourceID, bookURL string) error

// ResolveFunc maps a book URL to a source id when no fixed source was
// chosen; ok=false means no source matched.
type ResolveFunc func(bookURL string) (sourceID string, ok bool)

type Coordinator struct {
	Import  ImportFunc
	Resolve ResolveFunc
	// Delay is the minimum pause between consecutive imports.
	Delay      time.Duration
	OnProgress func(Progress)
	Log        *ui.Logger
}

// Run processes the URLs in order. Cancellation is cooperative and
// checked between items: once the context is done, no further item is
// started, the in-flight one is allowed to finish, and everything not yet
// started is reported as skipped.
func (c *Coordinator) Run(ctx context.Context, urls []string, fixedSource string) Summary {
	log := c.Log
	if log == nil {
		log = ui.NewSilentLogger()
	}

	sum := Summary{Items: make([]ItemResult, 0, len(urls))}
	total := len(urls)

	for i, u := range urls {
		if ctx.Err() != nil {
			c.skipRemaining(&sum, urls[i:])
			break
		}

		if i > 0 && c.Delay > 0 {
			select {
			case <-ctx.Done():
				c.skipRemaining(&sum, urls[i:])
				return sum
			case <-time.After(c.Delay):
			}
		}

		c.progress(Progress{Done: i, Total: total, Current: u})

		sourceID := fixedSource
		if sourceID == "" && c.Resolve != nil {
			resolved, ok := c.Resolve(u)
			if !ok {
				log.Warnf("no source matched %s", u)
				sum.Items = append(sum.Items, ItemResult{URL: u, Outcome: OutcomeUnresolved})
				sum.Failed++
				c.progress(Progress{Done: i + 1, Total: total, Current: u})
				continue
			}
			sourceID = resolved
		}

		if err := c.Import(ctx, sourceID, u); err != nil {
			log.Errorf("import %s failed: %v", u, err)
			sum.Items = append(sum.Items, ItemResult{URL: u, SourceID: sourceID, Outcome: OutcomeFailed, Err: err})
			sum.Failed++
		} else {
			sum.Items = append(sum.Items, ItemResult{URL: u, SourceID: sourceID, Outcome: OutcomeSuccess})
			sum.Succeeded++
		}

		c.progress(Progress{Done: i + 1, Total: total, Current: u})
	}

	return sum
}

func (c *Coordinator) skipRemaining(sum *Summary, rest []string) {
	for _, u := range rest {
		sum.Items = append(sum.Items, ItemResult{URL: u, Outcome: OutcomeSkipped})
		sum.Skipped++
	}
}

func (c *Coordinator) progress(p Progress) {
	if c.OnProgress != nil {
		c.OnProgress(p)
	}
}
