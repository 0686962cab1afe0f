package ui

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// BatchProgress renders a single bar for a batch import run: one tick per
// book, with the in-flight URL appended.
type BatchProgress struct {
	p   *mpb.Progress
	bar *mpb.Bar

	current atomic.Value // string
}

func NewBatchProgress(total int) *BatchProgress {
	bp := &BatchProgress{
		p: mpb.New(
			mpb.WithWidth(52),
			mpb.WithOutput(os.Stdout),
			mpb.WithRefreshRate(120*time.Millisecond),
		),
	}
	bp.current.Store("")

	bp.bar = bp.p.New(
		int64(total),
		mpb.BarStyle().Rbound("]"),

		mpb.PrependDecorators(
			decor.Name("import  "),
		),

		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.CountersNoUnit(" | %d/%d books", decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				if cur, _ := bp.current.Load().(string); cur != "" {
					return " | " + cur
				}
				return ""
			}),
		),
	)
	return bp
}

func (bp *BatchProgress) Update(done int, current string) {
	bp.current.Store(current)
	bp.bar.SetCurrent(int64(done))
}

func (bp *BatchProgress) Close() {
	bp.current.Store("")
	bp.bar.EnableTriggerComplete()
	bp.p.Wait()
}
