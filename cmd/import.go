package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/brogergvhs/bookd/internal/batch"
	"github.com/brogergvhs/bookd/internal/library"
	"github.com/brogergvhs/bookd/internal/parser"
	"github.com/brogergvhs/bookd/internal/source"
	"github.com/brogergvhs/bookd/internal/ui"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	flagImportSource string
	flagAutoDetect   bool
	flagImportFile   string
	flagImportOutput string
	flagImportDelay  time.Duration
	flagNoProgress   bool
)

func init() {
	importCmd := &cobra.Command{
		Use:   "import [book-url]...",
		Short: "Import books into the local library: metadata plus the full chapter list",
		RunE:  runImport,
	}

	importCmd.Flags().StringVar(&flagImportSource, "source", "", "use this source id for every URL")
	importCmd.Flags().BoolVar(&flagAutoDetect, "auto-detect", false, "resolve each URL to a source by its hostname")
	importCmd.Flags().StringVar(&flagImportFile, "file", "", "read additional book URLs from a file, one per line")
	importCmd.Flags().StringVar(&flagImportOutput, "output", "./library", "library folder for the imported books")
	importCmd.Flags().DurationVar(&flagImportDelay, "delay", time.Second, "pause between consecutive imports")
	importCmd.Flags().BoolVar(&flagNoProgress, "no-progress", false, "disable the progress bar")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	log := newLogger()

	urls, err := collectURLs(args, flagImportFile)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no book URLs given (pass them as arguments or via --file)")
	}

	store := newStore()
	configs, broken, err := store.LoadAll()
	if err != nil {
		return err
	}
	for id, berr := range broken {
		log.Warnf("skipping broken source %q: %v", id, berr)
	}
	if len(configs) == 0 {
		return fmt.Errorf("no sources configured; add one with 'bookd source add'")
	}

	if flagImportSource == "" && !flagAutoDetect {
		picked, err := pickSource(configs)
		if err != nil {
			return err
		}
		flagImportSource = picked
	}

	client, err := newClient(log)
	if err != nil {
		return err
	}

	byID := make(map[string]*source.Config, len(configs))
	for _, cfg := range configs {
		byID[cfg.ID] = cfg
	}

	lib := library.NewDir(flagImportOutput)

	coord := &batch.Coordinator{
		Delay: flagImportDelay,
		Log:   log,
		Import: func(ctx context.Context, sourceID, bookURL string) error {
			cfg, ok := byID[sourceID]
			if !ok {
				return fmt.Errorf("source %q: %w", sourceID, source.ErrNotFound)
			}

			p, _, err := parser.Default().ParserForURL(bookURL, cfg, client.ForEncoding(cfg.Encoding), log)
			if err != nil {
				return err
			}

			info, err := p.GetBookInfo(ctx, bookURL)
			if err != nil {
				return err
			}

			refs, err := p.GetChapterList(ctx, bookURL)
			var partial *parser.PartialError
			if errors.As(err, &partial) {
				log.Warnf("%s: chapter list incomplete after %d pages: %v", info.Title, partial.Pages, partial.Err)
			} else if err != nil {
				return err
			}

			path, err := lib.SaveBook(info, cfg.ID, refs)
			if err != nil {
				return err
			}
			log.Infof("imported %q (%d chapters) -> %s", info.Title, len(refs), path)
			return nil
		},
	}

	if flagAutoDetect {
		coord.Resolve = func(bookURL string) (string, bool) {
			m, ok := source.Detect(configs, bookURL)
			return m.SourceID, ok
		}
	}

	var progress *ui.BatchProgress
	if !flagNoProgress && !flagDebug {
		progress = ui.NewBatchProgress(len(urls))
		coord.OnProgress = func(p batch.Progress) {
			progress.Update(p.Done, p.Current)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	sum := coord.Run(ctx, urls, flagImportSource)

	if progress != nil {
		progress.Close()
	}

	fmt.Println()
	fmt.Println("Import Summary:")
	fmt.Printf("Succeeded: %d\n", sum.Succeeded)
	fmt.Printf("Failed:    %d\n", sum.Failed)
	if sum.Skipped > 0 {
		fmt.Printf("Skipped:   %d\n", sum.Skipped)
	}
	fmt.Printf("Time:      %s\n", time.Since(start).Round(time.Second))

	for _, item := range sum.Items {
		switch item.Outcome {
		case batch.OutcomeFailed:
			fmt.Printf("  failed: %s: %v\n", item.URL, item.Err)
		case batch.OutcomeUnresolved:
			fmt.Printf("  no source matched: %s\n", item.URL)
		}
	}

	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d imports failed", sum.Failed, len(urls))
	}
	return nil
}

func collectURLs(args []string, file string) ([]string, error) {
	urls := make([]string, 0, len(args))
	seen := map[string]bool{}

	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" || strings.HasPrefix(u, "#") || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}

	for _, a := range args {
		add(a)
	}

	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = f.Close()
		}()

		sc := bufio.NewScanner(f)
		for sc.Scan() {
			add(sc.Text())
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
	}

	return urls, nil
}

func pickSource(configs []*source.Config) (string, error) {
	items := make([]string, len(configs))
	for i, cfg := range configs {
		items[i] = fmt.Sprintf("%s  (%s)", cfg.Name, cfg.ID)
	}

	prompt := promptui.Select{
		Label: "Select source for all URLs",
		Items: items,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled")
	}
	return configs[idx].ID, nil
}
