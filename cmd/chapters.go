package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/brogergvhs/bookd/internal/parser"

	"github.com/spf13/cobra"
)

var flagChaptersSource string

func init() {
	chaptersCmd := &cobra.Command{
		Use:   "chapters <book-url>",
		Short: "List a book's chapters in reading order",
		Args:  cobra.ExactArgs(1),
		RunE:  runChapters,
	}

	chaptersCmd.Flags().StringVar(&flagChaptersSource, "source", "", "source id the book lives on (required)")
	_ = chaptersCmd.MarkFlagRequired("source")

	rootCmd.AddCommand(chaptersCmd)
}

func runChapters(cmd *cobra.Command, args []string) error {
	p, _, err := openParser(flagChaptersSource)
	if err != nil {
		return err
	}

	refs, err := p.GetChapterList(context.Background(), args[0])

	var partial *parser.PartialError
	if errors.As(err, &partial) {
		fmt.Printf("warning: chapter list is incomplete (%d pages walked): %v\n\n", partial.Pages, partial.Err)
	} else if err != nil {
		return err
	}

	fmt.Printf("Found %d chapters.\n\n", len(refs))
	for _, ch := range refs {
		fmt.Printf("%4d) %s\n      %s\n", ch.Ordinal+1, ch.Title, ch.URL)
	}
	return nil
}
