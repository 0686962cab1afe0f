package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagSearchSource string
	flagSearchLimit  int
)

func init() {
	searchCmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search a source for books by keyword",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearch,
	}

	searchCmd.Flags().StringVar(&flagSearchSource, "source", "", "source id to search (required)")
	searchCmd.Flags().IntVar(&flagSearchLimit, "limit", 10, "maximum number of results")
	_ = searchCmd.MarkFlagRequired("source")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	p, cfg, err := openParser(flagSearchSource)
	if err != nil {
		return err
	}

	results, err := p.Search(context.Background(), args[0], flagSearchLimit)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Printf("No results for %q on %s.\n", args[0], cfg.Name)
		return nil
	}

	fmt.Printf("Found %d results on %s:\n\n", len(results), cfg.Name)
	for i, r := range results {
		fmt.Printf("%3d) %s  [%s]\n     %s\n", i+1, r.Title, r.Author, r.SourceURL)
	}
	return nil
}
