package cmd

import (
	"fmt"

	"github.com/brogergvhs/bookd/internal/parser"
	"github.com/brogergvhs/bookd/internal/source"

	"github.com/spf13/cobra"
)

func init() {
	detectCmd := &cobra.Command{
		Use:   "detect <book-url>",
		Short: "Resolve a book URL to a configured source",
		Args:  cobra.ExactArgs(1),
		RunE:  runDetect,
	}

	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	log := newLogger()
	rawURL := args[0]

	configs, broken, err := newStore().LoadAll()
	if err != nil {
		return err
	}
	for id, berr := range broken {
		log.Warnf("skipping broken source %q: %v", id, berr)
	}

	if m, ok := source.Detect(configs, rawURL); ok {
		fmt.Printf("Source: %s (%s)\nMatch:  %s\n", m.SourceID, m.SourceName, m.Type)
		if reg, match := parser.Default().ForURL(rawURL); match != parser.MatchNone {
			fmt.Printf("Parser: %s (%s)\n", reg.Name, match)
		} else {
			fmt.Println("Parser: generic")
		}
		return nil
	}

	fmt.Println("No configured source matches this URL.")
	fmt.Println("Pick one explicitly with --source, or add a config with 'bookd source add'.")
	return nil
}
