package cmd

import (
	"fmt"

	"github.com/brogergvhs/bookd/internal/parser"

	"github.com/spf13/cobra"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage the source configs for bookd",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore()
		ids, err := store.List()
		if err != nil {
			return err
		}

		fmt.Printf("Sources dir: %s\n", store.Dir())
		fmt.Printf("Configured sources: %d\n", len(ids))
		fmt.Printf("Specialized parsers: %v\n", parser.Default().Names())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourceCmd)
}
