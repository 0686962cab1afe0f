package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sourceAddCmd = &cobra.Command{
	Use:   "add <config.yaml>",
	Short: "Validate a source config file and install it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore()

		id, err := store.Add(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Added source %q (%s)\n", id, store.Dir())
		return nil
	},
}

func init() {
	sourceCmd.AddCommand(sourceAddCmd)
}
