package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var forceRemoveSource bool

var sourceRemoveCmd = &cobra.Command{
	Use:   "remove <source-id>",
	Short: "Remove a configured source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		if !forceRemoveSource {
			fmt.Printf("Remove source %q? [y/N]: ", id)

			reader := bufio.NewReader(os.Stdin)
			resp, _ := reader.ReadString('\n')
			resp = strings.TrimSpace(strings.ToLower(resp))

			if resp != "y" && resp != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		if err := newStore().Remove(id); err != nil {
			return err
		}

		fmt.Printf("Removed source %q\n", id)
		return nil
	},
}

func init() {
	sourceRemoveCmd.Flags().BoolVarP(&forceRemoveSource, "force", "f", false, "remove without asking")
	sourceCmd.AddCommand(sourceRemoveCmd)
}
