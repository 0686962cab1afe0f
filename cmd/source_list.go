package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		configs, broken, err := newStore().LoadAll()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tNAME\tURL\tENCODING")

		for _, cfg := range configs {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cfg.ID, cfg.Name, cfg.BaseURL, cfg.Encoding)
		}

		if err := w.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to flush table output: %v\n", err)
		}

		for id, berr := range broken {
			fmt.Fprintf(os.Stderr, "warning: source %q is broken: %v\n", id, berr)
		}
		return nil
	},
}

func init() {
	sourceCmd.AddCommand(sourceListCmd)
}
