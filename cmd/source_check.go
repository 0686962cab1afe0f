package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/brogergvhs/bookd/internal/parser"

	"github.com/spf13/cobra"
)

var flagCheckKeyword string

var sourceCheckCmd = &cobra.Command{
	Use:   "check <source-id>",
	Short: "Probe a source by running a test search against it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		cfg, err := newStore().Load(args[0])
		if err != nil {
			return err
		}

		client, err := newClient(log)
		if err != nil {
			return err
		}

		b, err := parser.NewBase(cfg, client.ForEncoding(cfg.Encoding), log)
		if err != nil {
			return err
		}

		probeURL := b.SearchURL(flagCheckKeyword)
		fmt.Printf("Probing %s\n", probeURL)

		start := time.Now()
		resp, err := client.Fetch(context.Background(), probeURL)
		elapsed := time.Since(start).Round(time.Millisecond)

		if err != nil {
			fmt.Printf("Source %q is unreachable after %s: %v\n", cfg.ID, elapsed, err)
			return err
		}

		fmt.Printf("Source %q answered HTTP %d in %s (%d bytes)\n", cfg.ID, resp.Status, elapsed, len(resp.Body))
		return nil
	},
}

func init() {
	sourceCheckCmd.Flags().StringVar(&flagCheckKeyword, "keyword", "test", "keyword for the probe search")
	sourceCmd.AddCommand(sourceCheckCmd)
}
