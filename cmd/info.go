package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var flagInfoSource string

func init() {
	infoCmd := &cobra.Command{
		Use:   "info <book-url>",
		Short: "Show a book's metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}

	infoCmd.Flags().StringVar(&flagInfoSource, "source", "", "source id the book lives on (required)")
	_ = infoCmd.MarkFlagRequired("source")

	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	p, _, err := openParser(flagInfoSource)
	if err != nil {
		return err
	}

	info, err := p.GetBookInfo(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Title:  %s\n", info.Title)
	fmt.Printf("Author: %s\n", info.Author)
	if info.CoverURL != "" {
		fmt.Printf("Cover:  %s\n", info.CoverURL)
	}
	fmt.Printf("URL:    %s\n", info.SourceURL)
	if info.Description != "" {
		fmt.Printf("\n%s\n", info.Description)
	}
	return nil
}
