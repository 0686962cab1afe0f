package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagReadSource string
	flagFollowNext bool
	flagRawHTML    bool
)

func init() {
	readCmd := &cobra.Command{
		Use:   "read <chapter-url>",
		Short: "Fetch a chapter's text and print it",
		Args:  cobra.ExactArgs(1),
		RunE:  runRead,
	}

	readCmd.Flags().StringVar(&flagReadSource, "source", "", "source id the chapter lives on (required)")
	readCmd.Flags().BoolVar(&flagFollowNext, "follow-next", false, "stitch continuation pages (chapter_2.html etc.) into one chapter")
	readCmd.Flags().BoolVar(&flagRawHTML, "raw", false, "print the raw HTML instead of the cleaned text")
	_ = readCmd.MarkFlagRequired("source")

	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	p, _, err := openParser(flagReadSource)
	if err != nil {
		return err
	}

	content, err := p.GetChapterContent(context.Background(), args[0], flagFollowNext)
	if err != nil {
		return err
	}

	if flagRawHTML {
		fmt.Println(content.Raw)
	} else {
		fmt.Println(content.Text)
	}

	if content.NextURL != "" {
		fmt.Printf("\nNext chapter: %s\n", content.NextURL)
	}
	return nil
}
