package cmd

import (
	"fmt"
	"os"

	"github.com/brogergvhs/bookd/internal/fetch"
	"github.com/brogergvhs/bookd/internal/parser"
	"github.com/brogergvhs/bookd/internal/source"
	"github.com/brogergvhs/bookd/internal/ui"

	// Specialized parsers register themselves at init time.
	_ "github.com/brogergvhs/bookd/internal/sites"

	"github.com/spf13/cobra"
)

var (
	flagDebug      bool
	flagSourcesDir string

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
	flagBypass     bool
)

var rootCmd = &cobra.Command{
	Use:   "bookd",
	Short: "Config-driven book site scraper and importer",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagSourcesDir, "sources-dir", "", "root folder holding the source configs (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	rootCmd.PersistentFlags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	rootCmd.PersistentFlags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	rootCmd.PersistentFlags().BoolVar(&flagBypass, "cloudflare-bypass", false, "enable the Cloudflare browser-profile transport")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newLogger() *ui.Logger {
	return ui.NewLogger(flagDebug)
}

func newStore() *source.Store {
	return source.NewStore(flagSourcesDir)
}

func newClient(log *ui.Logger) (*fetch.Client, error) {
	return fetch.NewClient(fetch.Options{
		UserAgent:  flagUserAgent,
		Cookie:     flagCookie,
		CookieFile: flagCookieFile,
		Bypass:     flagBypass,
		Logger:     log,
	})
}

// openParser loads the named source and builds its parser, specialized if
// one is registered under the source id, generic otherwise.
func openParser(sourceID string) (parser.Parser, *source.Config, error) {
	log := newLogger()

	cfg, err := newStore().Load(sourceID)
	if err != nil {
		return nil, nil, err
	}

	client, err := newClient(log)
	if err != nil {
		return nil, nil, err
	}

	p, err := parser.Default().ForSource(cfg.ID, cfg, client.ForEncoding(cfg.Encoding), log)
	if err != nil {
		return nil, nil, err
	}
	return p, cfg, nil
}
