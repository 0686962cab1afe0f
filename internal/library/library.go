// Package library is the persistence collaborator the import flow hands
// its results to: one YAML document per imported book, metadata plus the
// ordered chapter refs. Chapter content is intentionally not stored; the
// framework produces it on demand.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/brogergvhs/bookd/internal/parser"
	"gopkg.in/yaml.v3"
)

// Store is what an import needs from persistence.
type Store interface {
	SaveBook(info *parser.BookInfo, sourceID string, chapters []parser.ChapterRef) (string, error)
}

// Dir is the filesystem Store.
type Dir struct {
	Root string
}

func NewDir(root string) *Dir {
	if root == "" {
		root = "."
	}
	return &Dir{Root: root}
}

type bookRecord struct {
	Title       string          `yaml:"title"`
	Author      string          `yaml:"author"`
	Description string          `yaml:"description,omitempty"`
	CoverURL    string          `yaml:"cover_url,omitempty"`
	SourceID    string          `yaml:"source_id"`
	SourceURL   string          `yaml:"source_url"`
	Chapters    []chapterRecord `yaml:"chapters"`
}

type chapterRecord struct {
	Ordinal int    `yaml:"ordinal"`
	Title   string `yaml:"title"`
	URL     string `yaml:"url"`
}

// SaveBook writes <root>/<sanitized-title>.yaml and returns the path.
func (d *Dir) SaveBook(info *parser.BookInfo, sourceID string, chapters []parser.ChapterRef) (string, error) {
	if info == nil || info.Title == "" {
		return "", fmt.Errorf("library: book has no title")
	}

	rec := bookRecord{
		Title:       info.Title,
		Author:      info.Author,
		Description: info.Description,
		CoverURL:    info.CoverURL,
		SourceID:    sourceID,
		SourceURL:   info.SourceURL,
		Chapters:    make([]chapterRecord, len(chapters)),
	}
	for i, ch := range chapters {
		rec.Chapters[i] = chapterRecord{Ordinal: ch.Ordinal, Title: ch.Title, URL: ch.URL}
	}

	data, err := yaml.Marshal(&rec)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(d.Root, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(d.Root, sanitize(info.Title)+".yaml")
	return path, os.WriteFile(path, data, 0644)
}

var reUnderscore = regexp.MustCompile(`_+`)

func sanitize(s string) string {
	repl := []string{
		"•", "_",
		"-", "_",
		"—", "_",
		"–", "_",
		"/", "_",
		"\\", "_",
		".", "_",
		" ", "_",
		"(", "",
		")", "",
	}
	for i := 0; i < len(repl); i += 2 {
		s = strings.ReplaceAll(s, repl[i], repl[i+1])
	}

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			clean = append(clean, r)
		}
	}
	s = reUnderscore.ReplaceAllString(string(clean), "_")

	return strings.Trim(s, "_")
}
