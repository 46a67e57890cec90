// Package source reads the text a garden grows from.
//
// Plain text and Markdown files are read as-is, PDF documents are reduced to
// their plain text page by page. Line endings are normalized so the same poem
// grows the same garden on every platform.
package source

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Loader defines the contract for reading a file and extracting its text content.
type Loader interface {
	// Load reads the file at the given path and returns its text content.
	Load(path string) (string, error)
}

// TextLoader reads plain text files (txt, md).
type TextLoader struct{}

func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

func (l *TextLoader) Load(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read text source: %w", err)
	}
	return normalize(string(content)), nil
}

// LoaderFor selects a loader by file extension. Unknown extensions fall back
// to the text loader. A nil logger selects slog.Default.
func LoaderFor(path string, logger *slog.Logger) Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return NewPDFLoader(logger)
	default:
		return NewTextLoader()
	}
}

// Load reads path with the loader its extension selects.
func Load(path string, logger *slog.Logger) (string, error) {
	if path == "" {
		return "", fmt.Errorf("source path is empty")
	}
	text, err := LoaderFor(path, logger).Load(path)
	if err != nil {
		return "", fmt.Errorf("loading %q: %w", path, err)
	}
	return text, nil
}

func normalize(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ReplaceAll(s, "\r\n", "\n")
}
