package source

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/ledongthuc/pdf"
)

// PDFLoader extracts the plain text of every page of a PDF file. A page
// whose text cannot be extracted is skipped with a warning; the load fails
// only when no page yields text.
type PDFLoader struct {
	logger *slog.Logger
}

func NewPDFLoader(logger *slog.Logger) *PDFLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFLoader{logger: logger.With("component", "source")}
}

func (l *PDFLoader) Load(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var (
		buf     bytes.Buffer
		skipped int
		lastErr error
	)
	total := r.NumPage()
	for pageIndex := 1; pageIndex <= total; pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			l.logger.Warn("skipping unreadable PDF page", "path", path, "page", pageIndex, "error", err)
			skipped++
			lastErr = err
			continue
		}
		buf.WriteString(text)
		// Pages are separated by a newline so words never fuse across them.
		buf.WriteString("\n")
	}

	if skipped > 0 && skipped == total {
		return "", fmt.Errorf("no readable page in %d: %w", total, lastErr)
	}
	return normalize(buf.String()), nil
}
