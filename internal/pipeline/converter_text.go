package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextConverter is an offline Converter that extracts plain text page by
// page. It produces no embedded images, so a pipeline using it never
// issues description requests. Useful when no vision service is reachable
// and as a deterministic adapter in tests.
type TextConverter struct{}

var _ Converter = (*TextConverter)(nil)

// Convert extracts each page's plain text and joins pages with the
// page-break placeholder. Pages that fail text extraction contribute an
// empty page body but still get their boundary marker, preserving page
// alignment.
func (c *TextConverter) Convert(_ context.Context, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read split file %s: %w", path, err)
	}

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open split pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	return strings.Join(pages, "\n\n"+PageBreakPlaceholder+"\n\n"), nil
}
