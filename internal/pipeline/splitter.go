package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Lllllllleong/pdfpageflow/internal/models"
)

// ErrInputNotFound is returned when the source PDF path does not exist.
// It is the only fault in the core that fails a whole run.
var ErrInputNotFound = errors.New("input pdf not found")

// Splitter partitions a source PDF into page-bounded sub-documents.
// Implementations return the split units together with a cleanup function
// that removes every temporary artifact; callers must invoke it on every
// exit path of the run.
type Splitter interface {
	Split(path string, pagesPerSplit int) ([]models.SplitUnit, func(), error)
}

// PDFSplitter implements Splitter using pdfcpu. Each run gets its own
// temporary directory under TempRoot (os.TempDir when empty).
type PDFSplitter struct {
	TempRoot string
}

var _ Splitter = (*PDFSplitter)(nil)

// Split writes ceil(totalPages/pagesPerSplit) sub-documents whose page
// ranges partition [1, totalPages] contiguously with no gaps or overlaps.
func (s *PDFSplitter) Split(path string, pagesPerSplit int) ([]models.SplitUnit, func(), error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, func() {}, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, func() {}, fmt.Errorf("stat input pdf: %w", err)
	}
	if pagesPerSplit < 1 {
		pagesPerSplit = 1
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	totalPages, err := api.PageCountFile(path)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to get page count: %w", err)
	}

	if s.TempRoot != "" {
		if err := os.MkdirAll(s.TempRoot, 0o755); err != nil {
			return nil, func() {}, fmt.Errorf("failed to create temp root: %w", err)
		}
	}
	tempDir, err := os.MkdirTemp(s.TempRoot, "pdf-split-*")
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to create temp dir: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(tempDir); err != nil {
			slog.Warn("Failed to remove temporary split directory.", "path", tempDir, "error", err)
		}
	}

	var units []models.SplitUnit
	for start := 1; start <= totalPages; start += pagesPerSplit {
		end := start + pagesPerSplit - 1
		if end > totalPages {
			end = totalPages
		}

		outPath := filepath.Join(tempDir, fmt.Sprintf("split_%d.pdf", len(units)+1))
		pageRange := []string{fmt.Sprintf("%d-%d", start, end)}
		if err := api.TrimFile(path, outPath, pageRange, conf); err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to write split for pages %d-%d: %w", start, end, err)
		}

		units = append(units, models.SplitUnit{
			Path:      outPath,
			StartPage: start,
			EndPage:   end,
		})
	}

	slog.Info("Split PDF into sub-documents.", "path", path, "totalPages", totalPages, "splits", len(units))
	return units, cleanup, nil
}

// SplitRanges returns the page ranges Split would produce for a document
// of totalPages pages, without touching the filesystem.
func SplitRanges(totalPages, pagesPerSplit int) []models.SplitUnit {
	if totalPages < 1 {
		return nil
	}
	if pagesPerSplit < 1 {
		pagesPerSplit = 1
	}
	var units []models.SplitUnit
	for start := 1; start <= totalPages; start += pagesPerSplit {
		end := start + pagesPerSplit - 1
		if end > totalPages {
			end = totalPages
		}
		units = append(units, models.SplitUnit{StartPage: start, EndPage: end})
	}
	return units
}
