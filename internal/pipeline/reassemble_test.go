package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Lllllllleong/pdfpageflow/internal/models"
)

func TestCombinePartsInsertsPlaceholderBetweenParts(t *testing.T) {
	parts := []models.MarkdownPart{
		{Markdown: "first split", StartPage: 1, EndPage: 1},
		{Markdown: "second split", StartPage: 2, EndPage: 2},
	}

	combined := CombineParts(parts)

	if got := strings.Count(combined, PageBreakPlaceholder); got != 2 {
		t.Fatalf("expected 2 placeholders, got %d", got)
	}
	first := strings.Index(combined, "first split")
	sep := strings.Index(combined, PageBreakPlaceholder)
	second := strings.Index(combined, "second split")
	if !(first < sep && sep < second) {
		t.Errorf("placeholder should sit between parts: %q", combined)
	}
}

func TestCombinePartsSkipsEmptyMarkdown(t *testing.T) {
	parts := []models.MarkdownPart{
		{Markdown: "", StartPage: 1, EndPage: 1},
		{Markdown: "content", StartPage: 2, EndPage: 2},
	}
	combined := CombineParts(parts)
	// The empty part still costs a gap placeholder so page 2 keeps its number.
	if got := strings.Count(combined, PageBreakPlaceholder); got != 2 {
		t.Errorf("expected 2 placeholders (1 gap + 1 trailing), got %d", got)
	}
}

func TestCombinePartsFillsGapForMissingSplit(t *testing.T) {
	// Split 2 (pages 3-4) failed conversion: one placeholder per missing
	// page boundary keeps later pages aligned.
	parts := []models.MarkdownPart{
		{Markdown: "pages one and two", StartPage: 1, EndPage: 2},
		{Markdown: "pages five and six", StartPage: 5, EndPage: 6},
	}

	numbered := NumberPageBreaks(CombineParts(parts))
	pages := SplitByPages(numbered)

	if len(pages) != 2 {
		t.Fatalf("expected 2 page records, got %d", len(pages))
	}
	if pages[0].PageNumber != 1 {
		t.Errorf("first record page = %d, want 1", pages[0].PageNumber)
	}
	if pages[1].PageNumber != 5 {
		t.Errorf("second record page = %d, want 5 (no renumbering across the gap)", pages[1].PageNumber)
	}
}

func TestNumberPageBreaksSequential(t *testing.T) {
	md := "a\n" + PageBreakPlaceholder + "\nb\n" + PageBreakPlaceholder + "\nc"

	got := NumberPageBreaks(md)

	want := "a\n{1}\nb\n{2}\nc"
	if got != want {
		t.Errorf("NumberPageBreaks = %q, want %q", got, want)
	}
}

func TestNumberPageBreaksLeavesOtherTextAlone(t *testing.T) {
	md := "no placeholders here, not even {0} or <!-- comment -->"
	if got := NumberPageBreaks(md); got != md {
		t.Errorf("text without placeholders was altered: %q", got)
	}
}

func TestSplitByPagesBasic(t *testing.T) {
	md := "page 1 text\n\n{1}\n\npage 2 text\n\n{2}\n\npage 3 text"

	pages := SplitByPages(md)

	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	for i, page := range pages {
		if page.PageNumber != i+1 {
			t.Errorf("pages[%d].PageNumber = %d, want %d", i, page.PageNumber, i+1)
		}
		want := fmt.Sprintf("page %d text", i+1)
		if page.Markdown != want {
			t.Errorf("pages[%d].Markdown = %q, want %q", i, page.Markdown, want)
		}
	}
}

func TestSplitByPagesDropsWhitespaceOnlyPages(t *testing.T) {
	md := "  \n{1}\n\n   \n{2}\ncontent"

	pages := SplitByPages(md)

	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if pages[0].PageNumber != 3 {
		t.Errorf("PageNumber = %d, want 3", pages[0].PageNumber)
	}
	if pages[0].Markdown != "content" {
		t.Errorf("Markdown = %q, want %q", pages[0].Markdown, "content")
	}
}

func TestSplitByPagesNoMarkers(t *testing.T) {
	pages := SplitByPages("just one page of text")
	if len(pages) != 1 || pages[0].PageNumber != 1 {
		t.Fatalf("expected single page 1, got %+v", pages)
	}
}

func TestReassembleRoundTripPageCount(t *testing.T) {
	// P pages across splits of varying size: every page survives with its
	// own number when all splits convert successfully.
	const totalPages = 7
	ranges := SplitRanges(totalPages, 3)

	var parts []models.MarkdownPart
	for _, r := range ranges {
		var pageTexts []string
		for p := r.StartPage; p <= r.EndPage; p++ {
			pageTexts = append(pageTexts, fmt.Sprintf("page %d text", p))
		}
		parts = append(parts, models.MarkdownPart{
			Markdown:  strings.Join(pageTexts, "\n\n"+PageBreakPlaceholder+"\n\n"),
			StartPage: r.StartPage,
			EndPage:   r.EndPage,
		})
	}

	pages := SplitByPages(NumberPageBreaks(CombineParts(parts)))

	if len(pages) != totalPages {
		t.Fatalf("round trip produced %d pages, want %d", len(pages), totalPages)
	}
	for i, page := range pages {
		if page.PageNumber != i+1 {
			t.Errorf("pages[%d].PageNumber = %d, want %d", i, page.PageNumber, i+1)
		}
		want := fmt.Sprintf("page %d text", i+1)
		if page.Markdown != want {
			t.Errorf("pages[%d].Markdown = %q, want %q", i, page.Markdown, want)
		}
	}
}
