package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Lllllllleong/pdfpageflow/internal/models"
)

// PageBreakPlaceholder is the byte-exact placeholder the conversion adapter
// emits between pages within a split. CombineParts inserts the same
// placeholder between splits, so downstream logic is marker-driven and
// cannot tell a split boundary from an intra-split page break.
const PageBreakPlaceholder = "<!-- page break -->"

// pageMarkerPattern matches the numeric page tokens produced by
// NumberPageBreaks. The token syntax assumes document content never
// contains a bare {<digits>} sequence.
var pageMarkerPattern = regexp.MustCompile(`\{(\d+)\}`)

// CombineParts concatenates converted markdown parts in split order,
// inserting a page-break placeholder after each part. When a part is
// missing (its split failed conversion), one placeholder is inserted per
// page of the gap, so the sequential numbering pass still assigns every
// surviving page its true page number: the gap degrades to empty segments
// that the page splitter drops. Parts with empty markdown are skipped.
func CombineParts(parts []models.MarkdownPart) string {
	var b strings.Builder
	prevEnd := 0
	for _, part := range parts {
		if part.Markdown == "" {
			continue
		}
		// Boundaries of pages lost to failed splits before this part.
		for page := prevEnd; page < part.StartPage-1; page++ {
			b.WriteString(PageBreakPlaceholder)
			b.WriteString("\n\n")
		}
		b.WriteString(part.Markdown)
		b.WriteString("\n\n")
		b.WriteString(PageBreakPlaceholder)
		b.WriteString("\n\n")
		prevEnd = part.EndPage
	}
	return b.String()
}

// NumberPageBreaks rewrites the i-th occurrence of the page-break
// placeholder to the literal token {i}, 1-based, in a single left-to-right
// pass. Token values are contiguous and monotonic across the whole
// document regardless of split boundaries. No other text is altered.
func NumberPageBreaks(markdown string) string {
	var b strings.Builder
	rest := markdown
	page := 0
	for {
		i := strings.Index(rest, PageBreakPlaceholder)
		if i < 0 {
			b.WriteString(rest)
			return b.String()
		}
		page++
		b.WriteString(rest[:i])
		fmt.Fprintf(&b, "{%d}", page)
		rest = rest[i+len(PageBreakPlaceholder):]
	}
}

// SplitByPages partitions numbered markdown into per-page records.
// Content before the first marker is page 1; content between marker {k}
// and {k+1} is page k+1. Page numbers are derived from marker position,
// which is always ascending by construction. Segments that are empty after
// trimming are dropped, so output page numbers are not guaranteed
// contiguous.
func SplitByPages(markdown string) []models.PageRecord {
	locs := pageMarkerPattern.FindAllStringIndex(markdown, -1)

	var pages []models.PageRecord
	start := 0
	for seg := 0; ; seg++ {
		end := len(markdown)
		if seg < len(locs) {
			end = locs[seg][0]
		}
		content := strings.TrimSpace(markdown[start:end])
		if content != "" {
			pages = append(pages, models.PageRecord{
				PageNumber: seg + 1,
				Markdown:   content,
			})
		}
		if seg >= len(locs) {
			return pages
		}
		start = locs[seg][1]
	}
}
