package pipeline

import (
	"strings"

	"github.com/Lllllllleong/pdfpageflow/internal/models"
)

// ContextAroundImage extracts a bounded window of text surrounding the
// imageID-th embedded image (1-based, same pattern and ordering as
// ExtractImages). It takes the last linesBefore lines preceding the match
// and the first linesAfter lines following it; when fewer full lines
// exist, all available text on that side is used. An out-of-range id
// returns an empty window rather than an error.
func ContextAroundImage(markdown string, imageID, linesBefore, linesAfter int) models.ContextWindow {
	matches := imagePattern.FindAllStringIndex(markdown, -1)
	if imageID < 1 || imageID > len(matches) {
		return models.ContextWindow{}
	}
	loc := matches[imageID-1]

	// The newline separating the image from its neighbors is a boundary,
	// not a context line; drop it so the window holds full lines only.
	textBefore := strings.TrimSuffix(markdown[:loc[0]], "\n")
	beforeLines := strings.Split(textBefore, "\n")
	contextBefore := textBefore
	if len(beforeLines) >= linesBefore {
		contextBefore = strings.Join(beforeLines[len(beforeLines)-linesBefore:], "\n")
	}

	textAfter := strings.TrimPrefix(markdown[loc[1]:], "\n")
	afterLines := strings.Split(textAfter, "\n")
	contextAfter := textAfter
	if len(afterLines) >= linesAfter {
		contextAfter = strings.Join(afterLines[:linesAfter], "\n")
	}

	combined := "Text before image:\n" + contextBefore + "\n\nText after image:\n" + contextAfter

	return models.ContextWindow{
		Before:   strings.TrimSpace(contextBefore),
		After:    strings.TrimSpace(contextAfter),
		Combined: strings.TrimSpace(combined),
	}
}
