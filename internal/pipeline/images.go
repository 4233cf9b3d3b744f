package pipeline

import (
	"encoding/base64"
	"log/slog"
	"regexp"

	"github.com/Lllllllleong/pdfpageflow/internal/models"
)

// imagePattern matches embedded base64 images of the form
// ![alt](data:image/<format>;base64,<payload>). The context windower must
// use this exact pattern so match positions agree with extraction order.
var imagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(data:image/([^;]+);base64,([^)]+)\)`)

// ExtractImages scans markdown for embedded base64 images and returns one
// record per image, id'd by its 1-based position among all pattern matches.
// Payloads are decoded to validate them and measure byte size; a payload
// that fails to decode is logged and skipped without aborting extraction
// of the remaining images. A skipped image still occupies its id, so the
// surviving ids keep lining up with match positions and the context
// windower resolves each id to the right spot in the document. Markdown
// with no images yields a nil slice, which short-circuits the rest of the
// pipeline.
func ExtractImages(markdown string) []models.ImageRecord {
	matches := imagePattern.FindAllStringSubmatch(markdown, -1)

	var images []models.ImageRecord
	for i, m := range matches {
		altText, format, payload := m[1], m[2], m[3]

		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			slog.Warn("Skipping image with invalid base64 payload.", "imageId", i+1, "error", err)
			continue
		}

		images = append(images, models.ImageRecord{
			ID:       i + 1,
			AltText:  altText,
			Format:   format,
			Payload:  payload,
			ByteSize: len(data),
		})
		slog.Info("Found embedded image.", "imageId", i+1, "altText", altText, "format", format, "byteSize", len(data))
	}
	return images
}

// ReplaceWithDescriptions replaces every occurrence of each image's
// embedded block with a two-line description template. Matching is exact
// on (format, payload) with any alt text, so the payload must be
// byte-identical to what extraction copied out. The replacement is literal:
// descriptions are never interpreted as regexp expansions. Blocks that no
// longer match are left untouched, which also makes the pass idempotent
// per image.
func ReplaceWithDescriptions(markdown string, images []models.ImageRecord) string {
	updated := markdown
	for _, img := range images {
		pattern, err := regexp.Compile(
			`!\[[^\]]*\]\(data:image/` + regexp.QuoteMeta(img.Format) + `;base64,` + regexp.QuoteMeta(img.Payload) + `\)`,
		)
		if err != nil {
			slog.Warn("Failed to build substitution pattern for image.", "imageId", img.ID, "error", err)
			continue
		}

		description := img.Description
		if description == "" {
			description = "No description available."
		}
		replacement := "**[Image Description]**\n\n" + description

		updated = pattern.ReplaceAllLiteralString(updated, replacement)
	}
	return updated
}
