package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"cloud.google.com/go/vertexai/genai"
	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/pdfpageflow/internal/models"
)

// FallbackDescription is substituted when a description request fails.
// One failing image never blocks or invalidates the others.
const FallbackDescription = "Error generating description for image"

// DescriptionPrompt is the fixed instruction template sent with every
// image. The surrounding-text context, when present, is appended by
// BuildDescriptionPrompt.
const DescriptionPrompt = `Provide a clear, detailed, and accurate description of the image from the document. The description should allow a reader to fully understand the image without seeing it.

Include:
1. Image Type: (e.g., photograph, chart, infographic, table, diagram).
2. Layout and Composition: Describe the structure, key elements, color scheme, and any labels, captions, legends, or highlights.
3. Content Details:
   - If a table: describe column headers, notable entries, and visible patterns or trends.
   - If a chart/graph: specify chart type, axis labels, legend items, and key insights.
   - If a diagram: describe shapes, flows, relationships, and labeled sections.
   - If a photograph: describe subjects, actions, setting, and visible branding.
4. Text Elements: Transcribe all visible text and describe where it appears and why (titles, labels, callouts, footnotes, etc.).
5. Visual Styling: Note colors, branding, icons, and emphasis techniques.
6. Purpose and Context: Explain the likely message or intent of the image within the document.

The description should be complete enough for someone to reconstruct the image accurately from your text.`

// Describer requests a textual description of one image from a
// vision-capable service.
type Describer interface {
	Describe(ctx context.Context, img models.ImageRecord, contextBlock string) (string, error)
}

// BuildDescriptionPrompt appends the image's surrounding-text context to
// the base prompt. An empty context leaves the base prompt unchanged.
func BuildDescriptionPrompt(basePrompt, contextBlock string) string {
	if contextBlock == "" {
		return basePrompt
	}
	return basePrompt + `

**Additional Context from Document:**
The image appears in the following context within the document:

` + contextBlock + `

Please use this surrounding text to provide more accurate and contextually relevant descriptions of the image, especially for technical diagrams, charts, or figures that may be referenced in the text.`
}

// GeminiDescriber implements Describer against a Gemini vision model.
type GeminiDescriber struct {
	Model *genai.GenerativeModel
}

var _ Describer = (*GeminiDescriber)(nil)

// Describe sends the image inline together with the context-augmented
// prompt and returns the model's text.
func (d *GeminiDescriber) Describe(ctx context.Context, img models.ImageRecord, contextBlock string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(img.Payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode image payload: %w", err)
	}

	imagePart := genai.Blob{
		MIMEType: "image/" + img.Format,
		Data:     data,
	}
	prompt := genai.Text(BuildDescriptionPrompt(DescriptionPrompt, contextBlock))

	resp, err := d.Model.GenerateContent(ctx, imagePart, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate description from gemini: %w", err)
	}

	text := extractResponseText(resp)
	if text == "" {
		return "", fmt.Errorf("model returned an empty description")
	}
	return text, nil
}

// DescribeAll requests a description for every image concurrently, at most
// maxConcurrent requests in flight, and writes results back onto the
// records. It returns only after every request has completed: failures are
// converted to FallbackDescription instead of aborting the batch, so each
// record's Description field is always set on return.
func DescribeAll(ctx context.Context, describer Describer, images []models.ImageRecord, contexts []string, maxConcurrent int) {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	eg := new(errgroup.Group)
	eg.SetLimit(maxConcurrent)

	for i := range images {
		eg.Go(func() error {
			img := images[i]
			slog.Info("Requesting image description.", "imageId", img.ID, "totalImages", len(images))

			description, err := describer.Describe(ctx, img, contexts[i])
			if err != nil {
				slog.Warn("Description request failed. Using fallback.", "imageId", img.ID, "error", err)
				images[i].Description = FallbackDescription
				return nil
			}
			images[i].Description = description
			slog.Info("Description generated.", "imageId", img.ID)
			return nil
		})
	}
	// Join barrier: every task has set its record's Description.
	_ = eg.Wait()
}
