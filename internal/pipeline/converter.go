package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// Converter turns one split PDF into markdown. Implementations must emit
// PageBreakPlaceholder between pages and embed images inline as
// ![alt](data:image/<format>;base64,<payload>) blocks. Any error means the
// split produced no content; the orchestrator skips it and continues.
type Converter interface {
	Convert(ctx context.Context, path string) (string, error)
}

// GeminiConverter converts a split PDF by sending it inline to a Gemini
// model pre-configured with the converter system prompt.
type GeminiConverter struct {
	Model  *genai.GenerativeModel
	Prompt string
}

var _ Converter = (*GeminiConverter)(nil)

// Convert reads the split file, inlines it as a PDF part and extracts the
// markdown text from the model response.
func (c *GeminiConverter) Convert(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read split file %s: %w", path, err)
	}

	filePart := genai.Blob{
		MIMEType: "application/pdf",
		Data:     data,
	}

	resp, err := c.Model.GenerateContent(ctx, filePart, genai.Text(c.Prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate markdown from gemini: %w", err)
	}

	markdown := extractResponseText(resp)
	if markdown == "" {
		slog.Warn("Model returned no markdown content for split. Treating as empty.", "path", path)
	}
	return markdown, nil
}

// extractResponseText concatenates the text parts of a model response and
// strips surrounding markdown fences.
func extractResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}

	content := strings.TrimSpace(b.String())
	content = strings.TrimPrefix(content, "```markdown")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
