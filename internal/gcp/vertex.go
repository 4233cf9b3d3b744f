package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
)

// --- Converter Model Prompts ---
const ConverterSystemPrompt = "You are a document parser and markdown translator. Your task is to parse the content of a PDF document and translate it into markdown format. Accuracy, detail, and information preservation are of utmost importance."
const ConverterUserPrompt = `You will be provided with a PDF document:

Follow these instructions to parse the document and translate its content into markdown format:

Text: Parse all text content directly into markdown text.
Lists: Parse all lists into markdown lists, maintaining the original structure and formatting.
Tables: Parse all tables into markdown tables. If a table contains merged cells, normalize the table by copying and appending the content from the parent cells into the normalized child cells.
Images: Embed each image inline as a markdown image of the form ![alt](data:image/<format>;base64,<payload>) using the image's base64 data. Do not describe images; keep them embedded.
Page breaks: Emit the exact placeholder line <!-- page break --> between consecutive pages of the document. Do not emit it before the first page or after the last page.
Headers and Footers: Ignore any irrelevant content in the header and footer, such as the publishing company's name, logo, address, or page numbers.

Your primary goal is to maintain the integrity and completeness of the document's content in the markdown output. Return ONLY the markdown content without preambles or code fences.`

// --- Describer Model System Prompt ---
const DescriberSystemPrompt = "You are a vision analyst. You describe images from documents precisely and exhaustively so that a reader can understand the image without seeing it. Use any provided surrounding text to ground your description."

// VertexClient holds the pre-configured generative models used by the
// pipeline: a PDF-to-markdown converter and a vision describer.
type VertexClient struct {
	ConverterModel *genai.GenerativeModel
	DescriberModel *genai.GenerativeModel
	baseClient     *genai.Client
}

// NewVertexClient creates a client holding both models.
func NewVertexClient(ctx context.Context, projectID, region string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	converterModel := baseClient.GenerativeModel("gemini-1.5-pro")
	converterModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(ConverterSystemPrompt)},
	}
	converterModel.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.0),
	}

	describerModel := baseClient.GenerativeModel("gemini-1.5-flash")
	describerModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(DescriberSystemPrompt)},
	}
	describerModel.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.2),
	}

	return &VertexClient{
		ConverterModel: converterModel,
		DescriberModel: describerModel,
		baseClient:     baseClient,
	}, nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
