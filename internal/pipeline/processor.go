package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/pdfpageflow/internal/models"
)

// Options bound the processor's splitting, context windowing and
// description concurrency.
type Options struct {
	PagesPerSplit             int
	ContextLinesBefore        int
	ContextLinesAfter         int
	MaxConcurrentDescriptions int
}

// DefaultOptions returns the processor defaults.
func DefaultOptions() Options {
	return Options{
		PagesPerSplit:             10,
		ContextLinesBefore:        5,
		ContextLinesAfter:         5,
		MaxConcurrentDescriptions: 5,
	}
}

// Processor runs the document reconstruction and image-enrichment
// pipeline: split, convert per split, reassemble with numeric page
// markers, extract and describe embedded images, substitute descriptions,
// and partition into per-page records.
type Processor struct {
	splitter  Splitter
	converter Converter
	describer Describer
	opts      Options
}

// NewProcessor wires a processor from its collaborators. A nil describer
// is valid only for documents without embedded images (e.g. when the
// converter is a TextConverter); images encountered with a nil describer
// all receive the fallback description.
func NewProcessor(splitter Splitter, converter Converter, describer Describer, opts Options) *Processor {
	defaults := DefaultOptions()
	if opts.PagesPerSplit < 1 {
		opts.PagesPerSplit = defaults.PagesPerSplit
	}
	if opts.ContextLinesBefore < 1 {
		opts.ContextLinesBefore = defaults.ContextLinesBefore
	}
	if opts.ContextLinesAfter < 1 {
		opts.ContextLinesAfter = defaults.ContextLinesAfter
	}
	if opts.MaxConcurrentDescriptions < 1 {
		opts.MaxConcurrentDescriptions = defaults.MaxConcurrentDescriptions
	}
	return &Processor{
		splitter:  splitter,
		converter: converter,
		describer: describer,
		opts:      opts,
	}
}

// Process converts the PDF at path into ordered, image-free page records.
// Split conversion failures drop that split's page range but never abort
// the run; only a missing input (or a splitter fault) fails the whole
// document. Temporary split artifacts are removed on every exit path.
func (p *Processor) Process(ctx context.Context, path string) ([]models.PageRecord, error) {
	units, cleanup, err := p.splitter.Split(path, p.opts.PagesPerSplit)
	if err != nil {
		return nil, fmt.Errorf("failed to split pdf: %w", err)
	}
	defer cleanup()

	parts := p.convertSplits(ctx, units)

	combined := CombineParts(parts)
	numbered := NumberPageBreaks(combined)

	images := ExtractImages(numbered)
	if len(images) == 0 {
		slog.Info("No images found in document.", "path", path)
		return SplitByPages(numbered), nil
	}

	contexts := make([]string, len(images))
	for i, img := range images {
		window := ContextAroundImage(numbered, img.ID, p.opts.ContextLinesBefore, p.opts.ContextLinesAfter)
		contexts[i] = window.Combined
	}

	DescribeAll(ctx, p.describerOrFallback(), images, contexts, p.opts.MaxConcurrentDescriptions)

	final := ReplaceWithDescriptions(numbered, images)
	return SplitByPages(final), nil
}

// convertSplits runs each split through the converter in order. A failed
// split is logged and skipped; its page range is simply absent from the
// combined output.
func (p *Processor) convertSplits(ctx context.Context, units []models.SplitUnit) []models.MarkdownPart {
	var parts []models.MarkdownPart
	for i, unit := range units {
		logCtx := slog.With("split", i+1, "totalSplits", len(units), "startPage", unit.StartPage, "endPage", unit.EndPage)
		logCtx.Info("Converting split.")

		markdown, err := p.converter.Convert(ctx, unit.Path)
		if err != nil {
			logCtx.Error("Split conversion failed. Skipping its page range.", "error", err)
			continue
		}
		if markdown == "" {
			continue
		}

		parts = append(parts, models.MarkdownPart{
			Markdown:  markdown,
			StartPage: unit.StartPage,
			EndPage:   unit.EndPage,
		})
		logCtx.Info("Split converted.")
	}
	return parts
}

func (p *Processor) describerOrFallback() Describer {
	if p.describer != nil {
		return p.describer
	}
	return failingDescriber{}
}

// failingDescriber stands in when no vision service is configured, so
// every image degrades to the fallback description instead of panicking.
type failingDescriber struct{}

func (failingDescriber) Describe(context.Context, models.ImageRecord, string) (string, error) {
	return "", fmt.Errorf("no describer configured")
}
