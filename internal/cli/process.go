package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/pdfpageflow/internal/config"
	"github.com/Lllllllleong/pdfpageflow/internal/gcp"
	"github.com/Lllllllleong/pdfpageflow/internal/pipeline"
)

var (
	pagesPerSplit int
	linesBefore   int
	linesAfter    int
	maxConcurrent int
	outputPath    string
	offline       bool
)

var processCmd = &cobra.Command{
	Use:   "process <pdf>",
	Short: "Run the enrichment pipeline on a local PDF",
	Long: `Process splits the PDF, converts each split to markdown, reassembles
the document with numeric page markers, replaces embedded images with
generated descriptions, and writes the resulting page records as JSON.

In offline mode the PDF is converted with a local plain-text extractor
instead of Vertex AI; no embedded images are produced and no description
requests are issued.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().IntVar(&pagesPerSplit, "pages-per-split", 0, "pages per split unit (0 = config default)")
	processCmd.Flags().IntVar(&linesBefore, "context-before", 0, "context lines before each image (0 = config default)")
	processCmd.Flags().IntVar(&linesAfter, "context-after", 0, "context lines after each image (0 = config default)")
	processCmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 0, "max concurrent description requests (0 = config default)")
	processCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write page records to this file instead of stdout")
	processCmd.Flags().BoolVar(&offline, "offline", false, "use the local plain-text converter instead of Vertex AI")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	applyFlagOverrides(&cfg)

	var (
		converter pipeline.Converter
		describer pipeline.Describer
	)
	if offline {
		converter = &pipeline.TextConverter{}
	} else {
		if cfg.ProjectID == "" {
			return fmt.Errorf("PROJECT_ID must be set (or use --offline)")
		}
		vertexClient, err := gcp.NewVertexClient(ctx, cfg.ProjectID, cfg.VertexAIRegion)
		if err != nil {
			return fmt.Errorf("failed to create vertex client: %w", err)
		}
		defer vertexClient.Close()
		converter = &pipeline.GeminiConverter{Model: vertexClient.ConverterModel, Prompt: gcp.ConverterUserPrompt}
		describer = &pipeline.GeminiDescriber{Model: vertexClient.DescriberModel}
	}

	processor := pipeline.NewProcessor(
		&pipeline.PDFSplitter{TempRoot: cfg.TemporaryFolder},
		converter,
		describer,
		pipeline.Options{
			PagesPerSplit:             cfg.PagesPerSplit,
			ContextLinesBefore:        cfg.ContextLinesBefore,
			ContextLinesAfter:         cfg.ContextLinesAfter,
			MaxConcurrentDescriptions: cfg.MaxConcurrentDescriptions,
		},
	)

	pages, err := processor.Process(ctx, args[0])
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(pages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode page records: %w", err)
	}
	encoded = append(encoded, '\n')

	if outputPath == "" {
		_, err = os.Stdout.Write(encoded)
		return err
	}
	return os.WriteFile(outputPath, encoded, 0o644)
}

func applyFlagOverrides(cfg *config.Config) {
	if pagesPerSplit > 0 {
		cfg.PagesPerSplit = pagesPerSplit
	}
	if linesBefore > 0 {
		cfg.ContextLinesBefore = linesBefore
	}
	if linesAfter > 0 {
		cfg.ContextLinesAfter = linesAfter
	}
	if maxConcurrent > 0 {
		cfg.MaxConcurrentDescriptions = maxConcurrent
	}
}
