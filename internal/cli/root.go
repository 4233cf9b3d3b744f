package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "pdfpageflow",
	Short: "Convert PDFs into page-accurate, image-free markdown records",
	Long: `pdfpageflow reconstructs a PDF as an ordered sequence of per-page
markdown records. Embedded images are replaced by generated textual
descriptions enriched with surrounding document context, so the output can
feed embedding and indexing systems that require image-free text.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a TOML config file")

	cobra.OnInitialize(func() {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		slog.SetDefault(logger)
	})
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
