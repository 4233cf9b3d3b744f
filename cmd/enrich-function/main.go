package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/pdfpageflow/internal/services"
)

var (
	enricherInstance *services.EnricherFunction
	once             sync.Once
	initErr          error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("EnrichDocument", enrichDocument)
}

// main is required by the Go Functions Framework.
func main() {}

// enrichDocument is the Cloud Function entry point, triggered by a PDF
// landing in the source bucket.
func enrichDocument(ctx context.Context, e cloudevents.Event) error {
	// One-time initialization of clients across invocations.
	once.Do(func() {
		enricherInstance, initErr = services.NewEnricher(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return enricherInstance.Process(ctx, gcsEvent)
}
