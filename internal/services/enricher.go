package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/pdfpageflow/internal/config"
	"github.com/Lllllllleong/pdfpageflow/internal/gcp"
	"github.com/Lllllllleong/pdfpageflow/internal/models"
	"github.com/Lllllllleong/pdfpageflow/internal/pipeline"
	"github.com/Lllllllleong/pdfpageflow/internal/store"
)

// GCSEvent is the payload of the storage notification that triggers an
// enrichment run.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// EnricherFunction runs the full enrichment flow for one uploaded PDF:
// download, dedupe by content hash, reconstruct and enrich via the
// pipeline, upload per-page markdown, and replace the document's chunk
// rows in Postgres. Document status is tracked in Firestore.
type EnricherFunction struct {
	storageClient   *storage.Client
	firestoreClient *firestore.Client
	vertexClient    *gcp.VertexClient
	pageStore       *store.PageStore
	processor       *pipeline.Processor
	config          config.Config
}

// NewEnricher creates an EnricherFunction from the environment.
func NewEnricher(ctx context.Context) (*EnricherFunction, error) {
	cfg, err := config.Load(config.GetEnv("CONFIG_FILE", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	if cfg.EnrichedPagesBucket == "" {
		return nil, fmt.Errorf("ENRICHED_PAGES_BUCKET environment variable must be set")
	}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	firestoreClient, err := firestore.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	vertexClient, err := gcp.NewVertexClient(ctx, cfg.ProjectID, cfg.VertexAIRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}

	var pageStore *store.PageStore
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		pageStore = store.New(pool, cfg.ChunkSizeBytes)
		if err := pageStore.Init(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize page store: %w", err)
		}
	} else {
		slog.Warn("DATABASE_URL not set. Page chunks will not be persisted.")
	}

	processor := pipeline.NewProcessor(
		&pipeline.PDFSplitter{TempRoot: cfg.TemporaryFolder},
		&pipeline.GeminiConverter{Model: vertexClient.ConverterModel, Prompt: gcp.ConverterUserPrompt},
		&pipeline.GeminiDescriber{Model: vertexClient.DescriberModel},
		pipeline.Options{
			PagesPerSplit:             cfg.PagesPerSplit,
			ContextLinesBefore:        cfg.ContextLinesBefore,
			ContextLinesAfter:         cfg.ContextLinesAfter,
			MaxConcurrentDescriptions: cfg.MaxConcurrentDescriptions,
		},
	)

	f := &EnricherFunction{
		storageClient:   storageClient,
		firestoreClient: firestoreClient,
		vertexClient:    vertexClient,
		pageStore:       pageStore,
		processor:       processor,
		config:          cfg,
	}
	slog.Info("Enricher initialized.", "collection", cfg.FirestoreCollection, "enrichedPagesBucket", cfg.EnrichedPagesBucket)
	return f, nil
}

// Process handles one GCS object notification end to end. A failure for
// one document never affects other documents; callers isolate runs per
// event.
func (f *EnricherFunction) Process(ctx context.Context, e GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)
	logCtx.Info("Processing new GCS object.")

	if f.config.TemporaryFolder != "" {
		if err := os.MkdirAll(f.config.TemporaryFolder, 0o755); err != nil {
			return fmt.Errorf("failed to create temporary folder: %w", err)
		}
	}
	tempDir, err := os.MkdirTemp(f.config.TemporaryFolder, "enrich-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	sourcePdfPath := filepath.Join(tempDir, "source.pdf")
	if err := gcp.DownloadObject(ctx, f.storageClient, e.Bucket, e.Name, sourcePdfPath); err != nil {
		logCtx.Error("Failed to download source PDF", "error", err)
		return err
	}

	fileHash, err := calculateFileHash(sourcePdfPath)
	if err != nil {
		logCtx.Error("Failed to calculate file hash", "error", err)
		return fmt.Errorf("failed to calculate file hash: %w", err)
	}
	logCtx = logCtx.With("fileHash", fileHash)

	isDuplicate, existingID, err := f.isDuplicate(ctx, fileHash)
	if err != nil {
		logCtx.Error("Failed to check for duplicate", "error", err)
		return err
	}
	if isDuplicate {
		logCtx.Info("Duplicate file detected. Skipping.", "existingDocId", existingID)
		return nil
	}

	docRef, err := f.createInitialDocument(ctx, fileHash, e.Name)
	if err != nil {
		logCtx.Error("Failed to create initial Firestore document", "error", err)
		return err
	}
	logCtx = logCtx.With("documentId", docRef.ID)
	logCtx.Info("Created master document in Firestore.")

	pages, err := f.processor.Process(ctx, sourcePdfPath)
	if err != nil {
		return f.handleError(ctx, logCtx, docRef, "pipeline failed", err)
	}
	logCtx.Info("Pipeline complete.", "pageCount", len(pages))

	if err := f.uploadPages(ctx, logCtx, docRef.ID, pages); err != nil {
		return f.handleError(ctx, logCtx, docRef, "failed to upload enriched pages", err)
	}

	if err := f.uploadMaster(ctx, docRef.ID, pages); err != nil {
		return f.handleError(ctx, logCtx, docRef, "failed to upload master markdown", err)
	}

	if f.pageStore != nil {
		if err := f.pageStore.ReplaceDocument(ctx, docRef.ID, e.Name, pages); err != nil {
			return f.handleError(ctx, logCtx, docRef, "failed to store page chunks", err)
		}
	}

	updates := []firestore.Update{
		{Path: "status", Value: "COMPLETED"},
		{Path: "pageCount", Value: len(pages)},
	}
	if _, err := docRef.Update(ctx, updates); err != nil {
		return f.handleError(ctx, logCtx, docRef, "failed to update status to COMPLETED", err)
	}

	logCtx.Info("Enrichment complete.", "pageCount", len(pages))
	return nil
}

// uploadPages writes one markdown object per page, concurrently with a
// bounded pool.
func (f *EnricherFunction) uploadPages(ctx context.Context, logCtx *slog.Logger, docID string, pages []models.PageRecord) error {
	logCtx.Info("Uploading enriched pages.", "pageCount", len(pages))
	bucketHandle := f.storageClient.Bucket(f.config.EnrichedPagesBucket)

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(10)
	for _, page := range pages {
		eg.Go(func() error {
			objectName := fmt.Sprintf("%s/pages/%05d.md", docID, page.PageNumber)
			if err := gcp.SaveToGCSAtomically(gctx, bucketHandle, objectName, page.Markdown); err != nil {
				return fmt.Errorf("page %d: %w", page.PageNumber, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	logCtx.Info("All pages uploaded successfully.")
	return nil
}

// uploadMaster writes the whole enriched document as one object for
// consumers that want it without stitching pages back together.
func (f *EnricherFunction) uploadMaster(ctx context.Context, docID string, pages []models.PageRecord) error {
	var b strings.Builder
	for i, page := range pages {
		if i > 0 {
			b.WriteString("\n\n---\n\n")
		}
		b.WriteString(page.Markdown)
	}
	bucketHandle := f.storageClient.Bucket(f.config.EnrichedPagesBucket)
	objectName := fmt.Sprintf("%s/master.md", docID)
	return gcp.SaveWithRetry(ctx, bucketHandle, objectName, b.String())
}

func (f *EnricherFunction) isDuplicate(ctx context.Context, fileHash string) (bool, string, error) {
	docs, err := f.firestoreClient.Collection(f.config.FirestoreCollection).
		Where("fileHash", "==", fileHash).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return false, "", fmt.Errorf("failed to query for duplicates: %w", err)
	}
	if len(docs) > 0 {
		return true, docs[0].Ref.ID, nil
	}
	return false, "", nil
}

func (f *EnricherFunction) createInitialDocument(ctx context.Context, fileHash, filename string) (*firestore.DocumentRef, error) {
	newDoc := models.Document{
		FileHash:         fileHash,
		OriginalFilename: filename,
		Status:           "PROCESSING",
		CreatedAt:        time.Now(),
	}
	docRef, _, err := f.firestoreClient.Collection(f.config.FirestoreCollection).Add(ctx, newDoc)
	if err != nil {
		return nil, fmt.Errorf("failed to create master document: %w", err)
	}
	return docRef, nil
}

func (f *EnricherFunction) handleError(ctx context.Context, logCtx *slog.Logger, docRef *firestore.DocumentRef, message string, originalErr error) error {
	fullError := fmt.Sprintf("%s: %v", message, originalErr)
	logCtx.Error(message, "error", originalErr)

	updates := []firestore.Update{
		{Path: "status", Value: "FAILED"},
		{Path: "errorDetails", Value: fullError},
	}
	if _, err := docRef.Update(ctx, updates); err != nil {
		logCtx.Error("CRITICAL: Failed to update Firestore status to FAILED after a processing error.", "updateError", err)
	}
	return fmt.Errorf("%s", fullError)
}

func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
