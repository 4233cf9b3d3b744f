package pipeline

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/Lllllllleong/pdfpageflow/internal/models"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func embeddedImage(alt, format, payload string) string {
	return "![" + alt + "](data:image/" + format + ";base64," + payload + ")"
}

func TestExtractImagesAssignsSequentialIDs(t *testing.T) {
	md := "intro\n" +
		embeddedImage("first", "png", b64("png-bytes")) + "\n" +
		"middle\n" +
		embeddedImage("second", "jpeg", b64("jpeg-bytes-longer")) + "\n"

	images := ExtractImages(md)

	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	if images[0].ID != 1 || images[1].ID != 2 {
		t.Errorf("ids = %d,%d, want 1,2", images[0].ID, images[1].ID)
	}
	if images[0].AltText != "first" || images[0].Format != "png" {
		t.Errorf("first image = %+v", images[0])
	}
	if images[0].ByteSize != len("png-bytes") {
		t.Errorf("ByteSize = %d, want %d", images[0].ByteSize, len("png-bytes"))
	}
	if images[1].Payload != b64("jpeg-bytes-longer") {
		t.Errorf("payload not copied verbatim")
	}
	if images[0].Description != "" {
		t.Errorf("description should be unset at extraction time")
	}
}

func TestExtractImagesSkipsInvalidBase64(t *testing.T) {
	md := embeddedImage("bad", "png", "!!!not-base64!!!") + "\n" +
		embeddedImage("good", "png", b64("ok"))

	images := ExtractImages(md)

	if len(images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(images))
	}
	// The skipped image keeps its slot: the survivor's id is its match
	// position, not a compacted count.
	if images[0].AltText != "good" || images[0].ID != 2 {
		t.Errorf("surviving image = %+v, want alt %q with id 2", images[0], "good")
	}
}

func TestExtractImagesIDsStayPositionalAfterSkip(t *testing.T) {
	md := "text near the bad image\n" +
		embeddedImage("bad", "png", "!!!not-base64!!!") + "\n" +
		"filler line\n" +
		"text above the good image\n" +
		embeddedImage("good", "png", b64("ok")) + "\n" +
		"text below the good image\n"

	images := ExtractImages(md)
	if len(images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(images))
	}

	window := ContextAroundImage(md, images[0].ID, 1, 1)
	if window.Before != "text above the good image" {
		t.Errorf("Before = %q, want the line above the surviving image", window.Before)
	}
	if window.After != "text below the good image" {
		t.Errorf("After = %q, want the line below the surviving image", window.After)
	}
}

func TestExtractImagesNoneIsNotAnError(t *testing.T) {
	if images := ExtractImages("plain markdown, no images"); len(images) != 0 {
		t.Fatalf("expected no images, got %d", len(images))
	}
}

func TestReplaceWithDescriptions(t *testing.T) {
	payload := b64("chart-bytes")
	md := "before\n" + embeddedImage("chart", "png", payload) + "\nafter"
	images := []models.ImageRecord{
		{ID: 1, Format: "png", Payload: payload, Description: "A chart."},
	}

	got := ReplaceWithDescriptions(md, images)

	if !strings.Contains(got, "**[Image Description]**\n\nA chart.") {
		t.Errorf("description template missing: %q", got)
	}
	if strings.Contains(got, payload) {
		t.Errorf("raw payload survived substitution: %q", got)
	}
}

func TestReplaceWithDescriptionsIsLiteral(t *testing.T) {
	payload := b64("img")
	md := embeddedImage("x", "png", payload)
	images := []models.ImageRecord{
		{ID: 1, Format: "png", Payload: payload, Description: "contains $1 and \\ backslash"},
	}

	got := ReplaceWithDescriptions(md, images)

	if !strings.Contains(got, "contains $1 and \\ backslash") {
		t.Errorf("description was expanded instead of inserted literally: %q", got)
	}
}

func TestReplaceWithDescriptionsIdempotent(t *testing.T) {
	payload := b64("img")
	md := "text\n" + embeddedImage("x", "png", payload)
	images := []models.ImageRecord{
		{ID: 1, Format: "png", Payload: payload, Description: "desc"},
	}

	once := ReplaceWithDescriptions(md, images)
	twice := ReplaceWithDescriptions(once, images)

	if once != twice {
		t.Errorf("substitution is not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestReplaceWithDescriptionsIgnoresOtherImages(t *testing.T) {
	kept := embeddedImage("keep", "png", b64("other"))
	md := kept + "\n" + embeddedImage("gone", "png", b64("img"))
	images := []models.ImageRecord{
		{ID: 1, Format: "png", Payload: b64("img"), Description: "desc"},
	}

	got := ReplaceWithDescriptions(md, images)

	if !strings.Contains(got, kept) {
		t.Errorf("unrelated image block was touched: %q", got)
	}
	if strings.Contains(got, b64("img")) {
		t.Errorf("target image block survived: %q", got)
	}
}

func TestReplaceWithDescriptionsDefaultText(t *testing.T) {
	payload := b64("img")
	md := embeddedImage("x", "png", payload)
	images := []models.ImageRecord{{ID: 1, Format: "png", Payload: payload}}

	got := ReplaceWithDescriptions(md, images)

	if !strings.Contains(got, "No description available.") {
		t.Errorf("missing default description: %q", got)
	}
}
