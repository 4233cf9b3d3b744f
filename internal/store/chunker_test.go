package store

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkEmpty(t *testing.T) {
	c := NewMarkdownChunker(100)
	if chunks := c.Chunk("   \n  "); len(chunks) != 0 {
		t.Errorf("expected no chunks for blank input, got %d", len(chunks))
	}
}

func TestChunkShortDocumentIsSingleChunk(t *testing.T) {
	c := NewMarkdownChunker(3000)
	chunks := c.Chunk("# Title\n\nA short page.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0], "# Title") {
		t.Errorf("heading should be preserved: %q", chunks[0])
	}
}

func TestChunkSplitsAtHeadings(t *testing.T) {
	c := NewMarkdownChunker(200)
	text := "# Section One\n\n" + strings.Repeat("word ", 30) +
		"\n\n# Section Two\n\n" + strings.Repeat("word ", 30)

	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}

	var foundOne, foundTwo bool
	for _, chunk := range chunks {
		if strings.Contains(chunk, "# Section One") {
			foundOne = true
		}
		if strings.Contains(chunk, "# Section Two") {
			foundTwo = true
		}
	}
	if !foundOne || !foundTwo {
		t.Errorf("each section should keep its heading")
	}
}

func TestChunkMergesSmallSections(t *testing.T) {
	c := NewMarkdownChunker(1000)
	chunks := c.Chunk("# A\n\nShort.\n\n# B\n\nAlso short.\n\n# C\n\nYep.")
	if len(chunks) != 1 {
		t.Errorf("tiny sections should merge into 1 chunk, got %d", len(chunks))
	}
}

func TestChunkRespectsByteBudget(t *testing.T) {
	const budget = 150
	c := NewMarkdownChunker(budget)
	text := "# Big\n\n" + strings.Repeat("alpha beta gamma. ", 20) +
		"\n\n" + strings.Repeat("delta epsilon. ", 20)

	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected oversized section to split, got %d chunks", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > budget {
			t.Errorf("chunks[%d] is %d bytes, budget %d", i, len(chunk), budget)
		}
	}
}

func TestChunkHardSplitsGiantParagraph(t *testing.T) {
	const budget = 50
	c := NewMarkdownChunker(budget)
	text := strings.Repeat("x", 175)

	chunks := c.Chunk(text)
	var total int
	for i, chunk := range chunks {
		if len(chunk) > budget {
			t.Errorf("chunks[%d] is %d bytes, budget %d", i, len(chunk), budget)
		}
		total += len(chunk)
	}
	if total != 175 {
		t.Errorf("hard split lost content: %d of 175 bytes", total)
	}
}

func TestChunkHardSplitKeepsRunesIntact(t *testing.T) {
	const budget = 10
	c := NewMarkdownChunker(budget)
	// Three-byte runes that never align with the budget, so a naive byte
	// cut would land mid-rune.
	text := strings.Repeat("語", 20)

	chunks := c.Chunk(text)
	var rejoined strings.Builder
	for i, chunk := range chunks {
		if len(chunk) > budget {
			t.Errorf("chunks[%d] is %d bytes, budget %d", i, len(chunk), budget)
		}
		if !utf8.ValidString(chunk) {
			t.Errorf("chunks[%d] contains a split rune: %q", i, chunk)
		}
		rejoined.WriteString(chunk)
	}
	if rejoined.String() != text {
		t.Errorf("hard split altered content")
	}
}
