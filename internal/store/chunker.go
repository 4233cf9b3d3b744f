package store

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var headingPattern = regexp.MustCompile(`(?m)^#{1,6}\s`)

// MarkdownChunker splits page markdown into chunks bounded by a byte
// budget, preferring markdown heading boundaries so each chunk keeps its
// heading for context. Sections that are still too large are split at
// blank lines, and as a last resort at the budget itself.
type MarkdownChunker struct {
	maxBytes int
}

// NewMarkdownChunker creates a chunker with the given byte budget.
func NewMarkdownChunker(maxBytes int) *MarkdownChunker {
	if maxBytes < 1 {
		maxBytes = 3000
	}
	return &MarkdownChunker{maxBytes: maxBytes}
}

// Chunk splits text into chunks of at most the configured byte budget.
// Empty input yields no chunks.
func (c *MarkdownChunker) Chunk(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= c.maxBytes {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, section := range c.splitSections(text) {
		if current.Len() > 0 && current.Len()+len(section)+2 > c.maxBytes {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if len(section) > c.maxBytes {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			chunks = append(chunks, c.splitOversized(section)...)
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(section)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// splitSections cuts the text at heading boundaries, keeping each heading
// with the content below it.
func (c *MarkdownChunker) splitSections(text string) []string {
	locs := headingPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	var sections []string
	if locs[0][0] > 0 {
		if pre := strings.TrimSpace(text[:locs[0][0]]); pre != "" {
			sections = append(sections, pre)
		}
	}
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		if section := strings.TrimSpace(text[loc[0]:end]); section != "" {
			sections = append(sections, section)
		}
	}
	return sections
}

// splitOversized splits one over-budget section at blank lines, falling
// back to hard byte cuts for a single paragraph that exceeds the budget.
func (c *MarkdownChunker) splitOversized(section string) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, para := range strings.Split(section, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(para)+2 > c.maxBytes {
			flush()
		}
		for len(para) > c.maxBytes {
			flush()
			// Back the cut off to a rune boundary so a multi-byte rune
			// is never split across two chunks.
			cut := c.maxBytes
			for cut > 0 && !utf8.RuneStart(para[cut]) {
				cut--
			}
			if cut == 0 {
				cut = c.maxBytes
			}
			chunks = append(chunks, para[:cut])
			para = para[cut:]
		}
		if para == "" {
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()
	return chunks
}
