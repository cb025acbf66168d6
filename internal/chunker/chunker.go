// Package chunker splits document text into token-bounded chunks with
// stable, 0-based sequence indices. Token counts are a deterministic
// approximation, not tokenizer parity with the embedding model; what
// matters is that the same input always produces the same chunk
// boundaries, so re-ingestion upserts the same (path, index) keys.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the target chunk size in approximate tokens.
const DefaultChunkSize = 400

// Chunk is one bounded slice of a document, the unit of embedding and retrieval.
type Chunk struct {
	SourcePath string
	Index      int
	Text       string
	TokenCount int
}

// ApproxTokens estimates the token count of a word: one token per four
// characters, minimum one. This tracks the common sub-word tokenizer
// average closely enough for sizing chunks.
func ApproxTokens(word string) int {
	if word == "" {
		return 0
	}
	return (len(word) + 3) / 4
}

// CountTokens estimates the token count of arbitrary text.
func CountTokens(text string) int {
	total := 0
	for _, word := range strings.Fields(text) {
		total += ApproxTokens(word)
	}
	return total
}

// Split divides text into chunks of at most size tokens, breaking on word
// boundaries. Words whose own token cost exceeds the budget are hard-split
// so no input can produce an unbounded chunk. Empty or whitespace-only
// text yields no chunks; text within one budget yields exactly one chunk.
func Split(sourcePath, text string, size int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []Chunk
	var current []string
	tokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			SourcePath: sourcePath,
			Index:      len(chunks),
			Text:       strings.Join(current, " "),
			TokenCount: tokens,
		})
		current = current[:0]
		tokens = 0
	}

	for _, word := range words {
		for ApproxTokens(word) > size {
			// Oversized word: take exactly the remaining budget, flush, continue.
			take := (size - tokens) * 4
			if take <= 0 {
				flush()
				continue
			}
			if take > len(word) {
				take = len(word)
			}
			// Never cut inside a multi-byte rune.
			for take < len(word) && !utf8.RuneStart(word[take]) {
				take--
			}
			if take == 0 {
				flush()
				continue
			}
			current = append(current, word[:take])
			tokens += ApproxTokens(word[:take])
			word = word[take:]
			flush()
		}
		if word == "" {
			continue
		}
		cost := ApproxTokens(word)
		if tokens+cost > size {
			flush()
		}
		current = append(current, word)
		tokens += cost
	}
	flush()

	return chunks
}
