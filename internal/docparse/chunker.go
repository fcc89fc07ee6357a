package docparse

import (
	"regexp"
	"strings"
)

// Chunking defaults, in characters.
const (
	DefaultChunkSize = 800
	DefaultOverlap   = 100
)

var sentenceSplitter = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?]+)`)

// SplitSentences breaks text into trimmed sentences. Text without any
// sentence terminator comes back as a single sentence.
func SplitSentences(text string) []string {
	matches := sentenceSplitter.FindAllString(text, -1)
	if len(matches) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}
	sentences := make([]string, 0, len(matches))
	for _, s := range matches {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// ChunkText splits text into sentence-aligned chunks of at most chunkSize
// characters, with roughly overlap characters of trailing context carried
// into the next chunk.
func ChunkText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(sentences) {
		var size int
		end := start
		for end < len(sentences) {
			sentenceLen := len(sentences[end])
			if end > start {
				sentenceLen++ // joining space
			}
			if size+sentenceLen > chunkSize && end > start {
				break
			}
			size += sentenceLen
			end++
		}

		chunks = append(chunks, strings.Join(sentences[start:end], " "))
		if end == len(sentences) {
			break
		}

		// Back up whole sentences until the overlap budget is spent.
		next := end
		carried := 0
		for next > start+1 && carried < overlap {
			carried += len(sentences[next-1]) + 1
			next--
		}
		start = next
	}

	return chunks
}
