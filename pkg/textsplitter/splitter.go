// Package textsplitter breaks documents into graph-sized episodes.
package textsplitter

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the character budget per chunk
const DefaultChunkSize = 8000

var paragraphSep = regexp.MustCompile(`\n\s*\n`)

// ChunkText splits input into chunks of at most maxChars characters.
// Paragraphs (blank-line separated) are packed greedily and rejoined with a
// blank line; a single paragraph over the budget is sliced into budget-sized
// pieces on rune boundaries. No content is dropped and chunks never overlap.
func ChunkText(input string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultChunkSize
	}

	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}
	if len(trimmed) <= maxChars {
		return []string{trimmed}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, para := range paragraphSep.Split(trimmed, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if len(para) > maxChars {
			flush()
			for start := 0; start < len(para); {
				end := start + maxChars
				if end >= len(para) {
					end = len(para)
				} else {
					// never cut a multi-byte rune in half
					for end > start && !utf8.RuneStart(para[end]) {
						end--
					}
					if end == start {
						_, size := utf8.DecodeRuneInString(para[start:])
						end = start + size
					}
				}
				chunks = append(chunks, para[start:end])
				start = end
			}
			continue
		}

		// +2 for the blank-line joiner
		if current.Len() > 0 && current.Len()+2+len(para) > maxChars {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	return chunks
}
