package textsplitter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText_Empty(t *testing.T) {
	assert.Nil(t, ChunkText("", 100))
	assert.Nil(t, ChunkText("   \n\n  ", 100))
}

func TestChunkText_SingleChunkUnderLimit(t *testing.T) {
	input := "First paragraph.\n\nSecond paragraph.\n\nThird paragraph."
	chunks := ChunkText(input, 1000)
	require.Len(t, chunks, 1)
	assert.Equal(t, input, chunks[0])
}

func TestChunkText_PacksParagraphs(t *testing.T) {
	a := strings.Repeat("a", 40)
	b := strings.Repeat("b", 40)
	c := strings.Repeat("c", 40)
	chunks := ChunkText(a+"\n\n"+b+"\n\n"+c, 90)

	require.Len(t, chunks, 2)
	assert.Equal(t, a+"\n\n"+b, chunks[0])
	assert.Equal(t, c, chunks[1])
}

func TestChunkText_OversizeParagraphSliced(t *testing.T) {
	para := strings.Repeat("x", 250)
	chunks := ChunkText(para, 100)

	require.Len(t, chunks, 3)
	assert.Equal(t, 100, len(chunks[0]))
	assert.Equal(t, 100, len(chunks[1]))
	assert.Equal(t, 50, len(chunks[2]))
	assert.Equal(t, para, strings.Join(chunks, ""), "slicing must be lossless")
}

func TestChunkText_OversizeMultiByteParagraph(t *testing.T) {
	// 3 bytes per rune, so the budget never lands on a rune boundary
	para := strings.Repeat("世", 5000)
	chunks := ChunkText(para, 8000)

	require.Len(t, chunks, 2)
	for i, chunk := range chunks {
		assert.Truef(t, utf8.ValidString(chunk), "chunk %d is not valid UTF-8", i)
		assert.LessOrEqualf(t, len(chunk), 8000, "chunk %d over budget", i)
	}
	assert.Equal(t, para, strings.Join(chunks, ""), "slicing must be lossless")
}

func TestChunkText_BudgetSmallerThanRune(t *testing.T) {
	chunks := ChunkText("日本語", 1)

	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"日", "本", "語"}, chunks)
}

func TestChunkText_EveryChunkWithinBudget(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		sb.WriteString(strings.Repeat("w", 35+i))
		sb.WriteString("\n\n")
	}
	sb.WriteString(strings.Repeat("y", 500))

	chunks := ChunkText(sb.String(), 120)
	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.LessOrEqualf(t, len(chunk), 120, "chunk %d over budget", i)
		assert.NotEmpty(t, chunk)
	}
}

func TestChunkText_DefaultSize(t *testing.T) {
	input := strings.Repeat("z", DefaultChunkSize+10)
	chunks := ChunkText(input, 0)
	require.Len(t, chunks, 2)
	assert.Equal(t, DefaultChunkSize, len(chunks[0]))
}
