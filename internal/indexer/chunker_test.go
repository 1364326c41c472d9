package indexer

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hyperjump/docintel/internal/apperr"
	"github.com/hyperjump/docintel/internal/models"
)

func texts(chunks []models.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

func TestChunker_Windows(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want []string
	}{
		{"three words size 5", "AAAA BBBB CCCC", 5, []string{"AAAA ", "BBBB ", "CCCC"}},
		{"exact multiple", "abcdef", 3, []string{"abc", "def"}},
		{"shorter than window", "hi", 10, []string{"hi"}},
		{"size one", "abc", 1, []string{"a", "b", "c"}},
		{"multibyte counted as characters", "héllo wörld", 4, []string{"héll", "o wö", "rld"}},
		{"whitespace kept", "  \n ", 2, []string{"  ", "\n "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewChunker(tt.size)
			if err != nil {
				t.Fatal(err)
			}
			got := texts(c.Chunk(tt.text))
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("Chunk(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestChunker_Properties(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 37) + "ünïcödé tail"
	for _, size := range []int{1, 7, 64, 500, 10000} {
		c, _ := NewChunker(size)
		chunks := c.Chunk(text)

		var b strings.Builder
		for i, ch := range chunks {
			if ch.SequenceIndex != i {
				t.Errorf("size %d: chunk %d has SequenceIndex %d", size, i, ch.SequenceIndex)
			}
			n := utf8.RuneCountInString(ch.Text)
			if n > size {
				t.Errorf("size %d: chunk %d has %d characters", size, i, n)
			}
			if i < len(chunks)-1 && n != size {
				t.Errorf("size %d: non-final chunk %d is short (%d)", size, i, n)
			}
			b.WriteString(ch.Text)
		}
		if b.String() != text {
			t.Errorf("size %d: concatenated chunks do not reproduce the text", size)
		}

		again := c.Chunk(text)
		if strings.Join(texts(again), "\x00") != strings.Join(texts(chunks), "\x00") {
			t.Errorf("size %d: chunking is not deterministic", size)
		}
	}
}

func TestChunker_Empty(t *testing.T) {
	c, _ := NewChunker(5)
	if got := c.Chunk(""); len(got) != 0 {
		t.Errorf("empty text should give no chunks, got %v", got)
	}
}

func TestNewChunker_Invalid(t *testing.T) {
	for _, size := range []int{0, -5} {
		if _, err := NewChunker(size); !errors.Is(err, apperr.ErrInvalidConfiguration) {
			t.Errorf("size %d: expected ErrInvalidConfiguration, got %v", size, err)
		}
		if _, err := ChunkText("abc", size); !errors.Is(err, apperr.ErrInvalidConfiguration) {
			t.Errorf("ChunkText size %d: expected ErrInvalidConfiguration, got %v", size, err)
		}
	}
}

func TestChunkText(t *testing.T) {
	chunks, err := ChunkText("AAAA BBBB CCCC", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 3 || chunks[2].Text != "CCCC" {
		t.Errorf("got %q", texts(chunks))
	}
}
