package embedding

import (
	"hash/fnv"
	"strings"
	"unicode"
)

// BERT special tokens and the id range hashed words are folded into.
const (
	tokenCLS       = 101
	tokenSEP       = 102
	wordIDBase     = 1000
	wordIDRange    = 30000
	defaultMaxSize = 256
)

// Tokenizer produces model inputs for BERT-style encoders.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// SimpleTokenizer maps lowercased words to hashed vocabulary ids. It has no vocabulary file, so
// ids only approximate a real WordPiece tokenizer.
type SimpleTokenizer struct{}

// Tokenize returns [CLS] words... [SEP] padded with zeros to maxTokens.
func (t *SimpleTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = defaultMaxSize
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	put := func(pos int, id int64) {
		inputIDs[pos] = id
		attentionMask[pos] = 1
	}
	put(0, tokenCLS)
	pos := 1
	for _, w := range SplitWords(strings.ToLower(text)) {
		if pos >= maxTokens-1 {
			break
		}
		put(pos, int64(HashString(w)%wordIDRange)+wordIDBase)
		pos++
	}
	if pos < maxTokens {
		put(pos, tokenSEP)
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// SplitWords splits on anything that is not a letter or digit. Returns nil when there are no words.
func SplitWords(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len(words) == 0 {
		return nil
	}
	return words
}

// HashString returns a deterministic non-negative FNV-1a hash of s.
func HashString(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() & 0x7fffffff)
}
