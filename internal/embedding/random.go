package embedding

import (
	"context"
	"hash/fnv"
	"math/rand"
)

// RandomEmbedder returns pseudo-random vectors with components uniform in [0,1).
// It stands in for a real model: the stream is seeded from the configured seed and the text,
// so results are reproducible across runs but carry no semantic meaning.
type RandomEmbedder struct {
	dimensions int
	seed       int64
}

// NewRandomEmbedder creates a RandomEmbedder.
func NewRandomEmbedder(dimensions int, seed int64) *RandomEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &RandomEmbedder{dimensions: dimensions, seed: seed}
}

// EmbedQuery returns the vector for text.
func (e *RandomEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	rng := rand.New(rand.NewSource(e.seed ^ int64(h.Sum64())))
	emb := make([]float32, e.dimensions)
	for i := range emb {
		emb[i] = rng.Float32()
	}
	return emb, nil
}

// EmbedDocuments embeds each text independently.
func (e *RandomEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, texts, e.EmbedQuery)
}

// Dimensions returns the embedding dimension.
func (e *RandomEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op.
func (e *RandomEmbedder) Close() error {
	return nil
}
