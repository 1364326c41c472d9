package indexer

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/docintel/internal/apperr"
	"github.com/hyperjump/docintel/internal/embedding"
	"github.com/hyperjump/docintel/internal/models"
	"github.com/hyperjump/docintel/internal/vector"
)

const testDims = 8

func newTestPipeline(t *testing.T, chunkSize int) (*Pipeline, *vector.MemoryIndex) {
	t.Helper()
	chunker, err := NewChunker(chunkSize)
	if err != nil {
		t.Fatal(err)
	}
	idx, err := vector.NewMemoryIndex(testDims)
	if err != nil {
		t.Fatal(err)
	}
	return NewPipeline(chunker, embedding.NewMockEmbedder(testDims), idx), idx
}

// flakyIndex fails every Add after the first okAdds.
type flakyIndex struct {
	*vector.MemoryIndex
	okAdds int
}

func (f *flakyIndex) Add(ctx context.Context, v []float32, m models.Metadata) error {
	if f.okAdds == 0 {
		return errors.New("disk on fire")
	}
	f.okAdds--
	return f.MemoryIndex.Add(ctx, v, m)
}

type failingEmbedder struct{ *embedding.MockEmbedder }

func (failingEmbedder) EmbedDocuments(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("model offline")
}

type shortEmbedder struct{ *embedding.MockEmbedder }

func (s shortEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := s.MockEmbedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	return vecs[:len(vecs)-1], nil
}

func TestPipeline_Process(t *testing.T) {
	p, idx := newTestPipeline(t, 5)
	res, err := p.Process(context.Background(), "AAAA BBBB CCCC")
	if err != nil {
		t.Fatal(err)
	}
	if res.ChunkCount != 3 || res.NoContent {
		t.Errorf("result = %+v, want 3 chunks", res)
	}
	if idx.Size() != 3 {
		t.Errorf("index size = %d, want 3", idx.Size())
	}
}

func TestPipeline_StoresChunkMetadata(t *testing.T) {
	p, idx := newTestPipeline(t, 5)
	ctx := context.Background()
	_, err := p.ProcessDocument(ctx, "AAAA BBBB CCCC", models.Metadata{models.MetaDocumentID: "d1", models.MetaChunkText: "overridden"})
	if err != nil {
		t.Fatal(err)
	}

	q, _ := embedding.NewMockEmbedder(testDims).EmbedQuery(ctx, "BBBB ")
	results, err := idx.Search(ctx, q, 1)
	if err != nil {
		t.Fatal(err)
	}
	got := results[0]
	if got.Distance > 1e-9 {
		t.Errorf("exact chunk should match at distance 0, got %v", got.Distance)
	}
	if got.ChunkText() != "BBBB " {
		t.Errorf("chunk_text = %q", got.ChunkText())
	}
	if got.Metadata[models.MetaChunkIndex] != 1 {
		t.Errorf("chunk_index = %v", got.Metadata[models.MetaChunkIndex])
	}
	if got.Metadata[models.MetaDocumentID] != "d1" {
		t.Errorf("base metadata missing: %v", got.Metadata)
	}
}

func TestPipeline_NoContent(t *testing.T) {
	p, idx := newTestPipeline(t, 5)
	for _, text := range []string{"", "   \n\t"} {
		res, err := p.Process(context.Background(), text)
		if err != nil {
			t.Fatal(err)
		}
		if !res.NoContent || res.ChunkCount != 0 {
			t.Errorf("Process(%q) = %+v, want no content", text, res)
		}
	}
	if idx.Size() != 0 {
		t.Errorf("index size = %d", idx.Size())
	}
}

func TestPipeline_EmbedFailureAddsNothing(t *testing.T) {
	chunker, _ := NewChunker(5)
	idx, _ := vector.NewMemoryIndex(testDims)
	p := NewPipeline(chunker, failingEmbedder{embedding.NewMockEmbedder(testDims)}, idx)
	if _, err := p.Process(context.Background(), "AAAA BBBB"); err == nil {
		t.Fatal("expected error")
	}
	if idx.Size() != 0 {
		t.Errorf("index size = %d after failed embedding", idx.Size())
	}
}

func TestPipeline_VectorCountMismatch(t *testing.T) {
	chunker, _ := NewChunker(5)
	idx, _ := vector.NewMemoryIndex(testDims)
	p := NewPipeline(chunker, shortEmbedder{embedding.NewMockEmbedder(testDims)}, idx)
	_, err := p.Process(context.Background(), "AAAA BBBB CCCC")
	if !errors.Is(err, apperr.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if idx.Size() != 0 {
		t.Errorf("index size = %d", idx.Size())
	}
}

func TestPipeline_WrongDimensions(t *testing.T) {
	chunker, _ := NewChunker(5)
	idx, _ := vector.NewMemoryIndex(testDims)
	p := NewPipeline(chunker, embedding.NewMockEmbedder(testDims+1), idx)
	if _, err := p.Process(context.Background(), "AAAA"); !errors.Is(err, apperr.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestPipeline_PartialFailureKeepsEarlierEntries(t *testing.T) {
	chunker, _ := NewChunker(5)
	mem, _ := vector.NewMemoryIndex(testDims)
	idx := &flakyIndex{MemoryIndex: mem, okAdds: 2}
	p := NewPipeline(chunker, embedding.NewMockEmbedder(testDims), idx)

	res, err := p.Process(context.Background(), "AAAA BBBB CCCC")
	if err == nil {
		t.Fatal("expected error from third add")
	}
	if res.ChunkCount != 2 {
		t.Errorf("ChunkCount = %d, want 2 entries added before failure", res.ChunkCount)
	}
	if mem.Size() != 2 {
		t.Errorf("index size = %d, want 2", mem.Size())
	}
}
