//go:build faiss && cgo
// +build faiss,cgo

package vector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/hyperjump/docintel/internal/apperr"
	"github.com/hyperjump/docintel/internal/models"
)

func TestFAISSIndex_AddSearch(t *testing.T) {
	idx, err := NewFAISSIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	ctx := context.Background()

	vecs := [][]float32{{1, 0, 0}, {0.9, 0.1, 0}, {0, 1, 0}}
	for i, v := range vecs {
		if err := idx.Add(ctx, v, meta(fmt.Sprintf("c%d", i))); err != nil {
			t.Fatal(err)
		}
	}
	results, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ChunkText() != "c0" || results[0].Distance != 0 {
		t.Errorf("top result = %+v", results[0])
	}
}

func TestFAISSIndex_MatchesMemoryIndex(t *testing.T) {
	ctx := context.Background()
	fi, err := NewFAISSIndex(2)
	if err != nil {
		t.Fatal(err)
	}
	defer fi.Close()
	mi, _ := NewMemoryIndex(2)

	points := [][]float32{{1, 0}, {0, 1}, {-1, 0}, {2, 2}, {0.5, 0.5}}
	for i, p := range points {
		_ = fi.Add(ctx, p, meta(fmt.Sprintf("p%d", i)))
		_ = mi.Add(ctx, p, meta(fmt.Sprintf("p%d", i)))
	}
	want, _ := mi.Search(ctx, []float32{0, 0}, 5)
	got, err := fi.Search(ctx, []float32{0, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if got[i].ChunkText() != want[i].ChunkText() {
			t.Errorf("rank %d: faiss %s, memory %s", i, got[i].ChunkText(), want[i].ChunkText())
		}
	}
}

func TestFAISSIndex_SearchEmpty(t *testing.T) {
	idx, err := NewFAISSIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	results, err := idx.Search(context.Background(), []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
}

func TestFAISSIndex_Errors(t *testing.T) {
	idx, err := NewFAISSIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	ctx := context.Background()

	if err := idx.Add(ctx, []float32{1, 0}, meta("x")); !errors.Is(err, apperr.ErrDimensionMismatch) {
		t.Errorf("Add wrong dims: %v", err)
	}
	if idx.Size() != 0 {
		t.Errorf("Size=%d after failed add", idx.Size())
	}
	if _, err := idx.Search(ctx, []float32{1, 0, 0}, 0); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("Search topK 0: %v", err)
	}
	if _, err := NewFAISSIndex(0); !errors.Is(err, apperr.ErrInvalidConfiguration) {
		t.Errorf("zero dims: %v", err)
	}
}

func TestFAISSIndex_Reset(t *testing.T) {
	idx, err := NewFAISSIndex(2)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	ctx := context.Background()
	_ = idx.AddBatch(ctx, [][]float32{{1, 0}, {0, 1}}, []models.Metadata{meta("a"), meta("b")})
	if err := idx.Reset(); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 0 {
		t.Errorf("Size=%d after reset", idx.Size())
	}
	_ = idx.Add(ctx, []float32{0, 1}, meta("c"))
	results, _ := idx.Search(ctx, []float32{0, 1}, 1)
	if len(results) != 1 || results[0].ChunkText() != "c" {
		t.Errorf("after reset got %v", results)
	}
}

func TestFAISSIndex_TiesAtCutKeepInsertionOrder(t *testing.T) {
	idx, err := NewFAISSIndex(2)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	ctx := context.Background()

	if err := idx.Add(ctx, []float32{0, 0}, meta("exact")); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 40; i++ {
		if err := idx.Add(ctx, []float32{1, 0}, meta(fmt.Sprintf("t%d", i))); err != nil {
			t.Fatal(err)
		}
	}
	results, err := idx.Search(ctx, []float32{0, 0}, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"exact", "t0", "t1", "t2"}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i, w := range want {
		if results[i].ChunkText() != w {
			t.Errorf("results[%d] = %s, want %s", i, results[i].ChunkText(), w)
		}
	}
}

func TestFAISSIndex_RejectsNonFinite(t *testing.T) {
	idx, err := NewFAISSIndex(2)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	ctx := context.Background()
	nan := float32(math.NaN())

	if err := idx.Add(ctx, []float32{nan, 0}, meta("bad")); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("Add: expected ErrInvalidArgument, got %v", err)
	}
	if idx.Size() != 0 {
		t.Errorf("Size=%d after rejected add", idx.Size())
	}
	_ = idx.Add(ctx, []float32{0, 0}, meta("ok"))
	if _, err := idx.Search(ctx, []float32{0, float32(math.Inf(-1))}, 1); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("Search: expected ErrInvalidArgument, got %v", err)
	}
}
