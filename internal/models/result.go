package models

// Metadata keys written by the ingestion pipeline.
const (
	MetaChunkText  = "chunk_text"
	MetaChunkIndex = "chunk_index"
	MetaDocumentID = "document_id"
	MetaFilename   = "filename"
)

// Metadata is the mapping stored next to each vector. It always carries chunk_text.
type Metadata map[string]any

// Clone returns a shallow copy so callers cannot mutate index state.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// String returns the value at key when it is a string.
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// QueryResult is one nearest-neighbour hit. Lower distance means more similar.
type QueryResult struct {
	Metadata Metadata `json:"metadata"`
	Distance float64  `json:"distance"`
}

// ChunkText returns the originating chunk text of the hit.
func (r QueryResult) ChunkText() string {
	return r.Metadata.String(MetaChunkText)
}

// Answer modes reported alongside a RetrievalAnswer.
const (
	ModeGenerated   = "generated"
	ModeContextOnly = "context_only"
	ModeNoResults   = "no_results"
)

// RetrievalAnswer is the response to a query: an answer plus the ranked sources it was built from.
type RetrievalAnswer struct {
	Answer  string        `json:"answer"`
	Sources []QueryResult `json:"sources"`
	Mode    string        `json:"mode"`
}
