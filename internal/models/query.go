package models

import (
	"fmt"
	"strings"

	"github.com/hyperjump/docintel/internal/apperr"
)

// DefaultTopK is used when a query does not ask for a specific number of results.
const DefaultTopK = 5

// SearchQuery is a retrieval request.
type SearchQuery struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// Validate trims the query, rejects blank input and fills in the default top_k.
// A negative top_k is left as is so the index reports it.
func (q *SearchQuery) Validate(defaultTopK int) error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return fmt.Errorf("%w: query cannot be empty", apperr.ErrInvalidArgument)
	}
	if q.TopK == 0 {
		if defaultTopK <= 0 {
			defaultTopK = DefaultTopK
		}
		q.TopK = defaultTopK
	}
	return nil
}

// IngestRequest is a raw-text ingestion request.
type IngestRequest struct {
	Text     string `json:"text"`
	Filename string `json:"filename,omitempty"`
}
