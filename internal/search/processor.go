package search

import "github.com/hyperjump/docintel/internal/models"

// ProcessQuery validates the query and applies the default and maximum top_k.
func ProcessQuery(query *models.SearchQuery, defaultTopK, maxTopK int) error {
	if err := query.Validate(defaultTopK); err != nil {
		return err
	}
	query.TopK = clampTopK(query.TopK, maxTopK)
	return nil
}

// clampTopK caps topK at maxTopK. Non-positive values pass through for the index to reject.
func clampTopK(topK, maxTopK int) int {
	if maxTopK > 0 && topK > maxTopK {
		return maxTopK
	}
	return topK
}
