package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/docintel/internal/apperr"
	"go.uber.org/zap"
)

// GroupGenerator tries its generators in order and returns the first answer.
type GroupGenerator struct {
	items  []Generator
	logger *zap.Logger
}

// NewGroupGenerator returns nil when items is empty and the single generator when there is one.
func NewGroupGenerator(logger *zap.Logger, items ...Generator) Generator {
	switch len(items) {
	case 0:
		return nil
	case 1:
		return items[0]
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupGenerator{items: items, logger: logger}
}

// Name joins the member names with "|".
func (g *GroupGenerator) Name() string {
	names := make([]string, 0, len(g.items))
	for _, item := range g.items {
		names = append(names, item.Name())
	}
	return strings.Join(names, "|")
}

// Generate returns the first successful answer, or the last error when every generator fails.
func (g *GroupGenerator) Generate(ctx context.Context, query string, contexts []string) (string, error) {
	var lastErr error
	for i, item := range g.items {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		answer, err := item.Generate(ctx, query, contexts)
		if err == nil {
			return answer, nil
		}
		lastErr = err
		g.logger.Warn("generator failed", zap.Int("index", i), zap.String("name", item.Name()), zap.Error(err))
	}
	if lastErr == nil {
		return "", fmt.Errorf("%w: no generator configured", apperr.ErrGenerationUnavailable)
	}
	return "", lastErr
}
