package indexer

import (
	"strings"

	"go.uber.org/zap"
)

type settings struct {
	logger      *zap.Logger
	allowedExts []string
}

// Option configures a Pipeline or an Indexer.
type Option func(*settings)

// WithLogger sets a logger for debug output (chunks added, file skipped, etc.).
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithAllowedExtensions restricts IndexFile and IndexDirectory to the given extensions.
func WithAllowedExtensions(exts []string) Option {
	return func(s *settings) { s.allowedExts = exts }
}

func newSettings(opts []Option) settings {
	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
