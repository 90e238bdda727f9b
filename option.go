package unversion

import "log/slog"

// StoreOption configures a Store (functional options pattern).
type StoreOption func(*Store)

// WithLogger sets the logger used for fail-soft diagnostics (lookup misses,
// reload results). Defaults to slog.Default().
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}
