package store

import "log/slog"

// Opt configures a Store.
type Opt func(*Store)

// WithKey sets the Redis hash holding the saved queries.
func WithKey(key string) Opt {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger replaces the process-wide logger.
func WithLogger(l *slog.Logger) Opt { return func(s *Store) { s.log = l } }
