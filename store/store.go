// Package store keeps a library of named query expressions in a Redis hash
// so saved searches can be shared between processes.
//
//	lib := store.New(conn, store.WithKey("csq:saved"))
//	cheap, _ := q.RangeNum("price", nil, q.Float(10), nil)
//	_ = lib.Save(ctx, "cheap", cheap)
//	expr, err := lib.Load(ctx, "cheap")
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/jfrconley/cs-query-builder/driver"
	"github.com/jfrconley/cs-query-builder/internal/logger"
	q "github.com/jfrconley/cs-query-builder/query"
	"github.com/jfrconley/cs-query-builder/scan"
)

// DefaultKey is the hash used when WithKey is not given.
const DefaultKey = "csq:saved"

var (
	ErrNotFound  = errors.New("store: query not found")
	ErrAbsent    = errors.New("store: cannot save an absent expression")
	ErrEmptyName = errors.New("store: name must not be empty")
)

// Store is the single, reusable handle for saved queries.
type Store struct {
	exec driver.Executor
	key  string
	log  *slog.Logger
}

// New constructs a Store on top of exec.
func New(exec driver.Executor, opts ...Opt) *Store {
	s := &Store{exec: exec, key: DefaultKey}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	return s
}

// Key returns the Redis hash the store writes to.
func (s *Store) Key() string { return s.key }

// Save stores e under name, replacing any previous entry.
func (s *Store) Save(ctx context.Context, name string, e q.Expression) error {
	if err := validate(name, e); err != nil {
		return err
	}
	if _, err := s.exec.Do(ctx, "HSET", s.key, name, e.String()); err != nil {
		return fmt.Errorf("store: save %q: %w", name, err)
	}
	s.log.DebugContext(ctx, "saved query", "key", s.key, "name", name)
	return nil
}

// SaveAll stores every entry of exprs. Entries are validated up front so
// nothing is written when one of them is invalid. Executors that
// implement driver.Pipeliner get a single round trip.
func (s *Store) SaveAll(ctx context.Context, exprs map[string]q.Expression) error {
	if len(exprs) == 0 {
		return nil
	}
	for name, e := range exprs {
		if err := validate(name, e); err != nil {
			return fmt.Errorf("%w (entry %q)", err, name)
		}
	}

	p, ok := s.exec.(driver.Pipeliner)
	if !ok {
		args := make([]any, 0, 2+2*len(exprs))
		args = append(args, "HSET", s.key)
		for name, e := range exprs {
			args = append(args, name, e.String())
		}
		if _, err := s.exec.Do(ctx, args...); err != nil {
			return fmt.Errorf("store: save all: %w", err)
		}
		s.log.DebugContext(ctx, "saved queries", "key", s.key, "count", len(exprs))
		return nil
	}

	cmds := make([][]any, 0, len(exprs))
	for name, e := range exprs {
		cmds = append(cmds, []any{"HSET", s.key, name, e.String()})
	}
	results, err := p.Pipeline(ctx, cmds)
	if err != nil {
		return fmt.Errorf("store: save all: %w", err)
	}
	var errs []error
	for i, r := range results {
		if err, ok := r.(error); ok {
			errs = append(errs, fmt.Errorf("store: save %q: %w", cmds[i][2], err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	s.log.DebugContext(ctx, "saved queries", "key", s.key, "count", len(exprs), "pipelined", true)
	return nil
}

// Load returns the expression saved under name.
func (s *Store) Load(ctx context.Context, name string) (q.Expression, error) {
	raw, err := s.exec.Do(ctx, "HGET", s.key, name)
	if errors.Is(err, redis.Nil) || (err == nil && raw == nil) {
		return q.Absent, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return q.Absent, fmt.Errorf("store: load %q: %w", name, err)
	}
	text, err := scan.DecodeString(raw)
	if err != nil {
		return q.Absent, fmt.Errorf("store: load %q: %w", name, err)
	}
	return q.Raw(text), nil
}

// List returns every saved expression keyed by name.
func (s *Store) List(ctx context.Context) (map[string]q.Expression, error) {
	raw, err := s.exec.Do(ctx, "HGETALL", s.key)
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	kv, err := scan.DecodeHash(raw)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	out := make(map[string]q.Expression, len(kv))
	for name, text := range kv {
		out[name] = q.Raw(text)
	}
	return out, nil
}

// Delete removes name. Deleting a missing entry returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, name string) error {
	raw, err := s.exec.Do(ctx, "HDEL", s.key, name)
	if err != nil {
		return fmt.Errorf("store: delete %q: %w", name, err)
	}
	if n, ok := raw.(int64); ok && n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	s.log.DebugContext(ctx, "deleted query", "key", s.key, "name", name)
	return nil
}

func validate(name string, e q.Expression) error {
	if name == "" {
		return ErrEmptyName
	}
	if e.IsAbsent() {
		return ErrAbsent
	}
	return nil
}
