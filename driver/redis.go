// driver/redis.go
//
// Thin shim over github.com/redis/go-redis/v9 that satisfies the
// Executor interface used by the store package, with OpenTelemetry spans
// around every command and a pipelined batch helper.
//
// Usage:
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	conn := driver.NewRedisConn(rdb)
//	lib := store.New(conn, store.WithKey("csq:saved"))
package driver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/jfrconley/cs-query-builder/driver"

// Executor runs one raw command and returns the decoded reply.
type Executor interface {
	Do(ctx context.Context, args ...any) (any, error)
}

// Pipeliner is implemented by executors that can batch commands in a
// single round trip. Per-command failures are returned in place as error
// values.
type Pipeliner interface {
	Pipeline(ctx context.Context, cmds [][]any) ([]any, error)
}

// RedisConn implements Executor and Pipeliner on top of *redis.Client.
type RedisConn struct {
	client *redis.Client
}

var (
	_ Executor  = (*RedisConn)(nil)
	_ Pipeliner = (*RedisConn)(nil)
)

// NewRedisConn wraps an existing go-redis client.
func NewRedisConn(c *redis.Client) *RedisConn { return &RedisConn{client: c} }

// Client exposes the wrapped client for typed commands.
func (rc *RedisConn) Client() *redis.Client { return rc.client }

// Do satisfies the Executor interface.
func (rc *RedisConn) Do(ctx context.Context, args ...any) (any, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "redis.do")
	defer span.End()

	start := time.Now()
	res, err := rc.client.Do(ctx, args...).Result()
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.String("redis.cmd", stringifyCmd(args)),
		attribute.Float64("redis.duration_ms", float64(elapsed.Microseconds())/1000),
	)
	if err != nil && err != redis.Nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

// Pipeline executes a batch of commands and returns raw results.
func (rc *RedisConn) Pipeline(ctx context.Context, cmds [][]any) ([]any, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "redis.pipeline")
	defer span.End()
	span.SetAttributes(attribute.Int("redis.pipeline.size", len(cmds)))

	pipe := rc.client.Pipeline()
	results := make([]*redis.Cmd, len(cmds))
	for i, cmd := range cmds {
		results[i] = pipe.Do(ctx, cmd...)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		// Exec reports the first failed command; callers still get
		// per-command results below unless the whole batch failed.
		if len(cmds) == 0 || allFailed(results) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("driver: pipeline: %w", err)
		}
	}

	out := make([]any, len(results))
	for i, r := range results {
		if err := r.Err(); err != nil {
			out[i] = err
		} else {
			out[i] = r.Val()
		}
	}
	return out, nil
}

// Close conveniently closes the underlying *redis.Client.
func (rc *RedisConn) Close() error { return rc.client.Close() }

// ----------------------------------------------------------------------------
// internal helpers
// ----------------------------------------------------------------------------

func allFailed(cmds []*redis.Cmd) bool {
	for _, c := range cmds {
		if c.Err() == nil {
			return false
		}
	}
	return true
}

func stringifyCmd(args []any) string {
	var sb strings.Builder
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(toString(a))
	}
	return sb.String()
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
