// v1
// internal/telemetry/redis.go
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// streamAdder mirrors the subset of redis.Client used by the sink.
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// RedisStreamSink appends each batch to a capped Redis stream as a single
// entry whose data field is the JSON array of readings.
type RedisStreamSink struct {
	client streamAdder
	stream string
	maxLen int64
}

// NewRedisStreamSink connects lazily; the first XADD dials the server.
func NewRedisStreamSink(addr, password string, db int, stream string, maxLen int64) *RedisStreamSink {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	return newRedisStreamSink(client, stream, maxLen)
}

func newRedisStreamSink(client streamAdder, stream string, maxLen int64) *RedisStreamSink {
	if stream == "" {
		stream = "ssacity:bins"
	}
	return &RedisStreamSink{client: client, stream: stream, maxLen: maxLen}
}

// Name labels the sink in logs and metrics.
func (r *RedisStreamSink) Name() string { return "redis" }

// Publish appends the batch as a single stream entry.
func (r *RedisStreamSink) Publish(ctx context.Context, batch Batch) error {
	data, err := json.Marshal(batch.Readings())
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]interface{}{
			"tick":      batch.Tick,
			"timestamp": batch.Timestamp.Unix(),
			"data":      string(data),
		},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}
	if err := r.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", r.stream, err)
	}
	return nil
}

// Close releases the client connection.
func (r *RedisStreamSink) Close() error {
	return r.client.Close()
}
