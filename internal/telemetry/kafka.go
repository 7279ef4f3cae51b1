// v3
// internal/telemetry/kafka.go
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ssacity/api/internal/breaker"
)

// messageWriter mirrors the subset of kafka.Writer used by the sink.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink writes one message per bin keyed by bin id, so readings of a
// bin always land on the same partition.
type KafkaSink struct {
	writer messageWriter
	brk    *breaker.Breaker
}

func newKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

// NewKafkaSink builds a sink writing to topic. brk may be nil.
func NewKafkaSink(brokers []string, topic string, brk *breaker.Breaker) *KafkaSink {
	return &KafkaSink{writer: newKafkaWriter(brokers, topic), brk: brk}
}

// Name labels the sink in logs and metrics.
func (k *KafkaSink) Name() string { return "kafka" }

// Publish writes one message per bin, keyed by bin id, through the breaker.
func (k *KafkaSink) Publish(ctx context.Context, batch Batch) error {
	readings := batch.Readings()
	msgs := make([]kafka.Message, 0, len(readings))
	for _, r := range readings {
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal reading %s: %w", r.BinID, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(r.BinID), Value: b, Time: r.Timestamp})
	}
	if len(msgs) == 0 {
		return nil
	}
	write := func(ctx context.Context) error { return k.writer.WriteMessages(ctx, msgs...) }
	if k.brk == nil {
		return write(ctx)
	}
	return k.brk.Execute(ctx, write)
}

// Close flushes and closes the writer.
func (k *KafkaSink) Close() error {
	return k.writer.Close()
}

// KafkaProbe returns a breaker probe that succeeds once any broker accepts
// a TCP connection.
func KafkaProbe(brokers []string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		var errs []error
		for _, addr := range brokers {
			conn, err := kafka.DialContext(ctx, "tcp", addr)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			_ = conn.Close()
			return nil
		}
		if len(errs) == 0 {
			return errors.New("no kafka brokers configured")
		}
		return errors.Join(errs...)
	}
}
