// v1
// internal/telemetry/commands.go
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Supported maintenance actions.
const (
	ActionCollect        = "collect"
	ActionReplaceBattery = "replace_battery"
)

// Command results reported to the observer.
const (
	ResultApplied  = "applied"
	ResultInvalid  = "invalid"
	ResultUnknown  = "unknown_action"
	ResultRejected = "rejected"
)

const (
	readRetryDelay  = 500 * time.Millisecond
	defaultMaxBytes = 10e6
)

// BinCommand is the payload accepted on the command topic.
type BinCommand struct {
	BinID    string `json:"binId"`
	Action   string `json:"action"`
	Reason   string `json:"reason,omitempty"`
	IssuedAt int64  `json:"issuedAt,omitempty"`
}

// BinMaintainer applies maintenance to bins.
type BinMaintainer interface {
	Collect(id string) error
	ReplaceBattery(id string) error
}

// CommandObserver is notified of every consumed command.
type CommandObserver interface {
	ObserveCommand(action, result string)
}

// messageReader mirrors the subset of kafka.Reader used by the consumer.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// CommandConsumer reads maintenance commands from Kafka and applies them.
type CommandConsumer struct {
	reader   messageReader
	target   BinMaintainer
	observer CommandObserver
	log      *zap.Logger
}

// NewCommandConsumer joins groupID on topic.
func NewCommandConsumer(brokers []string, topic, groupID string, target BinMaintainer, observer CommandObserver, log *zap.Logger) *CommandConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: defaultMaxBytes,
	})
	return newCommandConsumer(r, target, observer, log)
}

func newCommandConsumer(r messageReader, target BinMaintainer, observer CommandObserver, log *zap.Logger) *CommandConsumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &CommandConsumer{reader: r, target: target, observer: observer, log: log}
}

// Run consumes until ctx is cancelled. Malformed or rejected commands are
// logged, committed, and skipped.
func (c *CommandConsumer) Run(ctx context.Context) error {
	c.log.Info("command_consumer_started")
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.log.Info("command_consumer_stopped")
				return nil
			}
			c.log.Warn("command_read_failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(readRetryDelay):
			}
			continue
		}
		c.Apply(m.Value)
		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.log.Warn("command_commit_failed", zap.Int64("offset", m.Offset), zap.Error(err))
		}
	}
}

// Apply decodes and executes one command payload and returns the result label.
func (c *CommandConsumer) Apply(payload []byte) string {
	var cmd BinCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		c.log.Warn("command_invalid_json", zap.Error(err))
		c.observe(actionLabel(""), ResultInvalid)
		return ResultInvalid
	}
	action := strings.ToLower(strings.TrimSpace(cmd.Action))
	if strings.TrimSpace(cmd.BinID) == "" {
		c.log.Warn("command_missing_bin", zap.String("action", action))
		c.observe(actionLabel(action), ResultInvalid)
		return ResultInvalid
	}

	var err error
	switch action {
	case ActionCollect:
		err = c.target.Collect(cmd.BinID)
	case ActionReplaceBattery:
		err = c.target.ReplaceBattery(cmd.BinID)
	default:
		c.log.Warn("command_unknown_action", zap.String("action", cmd.Action), zap.String("bin_id", cmd.BinID))
		c.observe("other", ResultUnknown)
		return ResultUnknown
	}
	if err != nil {
		c.log.Warn("command_rejected", zap.String("action", action), zap.String("bin_id", cmd.BinID), zap.Error(err))
		c.observe(action, ResultRejected)
		return ResultRejected
	}
	c.log.Info("command_applied", zap.String("action", action), zap.String("bin_id", cmd.BinID), zap.String("reason", cmd.Reason))
	c.observe(action, ResultApplied)
	return ResultApplied
}

func (c *CommandConsumer) observe(action, result string) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveCommand(action, result)
}

// actionLabel keeps metric label values bounded.
func actionLabel(action string) string {
	switch action {
	case ActionCollect, ActionReplaceBattery:
		return action
	case "":
		return "none"
	default:
		return "other"
	}
}

func (c *CommandConsumer) Close() error {
	return c.reader.Close()
}
