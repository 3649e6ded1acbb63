package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"basegraph.app/workspaces/common/logger"
)

type ConsumerConfig struct {
	Stream       string        // Redis stream name
	Group        string        // Redis consumer group name
	Consumer     string        // Redis consumer name
	DLQStream    string        // Dead letter queue stream for failed messages
	BatchSize    int64         // Number of messages to process per batch
	Block        time.Duration // How long to block/poll for new messages
	RequeueDelay time.Duration // Delay before retrying failed messages
}

type Message struct {
	ID string
	OrphanMessage
	Raw redis.XMessage
}

type RedisConsumer struct {
	client redis.Cmdable
	cfg    ConsumerConfig
}

func NewRedisConsumer(ctx context.Context, client redis.Cmdable, cfg ConsumerConfig) (*RedisConsumer, error) {
	consumer := &RedisConsumer{
		client: client,
		cfg:    cfg,
	}

	if err := consumer.ensureGroup(ctx); err != nil {
		return nil, err
	}

	return consumer, nil
}

func (c *RedisConsumer) ensureGroup(ctx context.Context) error {
	// Start from "0" so messages published before the group existed are still seen.
	err := c.client.XGroupCreateMkStream(ctx, c.cfg.Stream, c.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("creating consumer group: %w", err)
	}
	return nil
}

func (c *RedisConsumer) Read(ctx context.Context) ([]Message, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "workspaces.queue.consumer",
	})

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.cfg.Group,
		Consumer: c.cfg.Consumer,
		Streams:  []string{c.cfg.Stream, ">"},
		Count:    c.cfg.BatchSize,
		Block:    c.cfg.Block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Message{}, nil
		}
		return nil, fmt.Errorf("reading from stream: %w", err)
	}

	var messages []Message
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			parsed, parseErr := ParseMessage(msg)
			if parseErr != nil {
				slog.ErrorContext(ctx, "failed to parse message",
					"error", parseErr,
					"raw_message_id", msg.ID,
					"stream", c.cfg.Stream)
				_ = c.Ack(ctx, Message{ID: msg.ID, Raw: msg})
				continue
			}
			messages = append(messages, parsed)
		}
	}

	if len(messages) > 0 {
		slog.DebugContext(ctx, "read messages from stream",
			"count", len(messages),
			"stream", c.cfg.Stream,
			"consumer", c.cfg.Consumer)
	}

	return messages, nil
}

func (c *RedisConsumer) Ack(ctx context.Context, msg Message) error {
	if err := c.client.XAck(ctx, c.cfg.Stream, c.cfg.Group, msg.ID).Err(); err != nil {
		return fmt.Errorf("xack (stream=%s): %w", c.cfg.Stream, err)
	}

	slog.DebugContext(ctx, "message acknowledged", "stream", c.cfg.Stream)
	return nil
}

// Requeue appends a copy of msg with the next attempt number, then acks the
// original. If either step fails the original stays pending and is picked up
// again by the reclaimer.
func (c *RedisConsumer) Requeue(ctx context.Context, msg Message, errMsg string) error {
	next := msg.OrphanMessage
	next.Attempt = msg.Attempt + 1
	next.LastError = errMsg

	if c.cfg.RequeueDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.RequeueDelay):
		}
	}

	if err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.cfg.Stream,
		Values: messageValues(next),
	}).Err(); err != nil {
		return fmt.Errorf("xadd requeue: %w", err)
	}

	if err := c.Ack(ctx, msg); err != nil {
		return fmt.Errorf("acking requeued message: %w", err)
	}

	slog.InfoContext(ctx, "message requeued for retry",
		"next_attempt", next.Attempt,
		"reason", errMsg)
	return nil
}

// SendDLQ copies msg to the dead letter stream, then acks the original.
func (c *RedisConsumer) SendDLQ(ctx context.Context, msg Message, errMsg string) error {
	values := messageValues(msg.OrphanMessage)
	values["error"] = errMsg

	if err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.cfg.DLQStream,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("xadd dlq (stream=%s): %w", c.cfg.DLQStream, err)
	}

	if err := c.Ack(ctx, msg); err != nil {
		return fmt.Errorf("acking dead-lettered message: %w", err)
	}

	slog.ErrorContext(ctx, "message sent to DLQ",
		"final_error", errMsg,
		"dlq_stream", c.cfg.DLQStream)
	return nil
}

func ParseMessage(msg redis.XMessage) (Message, error) {
	orgCode := optionalString(msg.Values, "org_code")
	if orgCode == "" {
		return Message{}, fmt.Errorf("missing org_code")
	}

	attempt, err := parseOptionalInt(msg.Values, "attempt")
	if err != nil {
		return Message{}, err
	}
	if attempt == 0 {
		attempt = 1
	}

	parsed := Message{
		ID: msg.ID,
		OrphanMessage: OrphanMessage{
			OrgCode:   orgCode,
			CreatedBy: optionalString(msg.Values, "created_by"),
			Reason:    optionalString(msg.Values, "reason"),
			LastError: optionalString(msg.Values, "last_error"),
			Attempt:   attempt,
		},
		Raw: msg,
	}
	if traceID := optionalString(msg.Values, "trace_id"); traceID != "" {
		parsed.TraceID = &traceID
	}

	return parsed, nil
}

func parseOptionalInt(values map[string]any, key string) (int, error) {
	raw, ok := values[key]
	if !ok {
		return 0, nil
	}
	num, err := strconv.Atoi(fmt.Sprint(raw))
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return num, nil
}

func optionalString(values map[string]any, key string) string {
	raw, ok := values[key]
	if !ok {
		return ""
	}
	return fmt.Sprint(raw)
}

func messageValues(msg OrphanMessage) map[string]any {
	values := map[string]any{
		"org_code": msg.OrgCode,
		"attempt":  msg.Attempt,
	}
	if msg.CreatedBy != "" {
		values["created_by"] = msg.CreatedBy
	}
	if msg.Reason != "" {
		values["reason"] = msg.Reason
	}
	if msg.LastError != "" {
		values["last_error"] = msg.LastError
	}
	if msg.TraceID != nil && *msg.TraceID != "" {
		values["trace_id"] = *msg.TraceID
	}
	return values
}
