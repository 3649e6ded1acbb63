package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type Producer interface {
	Enqueue(ctx context.Context, msg OrphanMessage) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, msg OrphanMessage) error {
	if msg.OrgCode == "" {
		return fmt.Errorf("enqueue orphan: missing org_code")
	}

	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}
	msg.Attempt = attempt

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: messageValues(msg),
	}).Err(); err != nil {
		return fmt.Errorf("enqueue orphan: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued orphaned organization", "org_code", msg.OrgCode, "reason", msg.Reason, "attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
