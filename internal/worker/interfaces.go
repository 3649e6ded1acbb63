package worker

import (
	"context"

	"basegraph.app/workspaces/internal/queue"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// Processor handles one message. A nil error means the message is done and
// may be acknowledged.
type Processor interface {
	Process(ctx context.Context, msg queue.Message) error
}
