package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"basegraph.app/workspaces/common/logger"
	"basegraph.app/workspaces/internal/queue"
)

type Config struct {
	MaxAttempts int
	ErrorDelay  time.Duration // backoff after a failed read
}

type Worker struct {
	consumer  Consumer
	processor Processor
	cfg       Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, processor Processor, cfg Config) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.ErrorDelay <= 0 {
		cfg.ErrorDelay = time.Second
	}
	return &Worker{
		consumer:  consumer,
		processor: processor,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "workspaces.worker",
	})

	defer close(w.stoppedCh)

	slog.InfoContext(ctx, "worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				select {
				case <-ctx.Done():
				case <-w.stopCh:
				case <-time.After(w.cfg.ErrorDelay):
				}
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		w.Handle(ctx, msg)
	}

	return nil
}

// Handle processes msg and settles it: ack on success, otherwise requeue or
// dead-letter depending on the attempt count. Exported so it can be reused by
// the reclaimer.
func (w *Worker) Handle(ctx context.Context, msg queue.Message) {
	msgID := msg.ID
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		MessageID: &msgID,
		OrgCode:   &msg.OrgCode,
	})

	if err := w.processMessageSafe(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "message processing failed",
			"error", err,
			"attempt", msg.Attempt)
		w.handleFailedMessage(ctx, msg, err)
		return
	}

	if err := w.consumer.Ack(ctx, msg); err != nil {
		// The reclaimer will pick it up again; processing is idempotent.
		slog.WarnContext(ctx, "failed to ACK message", "error", err)
	}
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing", "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	traceID := ""
	if msg.TraceID != nil {
		traceID = *msg.TraceID
	}
	sc := logger.StartSpanFromTraceID(ctx, traceID, "worker.process_message")
	defer sc.End()

	if err := w.processor.Process(sc.Context(), msg); err != nil {
		sc.RecordError(err)
		return err
	}
	return nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ", "attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed message", "attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}
