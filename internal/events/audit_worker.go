package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"userauth/internal/model"
	"userauth/internal/repository"
)

// AuditWorker consumes user events and stores them in the audit trail.
type AuditWorker struct {
	conn      *amqp.Connection
	repo      repository.UserEventRepository
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewAuditWorker(conn *amqp.Connection, repo repository.UserEventRepository, queueName string, logger *zap.Logger) *AuditWorker {
	return &AuditWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
		logger:    logger,
	}
}

// Start begins consuming in a background goroutine. Calling it twice is a no-op.
func (w *AuditWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel: %w", err)
	}

	if err := declareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue %s: %w", w.queueName, err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					w.logger.Warn("audit event dropped", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *AuditWorker) handle(ctx context.Context, body []byte) error {
	var event model.UserEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode user event: %w", err)
	}
	if event.Type == "" || event.UserID == "" {
		return fmt.Errorf("incomplete user event %q for user %q", event.Type, event.UserID)
	}
	event.ID = 0
	if err := w.repo.Create(ctx, &event); err != nil {
		return fmt.Errorf("persist user event: %w", err)
	}
	return nil
}

// Close stops consuming and waits for the goroutine to exit.
func (w *AuditWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
