package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"taskgate/internal/model"
)

var errMalformedEvent = errors.New("malformed audit event")

type AuditStore interface {
	Create(ctx context.Context, event *model.AuditEvent) error
}

// AuditPersistWorker drains the audit queue into the store. Undecodable
// deliveries are dropped; store failures are requeued once.
type AuditPersistWorker struct {
	conn      *amqp.Connection
	store     AuditStore
	queueName string
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewAuditPersistWorker(conn *amqp.Connection, store AuditStore, queueName string, logger *slog.Logger) *AuditPersistWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditPersistWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
		logger:    logger.With("component", "audit_worker", "queue", queueName),
	}
}

func (w *AuditPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"taskgate-audit",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
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
					w.logger.Warn("audit delivery channel closed")
					return
				}
				w.dispatch(workerCtx, d)
			}
		}
	}()

	w.logger.Info("audit worker started")
	return nil
}

func (w *AuditPersistWorker) dispatch(ctx context.Context, d amqp.Delivery) {
	err := w.handle(ctx, d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, errMalformedEvent):
		w.logger.Error("drop audit event", "error", err)
		_ = d.Nack(false, false)
	default:
		w.logger.Error("persist audit event failed", "error", err, "redelivered", d.Redelivered)
		_ = d.Nack(false, !d.Redelivered)
	}
}

func (w *AuditPersistWorker) handle(ctx context.Context, body []byte) error {
	var event model.AuditEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %v", errMalformedEvent, err)
	}
	if event.Type == "" || event.OccurredAt.IsZero() {
		return fmt.Errorf("%w: missing type or timestamp", errMalformedEvent)
	}
	event.ID = 0
	return w.store.Create(ctx, &event)
}

func (w *AuditPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
