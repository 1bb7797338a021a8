package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/vatgate/vatgate-api/internal/client/shopadmin"
	"github.com/vatgate/vatgate-api/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PersistTask is one best-effort customer record write. It is also the JSON
// payload published to the dead-letter queue when the write fails.
type PersistTask struct {
	ID               uuid.UUID `json:"id"`
	StorefrontDomain string    `json:"storefront_domain"`
	CustomerID       string    `json:"customer_id"`
	TaxExempt        bool      `json:"tax_exempt"`
	VATNumber        *string   `json:"vat_number,omitempty"`
	InvoiceEmail     *string   `json:"invoice_email,omitempty"`
	Reference        *string   `json:"reference,omitempty"`
	Attempt          int       `json:"attempt"`
	EnqueuedAt       int64     `json:"enqueued_at"`
}

// Options converts the task's optional fields into admin update options.
func (t PersistTask) Options() shopadmin.UpdateOptions {
	return shopadmin.UpdateOptions{
		VATNumber:    t.VATNumber,
		InvoiceEmail: t.InvoiceEmail,
		Reference:    t.Reference,
	}
}

// Persister accepts customer persistence tasks. Enqueue must never block the
// caller: persistence is fire-and-forget from the engine's perspective.
type Persister interface {
	Enqueue(task PersistTask)
}

// DLQPublisher publishes failed task payloads for later redelivery.
type DLQPublisher interface {
	Publish(ctx context.Context, body string) error
}

// PersistWorker processes persistence tasks from a queue with a fixed worker
// pool. A failed write is logged and published to the dead-letter queue when
// one is configured; the checkout gate is never involved.
type PersistWorker struct {
	tasks       chan PersistTask
	admin       shopadmin.AdminClientInterface
	dlq         DLQPublisher
	workerCount int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewPersistWorker creates a persistence worker pool with the given number of
// workers and queue buffer size. dlq may be nil.
func NewPersistWorker(admin shopadmin.AdminClientInterface, dlq DLQPublisher, workerCount, bufferSize int) *PersistWorker {
	ctx, cancel := context.WithCancel(context.Background())
	return &PersistWorker{
		tasks:       make(chan PersistTask, bufferSize),
		admin:       admin,
		dlq:         dlq,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the worker goroutines.
func (w *PersistWorker) Start() {
	logger.Info("Starting persistence workers", zap.Int("worker_count", w.workerCount))

	for i := 0; i < w.workerCount; i++ {
		workerID := i
		w.wg.Add(1)

		go func() {
			defer w.wg.Done()
			logger.Debug("Persistence worker started", zap.Int("worker_id", workerID))

			for {
				select {
				case <-w.ctx.Done():
					logger.Debug("Persistence worker stopped", zap.Int("worker_id", workerID))
					return
				case task := <-w.tasks:
					w.processTask(task)
				}
			}
		}()
	}
}

// Stop signals the workers to stop and waits for them to drain.
func (w *PersistWorker) Stop() {
	w.cancel()
	w.wg.Wait()
	logger.Info("Persistence workers stopped")
}

// Enqueue implements Persister. A full queue drops the task straight to the
// dead-letter path instead of blocking the checkout request.
func (w *PersistWorker) Enqueue(task PersistTask) {
	select {
	case w.tasks <- task:
	default:
		logger.Warn("Persistence queue full, sending task to DLQ",
			zap.String("task_id", task.ID.String()),
			zap.String("customer_id", task.CustomerID))
		w.deadLetter(task, "queue full")
	}
}

func (w *PersistWorker) processTask(task PersistTask) {
	ctx, cancel := context.WithTimeout(w.ctx, 20*time.Second)
	defer cancel()

	err := w.admin.UpdateCustomerTaxProfile(ctx, task.StorefrontDomain, task.CustomerID, task.TaxExempt, task.Options())
	if err != nil {
		logger.Error("Failed to persist customer record",
			zap.String("task_id", task.ID.String()),
			zap.String("customer_id", task.CustomerID),
			zap.Bool("tax_exempt", task.TaxExempt),
			zap.Error(err))
		w.deadLetter(task, err.Error())
		return
	}

	logger.Info("Persisted customer record",
		zap.String("task_id", task.ID.String()),
		zap.String("customer_id", task.CustomerID),
		zap.Bool("tax_exempt", task.TaxExempt))
}

func (w *PersistWorker) deadLetter(task PersistTask, reason string) {
	if w.dlq == nil {
		return
	}

	body, err := json.Marshal(task)
	if err != nil {
		logger.Error("Failed to marshal persistence task for DLQ", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := w.dlq.Publish(ctx, string(body)); err != nil {
		// Nothing left to do: the write is best effort end to end.
		logger.Error("Failed to publish persistence task to DLQ",
			zap.String("task_id", task.ID.String()),
			zap.String("reason", reason),
			zap.Error(err))
	}
}
