package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/observability"
)

// Dispatcher decouples notification delivery from the state transitions that
// trigger it. A bounded queue feeds a fixed pool of workers; Enqueue never
// blocks the caller and delivery failures are logged, not retried. Each
// triggering event gets at most one delivery attempt.
type Dispatcher struct {
	notifier Notifier
	logger   *zap.Logger
	metrics  *observability.Metrics
	queue    chan Notification
	wg       sync.WaitGroup
	once     sync.Once
}

// NewDispatcher builds a dispatcher with the given queue capacity and worker
// count.
func NewDispatcher(notifier Notifier, logger *zap.Logger, metrics *observability.Metrics, queueSize, workers int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if workers <= 0 {
		workers = 2
	}

	d := &Dispatcher{
		notifier: notifier,
		logger:   logger,
		metrics:  metrics,
		queue:    make(chan Notification, queueSize),
	}

	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

// Enqueue hands a notification to the worker pool. When the queue is full
// the notification is dropped and logged; the triggering transition has
// already committed and must not block on mail latency.
func (d *Dispatcher) Enqueue(n Notification) {
	select {
	case d.queue <- n:
		d.metrics.RecordLifecycleEvent("notification_enqueued")
	default:
		d.metrics.RecordLifecycleEvent("notification_dropped")
		d.logger.Warn("notification queue full, dropping",
			zap.String("to", n.Recipient),
			zap.String("template", n.TemplateID))
	}
}

// Close stops accepting work and waits for in-flight deliveries.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for n := range d.queue {
		if err := d.notifier.SendFromTemplate(context.Background(), n.TemplateID, n.Variables, n.Recipient); err != nil {
			d.metrics.RecordLifecycleEvent("notification_failed")
			d.logger.Error("notification delivery failed",
				zap.String("to", n.Recipient),
				zap.String("template", n.TemplateID),
				zap.Error(err))
			continue
		}
		d.metrics.RecordLifecycleEvent("notification_sent")
	}
}
