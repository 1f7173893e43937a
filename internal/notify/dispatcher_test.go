package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/observability"
)

type capturingNotifier struct {
	mu       sync.Mutex
	sent     []Notification
	failWith error
	started  chan struct{}
	block    chan struct{}
}

func (n *capturingNotifier) Send(context.Context, string, string, string) error {
	return nil
}

func (n *capturingNotifier) SendFromTemplate(_ context.Context, templateID string, variables map[string]any, to string) error {
	if n.started != nil {
		n.started <- struct{}{}
	}
	if n.block != nil {
		<-n.block
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failWith != nil {
		return n.failWith
	}
	n.sent = append(n.sent, Notification{Recipient: to, TemplateID: templateID, Variables: variables})
	return nil
}

func (n *capturingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func TestDispatcherDeliversQueuedNotifications(t *testing.T) {
	notifier := &capturingNotifier{}
	metrics := observability.NewMetrics()
	d := NewDispatcher(notifier, zap.NewNop(), metrics, 8, 2)

	for i := 0; i < 5; i++ {
		d.Enqueue(Notification{Recipient: "a@example.com", TemplateID: TemplateUserEnabled})
	}
	d.Close()

	assert.Equal(t, 5, notifier.count())
	assert.Equal(t, int64(5), metrics.LifecycleCount("notification_sent"))
}

func TestDispatcherSwallowsDeliveryFailures(t *testing.T) {
	notifier := &capturingNotifier{failWith: errors.New("smtp down")}
	metrics := observability.NewMetrics()
	d := NewDispatcher(notifier, zap.NewNop(), metrics, 8, 1)

	d.Enqueue(Notification{Recipient: "a@example.com", TemplateID: TemplatePasswordReset})
	d.Close()

	assert.Equal(t, 0, notifier.count())
	assert.Equal(t, int64(1), metrics.LifecycleCount("notification_failed"))
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{}, 1)
	notifier := &capturingNotifier{block: block, started: started}
	metrics := observability.NewMetrics()
	d := NewDispatcher(notifier, zap.NewNop(), metrics, 1, 1)

	// First notification occupies the worker, second fills the queue,
	// third must be dropped without blocking.
	d.Enqueue(Notification{TemplateID: TemplateUserEnabled})
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never picked up the first notification")
	}
	d.Enqueue(Notification{TemplateID: TemplateUserEnabled})
	d.Enqueue(Notification{TemplateID: TemplateUserEnabled})

	close(block)
	d.Close()
	assert.Equal(t, 2, notifier.count())
	assert.Equal(t, int64(1), metrics.LifecycleCount("notification_dropped"))
}
