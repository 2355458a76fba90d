package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EmailEvent is a lifecycle notification addressed to one recipient.
type EmailEvent struct {
	Type     string         `json:"type"`
	To       string         `json:"to"`
	Subject  string         `json:"subject"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

type EventBus interface {
	PublishEmail(ctx context.Context, key string, e EmailEvent) error
}

var (
	ErrEventQueueFull   = errors.New("event queue full")
	ErrDispatcherClosed = errors.New("event dispatcher closed")
)

type envelope struct {
	key   string
	event EmailEvent
}

// Dispatcher decouples request handling from event delivery: PublishEmail
// only enqueues, Run forwards to the underlying bus.
type Dispatcher struct {
	next    EventBus
	log     *zap.Logger
	timeout time.Duration
	queue   chan envelope
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(next EventBus, log *zap.Logger, size int) *Dispatcher {
	if size <= 0 {
		size = 256
	}
	return &Dispatcher{
		next:    next,
		log:     log,
		timeout: 10 * time.Second,
		queue:   make(chan envelope, size),
		done:    make(chan struct{}),
	}
}

func (d *Dispatcher) PublishEmail(_ context.Context, key string, e EmailEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- envelope{key: key, event: e}:
		return nil
	default:
		return ErrEventQueueFull
	}
}

// Run delivers queued events until Close is called and the queue drains.
func (d *Dispatcher) Run() {
	defer close(d.done)
	for env := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.next.PublishEmail(ctx, env.key, env.event)
		cancel()
		if err != nil {
			d.log.Warn("event delivery failed",
				zap.String("type", env.event.Type), zap.String("key", env.key), zap.Error(err))
		}
	}
}

// Close stops accepting events and waits for Run to flush the queue.
// Later PublishEmail calls return ErrDispatcherClosed. Close is idempotent.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

// emit never fails the caller: the triggering transaction has already committed.
func emit(ctx context.Context, bus EventBus, log *zap.Logger, key string, e EmailEvent) {
	if bus == nil || e.To == "" {
		return
	}
	if err := bus.PublishEmail(ctx, key, e); err != nil {
		log.Warn("failed to publish event", zap.String("type", e.Type), zap.String("key", key), zap.Error(err))
	}
}
