// Package ops provides a best-effort, asynchronous audit publisher for
// routine onboarding activity (stage progress, attachment uploads).
//
// Track never blocks the caller: events go through a bounded buffer drained by
// a single worker. When the buffer is full, or the store keeps failing and the
// circuit is open, events are dropped and counted.
package ops

import (
	"context"
	"log/slog"
	"sync"
	"time"

	audit "kycportal/pkg/platform/audit"
	"kycportal/pkg/platform/circuit"
)

const (
	defaultBufferSize   = 256
	defaultWriteTimeout = 2 * time.Second
)

type Publisher struct {
	store        audit.Store
	logger       *slog.Logger
	metrics      *Metrics
	breaker      *circuit.Breaker
	bufferSize   int
	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	inbox  chan audit.Event
	done   chan struct{}
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithBufferSize sets the number of events held before new ones are dropped.
func WithBufferSize(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.bufferSize = n
		}
	}
}

// WithBreaker replaces the default store circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(p *Publisher) {
		if b != nil {
			p.breaker = b
		}
	}
}

// New starts the publisher worker. Call Close to drain and stop it.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:        store,
		bufferSize:   defaultBufferSize,
		writeTimeout: defaultWriteTimeout,
		breaker:      circuit.New("audit-ops", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(1), circuit.WithCooldown(time.Minute)),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.inbox = make(chan audit.Event, p.bufferSize)
	go p.run()
	return p
}

// Track enqueues an event without blocking.
func (p *Publisher) Track(_ context.Context, event audit.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Category = audit.CategoryOperations

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.inbox <- event:
	default:
		if p.metrics != nil {
			p.metrics.IncDropped()
		}
	}
}

// Close stops accepting events and waits for the buffer to drain.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.inbox)
	p.mu.Unlock()
	<-p.done
	return nil
}

func (p *Publisher) run() {
	defer close(p.done)
	for event := range p.inbox {
		p.persist(event)
	}
}

func (p *Publisher) persist(event audit.Event) {
	if !p.breaker.Allow() {
		if p.metrics != nil {
			p.metrics.IncCircuitBreakerDropped()
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()

	if err := p.store.Append(ctx, event); err != nil {
		_, change := p.breaker.RecordFailure()
		if p.metrics != nil {
			p.metrics.IncPersistFailures()
			if change.Opened {
				p.metrics.SetCircuitBreakerState(true)
			}
		}
		if p.logger != nil {
			p.logger.Warn("ops audit persistence failed",
				"action", event.Action,
				"session_id", event.SessionID,
				"error", err,
			)
		}
		return
	}

	_, change := p.breaker.RecordSuccess()
	if p.metrics != nil {
		p.metrics.IncTracked()
		if change.Closed {
			p.metrics.SetCircuitBreakerState(false)
		}
	}
}
