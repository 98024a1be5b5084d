package goForms

import (
	"context"
	"sync"
	"sync/atomic"
)

// AuditConfig controls audit buffering.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of holding the request when the buffer is full.
	// Otherwise Emit waits for room until the request context ends.
	DropIfFull bool
}

const defaultAuditBuffer = 1024

// queuedEvent keeps the emitting request's context values, without its cancellation,
// so a sink can still read request-scoped data after the response is written.
type queuedEvent struct {
	ctx   context.Context
	event AuditEvent
}

type auditDispatcher struct {
	sink       AuditSink
	dropIfFull bool
	queue      chan queuedEvent
	stop       chan struct{}
	stopped    chan struct{}
	dropped    atomic.Uint64
	stopOnce   sync.Once
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &auditDispatcher{
		sink:       sink,
		dropIfFull: cfg.DropIfFull,
		queue:      make(chan queuedEvent, max(cfg.BufferSize, 1)),
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	go d.deliver()
	return d
}

func (d *auditDispatcher) deliver() {
	defer close(d.stopped)

	for {
		select {
		case q := <-d.queue:
			d.sink.Emit(q.ctx, q.event)
		case <-d.stop:
			d.drain()
			return
		}
	}
}

func (d *auditDispatcher) drain() {
	for {
		select {
		case q := <-d.queue:
			d.sink.Emit(q.ctx, q.event)
		default:
			return
		}
	}
}

// Emit queues event. Every event that does not reach the queue, because the buffer is
// full in drop mode, the request context ended first or the dispatcher is closed, is
// counted by Dropped. A nil dispatcher ignores the call.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if !d.enqueue(ctx, queuedEvent{ctx: context.WithoutCancel(ctx), event: event}) {
		d.dropped.Add(1)
	}
}

func (d *auditDispatcher) enqueue(ctx context.Context, q queuedEvent) bool {
	select {
	case <-d.stop:
		return false
	default:
	}

	if d.dropIfFull {
		select {
		case d.queue <- q:
			return true
		default:
			return false
		}
	}

	select {
	case d.queue <- q:
		return true
	case <-ctx.Done():
		return false
	case <-d.stop:
		return false
	}
}

// Close delivers what is already queued and stops the worker. It is idempotent.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() { close(d.stop) })
	<-d.stopped
}

func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
