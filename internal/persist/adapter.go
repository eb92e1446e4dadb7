// Package persist saves the task collection to a key-value slot and restores
// it at startup.
//
// Saves never block the caller. A single writer goroutine persists snapshots
// in the order they were issued; a snapshot that is superseded before the
// writer reaches it is skipped, so the slot always converges to the latest
// one. Read and write failures are logged and otherwise swallowed.
package persist

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"todo/internal/kv"
	"todo/internal/tasks"
)

const (
	// DefaultKey is the slot key holding the collection.
	DefaultKey = "tasks"

	// DefaultWriteTimeout bounds a single slot write.
	DefaultWriteTimeout = 10 * time.Second
)

// Adapter implements tasks.Persister over a kv.Slot.
type Adapter struct {
	slot    kv.Slot
	key     string
	timeout time.Duration
	log     *log.Logger

	mu       sync.Mutex
	loaded   bool
	closed   bool
	pending  []tasks.Task
	dirty    bool
	queued   uint64        // snapshots accepted by Save
	written  uint64        // snapshots the writer has finished with
	progress chan struct{} // closed and replaced whenever written advances

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(a *Adapter) {
		if key != "" {
			a.key = key
		}
	}
}

// WithWriteTimeout overrides DefaultWriteTimeout.
func WithWriteTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *log.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// New creates an adapter and starts its writer.
func New(slot kv.Slot, opts ...Option) *Adapter {
	a := &Adapter{
		slot:     slot,
		key:      DefaultKey,
		timeout:  DefaultWriteTimeout,
		log:      log.New(io.Discard, "", 0),
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	go a.run()
	return a
}

// Key returns the slot key.
func (a *Adapter) Key() string { return a.key }

// Load reads the collection. A missing key, a read failure or a decode
// failure all yield an empty collection.
func (a *Adapter) Load(ctx context.Context) []tasks.Task {
	defer func() {
		a.mu.Lock()
		a.loaded = true
		a.mu.Unlock()
	}()

	data, err := a.slot.Get(ctx, a.key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			a.log.Printf("no saved tasks under %q", a.key)
		} else {
			a.log.Printf("load %q failed, starting empty: %v", a.key, err)
		}
		return nil
	}

	ts, err := tasks.Decode(data)
	if err != nil {
		a.log.Printf("saved tasks under %q are unreadable, starting empty: %v", a.key, err)
		return nil
	}
	a.log.Printf("loaded %d tasks from %q", len(ts), a.key)
	return ts
}

// Save schedules a write of ts. ts must not be modified afterwards.
// Saves issued before Load, or after Close, are dropped.
func (a *Adapter) Save(ts []tasks.Task) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case a.closed:
		a.log.Printf("save dropped: adapter closed")
		return
	case !a.loaded:
		a.log.Printf("save dropped: collection not loaded yet")
		return
	}
	a.pending = ts
	a.dirty = true
	a.queued++

	select {
	case a.wake <- struct{}{}:
	default:
	}
}

// Flush waits until every snapshot saved before the call has been written
// or has failed.
func (a *Adapter) Flush(ctx context.Context) error {
	a.mu.Lock()
	target := a.queued
	for a.written < target {
		ch := a.progress
		a.mu.Unlock()
		select {
		case <-ch:
		case <-a.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
		a.mu.Lock()
	}
	a.mu.Unlock()
	return nil
}

// Close flushes, stops the writer and closes the slot.
func (a *Adapter) Close(ctx context.Context) error {
	flushErr := a.Flush(ctx)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return flushErr
	}
	a.closed = true
	a.mu.Unlock()

	close(a.quit)
	<-a.done

	if err := a.slot.Close(); err != nil {
		return err
	}
	return flushErr
}

func (a *Adapter) run() {
	defer close(a.done)
	for {
		select {
		case <-a.wake:
			a.writePending()
		case <-a.quit:
			a.writePending()
			return
		}
	}
}

func (a *Adapter) writePending() {
	a.mu.Lock()
	ts, dirty, seq := a.pending, a.dirty, a.queued
	a.pending, a.dirty = nil, false
	a.mu.Unlock()

	if dirty {
		a.write(ts)
	}

	a.mu.Lock()
	if seq > a.written {
		a.written = seq
		close(a.progress)
		a.progress = make(chan struct{})
	}
	a.mu.Unlock()
}

func (a *Adapter) write(ts []tasks.Task) {
	data, err := tasks.Encode(ts)
	if err != nil {
		a.log.Printf("encode %d tasks failed: %v", len(ts), err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.slot.Put(ctx, a.key, data); err != nil {
		a.log.Printf("save %q failed: %v", a.key, err)
		return
	}
	a.log.Printf("saved %d tasks to %q", len(ts), a.key)
}
