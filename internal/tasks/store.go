package tasks

import (
	"context"
	"errors"
	"io"
	"log"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Persister restores and saves the collection on behalf of the Store.
type Persister interface {
	// Load returns the restored collection, or nil when there is nothing
	// usable. It is called once, before any Save.
	Load(ctx context.Context) []Task

	// Save schedules a write of the full collection and returns immediately.
	Save(ts []Task)

	// Close flushes pending writes and releases the underlying slot.
	Close(ctx context.Context) error
}

// State is the lifecycle stage of a Store.
type State int

const (
	StateInitializing State = iota
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "initializing"
	}
}

var (
	// ErrAlreadyOpen is returned by Open on a store that left initializing.
	ErrAlreadyOpen = errors.New("store already opened")

	// ErrClosed is returned by Open and Close on a closed store.
	ErrClosed = errors.New("store closed")
)

// Store owns the canonical ordered task collection.
//
// Every mutation publishes a fresh slice and never touches a published one,
// so a slice obtained from the store stays valid forever. Mutations are
// rejected until Open has restored the persisted collection.
type Store struct {
	mu       sync.Mutex
	state    State
	tasks    []Task
	version  uint64
	persist  Persister
	newID    func() string
	category string
	log      *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the UUIDv7 id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithDefaultCategory replaces DefaultCategory for new tasks.
func WithDefaultCategory(name string) Option {
	return func(s *Store) {
		if strings.TrimSpace(name) != "" {
			s.category = name
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore creates a store in the initializing state.
func NewStore(p Persister, opts ...Option) *Store {
	s := &Store{
		persist:  p,
		newID:    func() string { return uuid.Must(uuid.NewV7()).String() },
		category: DefaultCategory,
		log:      log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open restores the persisted collection and makes the store ready.
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateReady:
		s.mu.Unlock()
		return ErrAlreadyOpen
	case StateClosed:
		s.mu.Unlock()
		return ErrClosed
	}
	s.mu.Unlock()

	restored := s.persist.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInitializing {
		return ErrAlreadyOpen
	}
	s.tasks = dedupe(restored)
	s.state = StateReady
	s.log.Printf("store ready with %d tasks", len(s.tasks))
	return nil
}

// dedupe drops any repeated id, keeping the first occurrence.
func dedupe(ts []Task) []Task {
	seen := make(map[string]struct{}, len(ts))
	out := make([]Task, 0, len(ts))
	for _, t := range ts {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}

// State returns the lifecycle stage.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ready reports whether mutations are accepted.
func (s *Store) Ready() bool { return s.State() == StateReady }

// Add appends a new task. It is a no-op returning false when text is blank
// or the store is not ready. A due date that cannot be saved is dropped.
func (s *Store) Add(text string, due *Date, category string) (Task, bool) {
	if strings.TrimSpace(text) == "" {
		return Task{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptLocked("add") {
		return Task{}, false
	}

	category = strings.TrimSpace(category)
	if category == "" {
		category = s.category
	}
	if due != nil && !due.Valid() {
		s.log.Printf("add: dropping unrepresentable due date %s", *due)
		due = nil
	}
	t := Task{
		ID:       s.uniqueIDLocked(),
		Text:     text,
		DueDate:  cloneDate(due),
		Category: category,
	}

	next := make([]Task, len(s.tasks), len(s.tasks)+1)
	copy(next, s.tasks)
	s.publishLocked(append(next, t))
	return t, true
}

// Toggle flips the completion flag of the task with the given id.
// Unknown ids are ignored.
func (s *Store) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptLocked("toggle") {
		return false
	}

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	next := slices.Clone(s.tasks)
	next[i].Completed = !next[i].Completed
	s.publishLocked(next)
	return true
}

// Delete removes the task with the given id. Unknown ids are ignored.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptLocked("delete") {
		return false
	}

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	next := make([]Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	next = append(next, s.tasks[i+1:]...)
	s.publishLocked(next)
	return true
}

// Snapshot returns a copy of the current collection.
func (s *Store) Snapshot() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// Version increases by one with every applied mutation.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Close rejects further mutations and flushes the persister.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.state = StateClosed
	s.mu.Unlock()
	return s.persist.Close(ctx)
}

func (s *Store) acceptLocked(op string) bool {
	if s.state == StateReady {
		return true
	}
	s.log.Printf("%s rejected: store %s", op, s.state)
	return false
}

func (s *Store) indexLocked(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) uniqueIDLocked() string {
	for {
		id := s.newID()
		if id != "" && s.indexLocked(id) < 0 {
			return id
		}
		s.log.Printf("id generator returned a used id %q, retrying", id)
	}
}

// publishLocked installs next as the current collection and hands it to the
// persister. next must not be modified afterwards.
func (s *Store) publishLocked(next []Task) {
	s.tasks = next
	s.version++
	s.persist.Save(next)
}

func cloneDate(d *Date) *Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
