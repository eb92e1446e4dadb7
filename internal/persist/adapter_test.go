package persist_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"todo/internal/kv"
	"todo/internal/persist"
	"todo/internal/tasks"
)

// gateSlot records every Put and can hold the first one until released.
type gateSlot struct {
	*kv.Memory

	mu      sync.Mutex
	history [][]byte
	entered chan struct{}
	release chan struct{}
}

func newGateSlot(hold bool) *gateSlot {
	s := &gateSlot{Memory: kv.NewMemory()}
	if hold {
		s.entered = make(chan struct{})
		s.release = make(chan struct{})
	}
	return s
}

func (s *gateSlot) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	first := len(s.history) == 0
	s.history = append(s.history, value)
	s.mu.Unlock()
	if first && s.release != nil {
		close(s.entered)
		<-s.release
	}
	return s.Memory.Put(ctx, key, value)
}

func (s *gateSlot) writes() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.history...)
}

func collection(texts ...string) []tasks.Task {
	ts := make([]tasks.Task, len(texts))
	for i, text := range texts {
		ts[i] = tasks.Task{ID: text, Text: text}
	}
	return ts
}

func stored(t *testing.T, slot kv.Slot, key string) []tasks.Task {
	t.Helper()
	data, err := slot.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %q: %v", key, err)
	}
	ts, err := tasks.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return ts
}

func flush(t *testing.T, a *persist.Adapter) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func TestLoad_MissingKeyIsEmpty(t *testing.T) {
	var logs bytes.Buffer
	a := persist.New(kv.NewMemory(), persist.WithLogger(log.New(&logs, "", 0)))
	defer a.Close(context.Background())

	if got := a.Load(context.Background()); len(got) != 0 {
		t.Errorf("expected empty collection, got %+v", got)
	}
	if !strings.Contains(logs.String(), `no saved tasks under "tasks"`) {
		t.Errorf("unexpected log %q", logs.String())
	}
}

func TestLoad_CorruptIsEmpty(t *testing.T) {
	slot := kv.NewMemory()
	_ = slot.Put(context.Background(), persist.DefaultKey, []byte("{not json"))
	a := persist.New(slot)
	defer a.Close(context.Background())

	if got := a.Load(context.Background()); len(got) != 0 {
		t.Errorf("expected empty collection, got %+v", got)
	}
}

func TestLoad_ReadFailureIsEmpty(t *testing.T) {
	slot := kv.NewMemory()
	slot.FailGets(errors.New("io error"))
	a := persist.New(slot)
	defer a.Close(context.Background())

	if got := a.Load(context.Background()); len(got) != 0 {
		t.Errorf("expected empty collection, got %+v", got)
	}
}

func TestSaveThenLoad(t *testing.T) {
	slot := kv.NewMemory()
	a := persist.New(slot, persist.WithKey("mine"))
	a.Load(context.Background())

	want := collection("a", "b", "c")
	a.Save(want)
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	b := persist.New(slot, persist.WithKey("mine"))
	defer b.Close(context.Background())
	got := b.Load(context.Background())
	if len(got) != 3 || got[0].ID != "a" || got[2].ID != "c" {
		t.Errorf("unexpected restored collection %+v", got)
	}
}

func TestSave_WritesInIssueOrder(t *testing.T) {
	slot := newGateSlot(false)
	a := persist.New(slot)
	defer a.Close(context.Background())
	a.Load(context.Background())

	for i, n := range []int{1, 2, 3, 4} {
		a.Save(collection(strings.Split("abcd", "")[:n]...))
		flush(t, a)
		if got := len(slot.writes()); got != i+1 {
			t.Fatalf("after save %d expected %d writes, got %d", i+1, i+1, got)
		}
	}

	var lens []int
	for _, w := range slot.writes() {
		ts, err := tasks.Decode(w)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		lens = append(lens, len(ts))
	}
	for i, n := range lens {
		if n != i+1 {
			t.Errorf("write %d holds %d tasks, want %d", i, n, i+1)
		}
	}
}

func TestSave_BurstConvergesToLast(t *testing.T) {
	slot := newGateSlot(true)
	a := persist.New(slot)
	defer a.Close(context.Background())
	a.Load(context.Background())

	a.Save(collection("1"))
	<-slot.entered

	// The writer is busy; these collapse into one write.
	a.Save(collection("1", "2"))
	a.Save(collection("1", "2", "3"))
	a.Save(collection("1", "2", "3", "4"))

	returned := make(chan struct{})
	go func() {
		a.Save(collection("1", "2", "3", "4", "5"))
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("save blocked while the writer was busy")
	}

	close(slot.release)
	flush(t, a)

	if got := len(slot.writes()); got != 2 {
		t.Errorf("expected 2 writes, got %d", got)
	}
	if got := stored(t, slot, persist.DefaultKey); len(got) != 5 {
		t.Errorf("expected last snapshot with 5 tasks, got %d", len(got))
	}
}

func TestSave_BeforeLoadIsDropped(t *testing.T) {
	slot := kv.NewMemory()
	_ = slot.Put(context.Background(), persist.DefaultKey, []byte(`[{"id":"keep","text":"keep"}]`))
	a := persist.New(slot)
	defer a.Close(context.Background())

	a.Save(nil)
	flush(t, a)

	got := a.Load(context.Background())
	if len(got) != 1 || got[0].ID != "keep" {
		t.Errorf("early save must not overwrite stored data, got %+v", got)
	}
}

func TestSave_AfterCloseIsDropped(t *testing.T) {
	slot := kv.NewMemory()
	a := persist.New(slot)
	a.Load(context.Background())
	a.Save(collection("a"))
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	puts := slot.Puts()

	a.Save(collection("a", "b"))
	if slot.Puts() != puts {
		t.Error("save after close should not write")
	}
	if err := a.Close(context.Background()); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestSave_WriteFailureIsSwallowed(t *testing.T) {
	var logs bytes.Buffer
	slot := kv.NewMemory()
	slot.FailPuts(errors.New("disk full"))
	a := persist.New(slot, persist.WithLogger(log.New(&logs, "", 0)))
	defer a.Close(context.Background())
	a.Load(context.Background())

	a.Save(collection("a"))
	flush(t, a)
	if !strings.Contains(logs.String(), "disk full") {
		t.Errorf("expected failure to be logged, got %q", logs.String())
	}

	slot.FailPuts(nil)
	a.Save(collection("a", "b"))
	flush(t, a)
	if got := stored(t, slot, persist.DefaultKey); len(got) != 2 {
		t.Errorf("expected recovery on next save, got %d tasks", len(got))
	}
}

func TestSave_EncodeFailureKeepsStoredCollection(t *testing.T) {
	var logs bytes.Buffer
	slot := kv.NewMemory()
	a := persist.New(slot, persist.WithLogger(log.New(&logs, "", 0)))
	defer a.Close(context.Background())
	a.Load(context.Background())

	a.Save(collection("a", "b"))
	flush(t, a)

	bad := collection("a", "b", "c")
	bad[2].DueDate = &tasks.Date{}
	a.Save(bad)
	flush(t, a)

	if got := stored(t, slot, persist.DefaultKey); len(got) != 2 {
		t.Errorf("expected the previous 2 tasks kept, got %+v", got)
	}
	if !strings.Contains(logs.String(), "encode 3 tasks failed") {
		t.Errorf("expected encode failure logged, got %q", logs.String())
	}
}

func TestFlush_HonorsContext(t *testing.T) {
	slot := newGateSlot(true)
	a := persist.New(slot)
	a.Load(context.Background())
	a.Save(collection("a"))
	<-slot.entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := a.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}

	close(slot.release)
	if err := a.Close(context.Background()); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestStoreOverAdapter(t *testing.T) {
	slot := kv.NewMemory()
	s := tasks.NewStore(persist.New(slot))
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	a, _ := s.Add("one", nil, "")
	s.Add("two", nil, "")
	s.Toggle(a.ID)
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	got := stored(t, slot, persist.DefaultKey)
	snap := s.Snapshot()
	if len(got) != len(snap) {
		t.Fatalf("stored %d tasks, store has %d", len(got), len(snap))
	}
	for i := range snap {
		if !snap[i].Equal(got[i]) {
			t.Errorf("task %d: stored %+v, store %+v", i, got[i], snap[i])
		}
	}
}

func TestStoreOverAdapter_DueDatesSurviveReopen(t *testing.T) {
	for _, due := range []tasks.Date{tasks.NewDate(2024, 5, 1), tasks.NewDate(10000, 1, 1), {}} {
		slot := kv.NewMemory()
		s := tasks.NewStore(persist.New(slot))
		if err := s.Open(context.Background()); err != nil {
			t.Fatalf("open: %v", err)
		}
		s.Add("keep me", nil, "")
		s.Add("dated", &due, "")
		if err := s.Close(context.Background()); err != nil {
			t.Fatalf("close: %v", err)
		}

		reopened := tasks.NewStore(persist.New(slot))
		if err := reopened.Open(context.Background()); err != nil {
			t.Fatalf("reopen: %v", err)
		}
		got := reopened.Snapshot()
		reopened.Close(context.Background())

		if len(got) != 2 || got[0].Text != "keep me" || got[1].Text != "dated" {
			t.Errorf("date %s: restored %+v", due, got)
		}
	}
}
