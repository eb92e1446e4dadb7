package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"todo/internal/kv"
	"todo/internal/persist"
	"todo/internal/tasks"
)

// SequentialIDs returns an id generator yielding prefix1, prefix2, ...
func SequentialIDs(prefix string) func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s%d", prefix, n.Add(1))
	}
}

// NewMemoryStore returns a ready store over a fresh memory slot, seeded with
// seed, generating ids t1, t2, ... The store is closed at test cleanup.
func NewMemoryStore(t *testing.T, seed ...tasks.Task) (*tasks.Store, *kv.Memory) {
	t.Helper()

	slot := kv.NewMemory()
	if len(seed) > 0 {
		data, err := tasks.Encode(seed)
		if err != nil {
			t.Fatalf("failed to encode seed tasks: %v", err)
		}
		if err := slot.Put(context.Background(), persist.DefaultKey, data); err != nil {
			t.Fatalf("failed to seed slot: %v", err)
		}
	}

	store := tasks.NewStore(persist.New(slot), tasks.WithIDGenerator(SequentialIDs("t")))
	if err := store.Open(context.Background()); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store, slot
}

// StoredTasks decodes what the slot holds under the default key.
func StoredTasks(t *testing.T, slot *kv.Memory) []tasks.Task {
	t.Helper()
	data, err := slot.Get(context.Background(), persist.DefaultKey)
	if err != nil {
		t.Fatalf("failed to read slot: %v", err)
	}
	ts, err := tasks.Decode(data)
	if err != nil {
		t.Fatalf("failed to decode slot: %v", err)
	}
	return ts
}
