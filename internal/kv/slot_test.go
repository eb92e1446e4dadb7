package kv_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"todo/internal/kv"
)

// exercise runs the behavior every backend shares.
func exercise(t *testing.T, slot kv.Slot) {
	t.Helper()
	ctx := context.Background()

	if _, err := slot.Get(ctx, "tasks"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := slot.Put(ctx, "tasks", []byte(`[1]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := slot.Put(ctx, "tasks", []byte(`[1,2]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := slot.Put(ctx, "other", []byte(`x`)); err != nil {
		t.Fatalf("put other: %v", err)
	}

	got, err := slot.Get(ctx, "tasks")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `[1,2]` {
		t.Errorf("expected last write, got %q", got)
	}

	if err := slot.Put(ctx, " ", []byte(`x`)); err == nil {
		t.Error("blank key should be rejected")
	}
}

func TestMemory(t *testing.T) {
	slot := kv.NewMemory()
	defer slot.Close()
	exercise(t, slot)

	if slot.Puts() != 3 {
		t.Errorf("expected 3 puts, got %d", slot.Puts())
	}
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	slot := kv.NewMemory()

	value := []byte("abc")
	_ = slot.Put(ctx, "k", value)
	value[0] = 'z'

	got, _ := slot.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value followed caller change: %q", got)
	}
	got[1] = 'z'
	again, _ := slot.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value followed reader change: %q", again)
	}
}

func TestMemory_FailureInjection(t *testing.T) {
	ctx := context.Background()
	slot := kv.NewMemory()
	boom := errors.New("boom")

	slot.FailPuts(boom)
	if err := slot.Put(ctx, "k", []byte("v")); !errors.Is(err, boom) {
		t.Errorf("expected injected put error, got %v", err)
	}
	slot.FailPuts(nil)
	_ = slot.Put(ctx, "k", []byte("v"))

	slot.FailGets(boom)
	if _, err := slot.Get(ctx, "k"); !errors.Is(err, boom) {
		t.Errorf("expected injected get error, got %v", err)
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	slot, err := kv.NewFile(dir)
	if err != nil {
		t.Fatalf("new file slot: %v", err)
	}
	exercise(t, slot)

	data, err := os.ReadFile(filepath.Join(dir, "tasks.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `[1,2]` {
		t.Errorf("unexpected file content %q", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("expected only the two key files, got %d entries", len(entries))
	}
}

func TestFile_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "todo")
	slot, _ := kv.NewFile(dir)

	if err := slot.Put(context.Background(), "tasks", []byte("[]")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "tasks.json")); err != nil {
		t.Errorf("expected file: %v", err)
	}
}

func TestFile_RejectsBadKeys(t *testing.T) {
	slot, _ := kv.NewFile(t.TempDir())
	for _, key := range []string{"../escape", "a/b", `a\b`, "..", "."} {
		if err := slot.Put(context.Background(), key, []byte("x")); err == nil {
			t.Errorf("key %q should be rejected", key)
		}
	}
}

func TestFile_RequiresDir(t *testing.T) {
	if _, err := kv.NewFile(""); err == nil {
		t.Error("expected error for empty dir")
	}
}

func TestFile_CancelledContext(t *testing.T) {
	slot, _ := kv.NewFile(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := slot.Put(ctx, "tasks", []byte("[]")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "todo.db")
	slot, err := kv.OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer slot.Close()
	exercise(t, slot)
}

func TestSQLite_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "todo.db")

	slot, err := kv.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := slot.Put(ctx, "tasks", []byte("[]")); err != nil {
		t.Fatalf("put: %v", err)
	}
	slot.Close()

	slot, err = kv.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	defer slot.Close()
	got, err := slot.Get(ctx, "tasks")
	if err != nil || string(got) != "[]" {
		t.Errorf("expected [] after reopen, got %q (%v)", got, err)
	}
}

// External databases run only when a DSN is provided.
func TestPostgres(t *testing.T) {
	dsn := os.Getenv("TODO_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TODO_TEST_POSTGRES_DSN not set")
	}
	slot, err := kv.OpenPostgres(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	defer slot.Close()
	exercise(t, slot)
}

func TestMySQL(t *testing.T) {
	dsn := os.Getenv("TODO_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TODO_TEST_MYSQL_DSN not set")
	}
	slot, err := kv.OpenMySQL(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open mysql: %v", err)
	}
	defer slot.Close()
	exercise(t, slot)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	slot, err := kv.Open(ctx, "", t.TempDir())
	if err != nil {
		t.Fatalf("open default: %v", err)
	}
	if _, ok := slot.(*kv.File); !ok {
		t.Errorf("expected file slot by default, got %T", slot)
	}

	slot, err = kv.Open(ctx, "Memory", "")
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if _, ok := slot.(*kv.Memory); !ok {
		t.Errorf("expected memory slot, got %T", slot)
	}

	if _, err := kv.Open(ctx, "tape", ""); err == nil || err.Error() != "unknown storage backend: tape" {
		t.Errorf("unexpected error %v", err)
	}
}
