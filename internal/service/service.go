// Package service defines the interfaces commands work against: the local
// task store and the remote Google Tasks source used by import.
package service

import (
	"context"

	"todo/internal/tasks"
)

// Service is the local task store as seen by commands.
// *tasks.Store implements it.
type Service interface {
	// Add creates a task. Returns false if text is blank.
	Add(text string, due *tasks.Date, category string) (tasks.Task, bool)

	// Toggle flips completion. Returns false if id is unknown.
	Toggle(id string) bool

	// Delete removes a task. Returns false if id is unknown.
	Delete(id string) bool

	// Snapshot returns the full ordered collection.
	Snapshot() []tasks.Task

	// Close flushes pending writes.
	Close(ctx context.Context) error
}

// Remote is a read-only source of tasks to import.
// Commands never import the Google SDK directly.
type Remote interface {
	// DefaultList returns the user's default task list.
	DefaultList(ctx context.Context) (TaskList, error)

	// ListLists returns all task lists in API order.
	ListLists(ctx context.Context) ([]TaskList, error)

	// ResolveList finds a list by name (case-insensitive, trimmed).
	// Returns error if not found or ambiguous.
	ResolveList(ctx context.Context, name string) (TaskList, error)

	// ListOpenTasks returns every open task of a list in API order.
	ListOpenTasks(ctx context.Context, listID string) ([]RemoteTask, error)
}

var _ Service = (*tasks.Store)(nil)
