// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"

	"todo/internal/service"
)

// DefaultListID is the ID used for the default list.
const DefaultListID = "@default"

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// ErrAmbiguous is returned when multiple matches are found.
var ErrAmbiguous = errors.New("ambiguous")

// FakeRemote is an in-memory implementation of service.Remote for testing.
type FakeRemote struct {
	mu    sync.RWMutex
	lists []service.TaskList
	tasks map[string][]service.RemoteTask // listID -> tasks

	// Error injection for testing
	DefaultListErr   error
	ListListsErr     error
	ResolveListErr   error
	ListOpenTasksErr map[string]error // listID -> error
}

// NewFakeRemote creates a new FakeRemote with a default list.
func NewFakeRemote() *FakeRemote {
	f := &FakeRemote{
		tasks:            make(map[string][]service.RemoteTask),
		ListOpenTasksErr: make(map[string]error),
	}
	f.lists = []service.TaskList{
		{ID: DefaultListID, Title: "My Tasks", IsDefault: true},
	}
	f.tasks[DefaultListID] = nil
	return f
}

// AddList adds a list to the fake remote.
func (f *FakeRemote) AddList(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, service.TaskList{ID: id, Title: title})
	if f.tasks[id] == nil {
		f.tasks[id] = nil
	}
}

// AddTask adds an open task to a list. due is an RFC 3339 timestamp or "".
func (f *FakeRemote) AddTask(listID, taskID, title, due string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[listID] = append(f.tasks[listID], service.RemoteTask{
		ID:    taskID,
		Title: title,
		Due:   due,
	})
}

// DefaultList implements service.Remote.
func (f *FakeRemote) DefaultList(ctx context.Context) (service.TaskList, error) {
	if f.DefaultListErr != nil {
		return service.TaskList{}, f.DefaultListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, l := range f.lists {
		if l.IsDefault {
			return l, nil
		}
	}
	return service.TaskList{}, errors.New("no default list")
}

// ListLists implements service.Remote.
func (f *FakeRemote) ListLists(ctx context.Context) ([]service.TaskList, error) {
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.TaskList, len(f.lists))
	copy(result, f.lists)
	return result, nil
}

// ResolveList implements service.Remote.
func (f *FakeRemote) ResolveList(ctx context.Context, name string) (service.TaskList, error) {
	if f.ResolveListErr != nil {
		return service.TaskList{}, f.ResolveListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	nameLower := strings.ToLower(strings.TrimSpace(name))

	var matches []service.TaskList
	for _, l := range f.lists {
		if strings.ToLower(strings.TrimSpace(l.Title)) == nameLower {
			matches = append(matches, l)
		}
	}

	switch len(matches) {
	case 0:
		return service.TaskList{}, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return service.TaskList{}, ErrAmbiguous
	}
}

// ListOpenTasks implements service.Remote.
func (f *FakeRemote) ListOpenTasks(ctx context.Context, listID string) ([]service.RemoteTask, error) {
	if err, ok := f.ListOpenTasksErr[listID]; ok && err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	ts, ok := f.tasks[listID]
	if !ok {
		return nil, ErrNotFound
	}
	result := make([]service.RemoteTask, len(ts))
	copy(result, ts)
	return result, nil
}
