package service

// RemoteTask represents an open task in a remote list.
type RemoteTask struct {
	ID    string
	Title string
	Due   string // RFC 3339 timestamp; only the date part is meaningful
}

// TaskList represents a remote task list.
type TaskList struct {
	ID        string
	Title     string
	IsDefault bool
}
