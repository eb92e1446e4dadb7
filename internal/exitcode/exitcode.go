// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, bad date, out of range).
	UserError = 1

	// AuthError indicates a Google auth/config error.
	AuthError = 2

	// BackendError indicates a Google API/network error.
	BackendError = 3

	// StorageError indicates the task storage could not be opened.
	StorageError = 4
)
