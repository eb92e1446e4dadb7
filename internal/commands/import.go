package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/tasks"
)

// RemoteFactory creates the Google Tasks source used by import.
// Set by main; nil disables import.
type RemoteFactory func(ctx context.Context, cfg *config.Config) (service.Remote, error)

// NewRemote is the factory used when no remote was injected.
var NewRemote RemoteFactory

func init() {
	Register(&ImportCmd{})
}

// ImportCmd implements the import command: a one-shot copy of the open
// tasks of a Google Tasks list into the local store. Nothing is written back.
type ImportCmd struct {
	listName string
	category string
	all      bool
	remote   service.Remote
}

// SetRemote injects the remote source (for testing).
func (c *ImportCmd) SetRemote(r service.Remote) {
	c.remote = r
}

// SetListName sets the list name (for testing).
func (c *ImportCmd) SetListName(name string) {
	c.listName = name
}

// SetCategory sets the category flag value (for testing).
func (c *ImportCmd) SetCategory(category string) {
	c.category = category
}

func (c *ImportCmd) Name() string      { return "import" }
func (c *ImportCmd) Aliases() []string { return nil }
func (c *ImportCmd) Synopsis() string  { return "Import open tasks from Google Tasks" }
func (c *ImportCmd) Usage() string {
	return "todo import [--list <list-name>] [--category <name>] [--all]"
}
func (c *ImportCmd) NeedsStore() bool { return true }

func (c *ImportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.StringVar(&c.category, "category", "", "")
	fs.StringVar(&c.category, "c", "", "")
	fs.BoolVar(&c.all, "all", false, "")
}

func (c *ImportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	remote, code := c.openRemote(ctx, cfg, errOut)
	if remote == nil {
		return code
	}

	// Resolve list
	var list service.TaskList
	var err error
	if c.listName != "" {
		list, err = remote.ResolveList(ctx, c.listName)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				fmt.Fprintf(errOut, "error: list not found: %s\n", c.listName)
				return exitcode.UserError
			}
			if strings.Contains(err.Error(), "ambiguous") {
				fmt.Fprintf(errOut, "error: ambiguous list name: %s\n", c.listName)
				return exitcode.UserError
			}
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
			return exitcode.BackendError
		}
	} else {
		list, err = remote.DefaultList(ctx)
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
			return exitcode.BackendError
		}
	}

	remoteTasks, err := remote.ListOpenTasks(ctx, list.ID)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	category := c.category
	if category == "" && !list.IsDefault {
		category = strings.TrimSpace(list.Title)
	}

	existing := make(map[string]struct{})
	for _, t := range svc.Snapshot() {
		existing[strings.TrimSpace(t.Text)] = struct{}{}
	}

	imported, skipped := 0, 0
	for _, rt := range remoteTasks {
		text := strings.TrimSpace(rt.Title)
		if _, dup := existing[text]; dup && !c.all {
			skipped++
			continue
		}
		if _, ok := svc.Add(text, remoteDue(rt.Due), category); !ok {
			skipped++
			continue
		}
		existing[text] = struct{}{}
		imported++
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "imported %d, skipped %d\n", imported, skipped)
	}
	return exitcode.Success
}

// openRemote returns the injected remote or builds one from NewRemote.
// On failure it reports the error and returns a nil remote with the exit code.
func (c *ImportCmd) openRemote(ctx context.Context, cfg *config.Config, errOut io.Writer) (service.Remote, int) {
	if c.remote != nil {
		return c.remote, exitcode.Success
	}
	if NewRemote == nil {
		fmt.Fprintln(errOut, "error: import is not available in this build")
		return nil, exitcode.UserError
	}
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: oauth_client.json not found in %s\n", cfg.Dir)
		return nil, exitcode.AuthError
	}
	if !cfg.HasToken() {
		fmt.Fprintln(errOut, "error: not logged in (run: todo login)")
		return nil, exitcode.AuthError
	}
	remote, err := NewRemote(ctx, cfg)
	if err != nil {
		if strings.Contains(err.Error(), "token") || strings.Contains(err.Error(), "auth") {
			fmt.Fprintf(errOut, "error: auth error: %s\n", err)
			return nil, exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return nil, exitcode.BackendError
	}
	return remote, exitcode.Success
}

// remoteDue extracts the calendar date from a Google Tasks due timestamp.
// Google stores due dates as midnight UTC; the time part carries no meaning.
func remoteDue(due string) *tasks.Date {
	if len(due) < len("2006-01-02") {
		return nil
	}
	d, err := tasks.ParseDate(due[:len("2006-01-02")])
	if err != nil {
		return nil
	}
	return &d
}
