package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
	"todo/internal/tasks"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todo` (no args) and `todo list [--filter f] [--category c]`.
type ListCmd struct {
	filter   string
	category string
}

// SetFilter sets the filter flag value (for testing).
func (c *ListCmd) SetFilter(filter string) {
	c.filter = filter
}

// SetCategory sets the category flag value (for testing).
func (c *ListCmd) SetCategory(category string) {
	c.category = category
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "todo list [--filter all|active|completed] [--category <name>]"
}
func (c *ListCmd) NeedsStore() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", "all", "")
	fs.StringVar(&c.filter, "f", "all", "")
	fs.StringVar(&c.category, "category", "", "")
	fs.StringVar(&c.category, "c", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	filter, err := tasks.ParseFilter(c.filter)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	snapshot := svc.Snapshot()
	view := tasks.InCategory(tasks.Apply(snapshot, filter), c.category)

	if len(view) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	if strings.TrimSpace(c.category) != "" {
		output.FormatHeader(out, strings.TrimSpace(c.category))
	}

	// Numbers are positions in the full snapshot so that refs stay valid
	// whatever filter was used to display them.
	pos := positions(snapshot)
	for _, t := range view {
		output.FormatTask(out, pos[t.ID], t)
	}
	return exitcode.Success
}

// positions maps task ids to their 1-based position in snapshot.
func positions(snapshot []tasks.Task) map[string]int {
	pos := make(map[string]int, len(snapshot))
	for i, t := range snapshot {
		pos[t.ID] = i + 1
	}
	return pos
}
