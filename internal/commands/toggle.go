package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"done", "undo"} }
func (c *ToggleCmd) Synopsis() string  { return "Flip a task between open and completed" }
func (c *ToggleCmd) Usage() string     { return "todo toggle <ref>" }
func (c *ToggleCmd) NeedsStore() bool  { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runRefMutation(cfg, svc, args, svc.Toggle, out, errOut)
}

// runRefMutation resolves a task reference and applies a store mutation.
// An id the store does not know is reported as "unchanged", not an error.
func runRefMutation(cfg *config.Config, svc service.Service, args []string, apply func(id string) bool, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		if err == ErrTaskRefRequired {
			fmt.Fprintln(errOut, "error: task reference required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.UserError
	}

	id, err := ResolveTaskRef(svc.Snapshot(), ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	changed := apply(id)
	if !cfg.Quiet {
		if changed {
			fmt.Fprintln(out, "ok")
		} else {
			fmt.Fprintln(out, "unchanged")
		}
	}
	return exitcode.Success
}
