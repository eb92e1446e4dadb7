package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
	"todo/internal/tasks"
)

func init() {
	Register(&CategoriesCmd{})
}

// CategoriesCmd implements the categories command.
type CategoriesCmd struct{}

func (c *CategoriesCmd) Name() string      { return "categories" }
func (c *CategoriesCmd) Aliases() []string { return []string{"cats"} }
func (c *CategoriesCmd) Synopsis() string  { return "List categories with open/total counts" }
func (c *CategoriesCmd) Usage() string     { return "todo categories" }
func (c *CategoriesCmd) NeedsStore() bool  { return true }

func (c *CategoriesCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CategoriesCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	counts := tasks.Categories(svc.Snapshot())
	if len(counts) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}
	for _, cc := range counts {
		output.FormatCategory(out, cc)
	}
	return exitcode.Success
}
