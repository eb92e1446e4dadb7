package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
	"todo/internal/tasks"
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd implements the export command.
type ExportCmd struct {
	format string
	filter string
	path   string
}

// SetFormat sets the format flag value (for testing).
func (c *ExportCmd) SetFormat(format string) {
	c.format = format
}

// SetFilter sets the filter flag value (for testing).
func (c *ExportCmd) SetFilter(filter string) {
	c.filter = filter
}

// SetOut sets the output path flag value (for testing).
func (c *ExportCmd) SetOut(path string) {
	c.path = path
}

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return nil }
func (c *ExportCmd) Synopsis() string  { return "Write tasks as JSON, CSV or PDF" }
func (c *ExportCmd) Usage() string {
	return "todo export [--format json|csv|pdf] [--filter all|active|completed] [--out <path>]"
}
func (c *ExportCmd) NeedsStore() bool { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", "", "")
	fs.StringVar(&c.filter, "filter", "all", "")
	fs.StringVar(&c.filter, "f", "all", "")
	fs.StringVar(&c.path, "out", "", "")
	fs.StringVar(&c.path, "o", "", "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	filter, err := tasks.ParseFilter(c.filter)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	format := c.format
	if format == "" {
		format = formatFromPath(c.path)
	}

	snapshot := svc.Snapshot()
	view := tasks.Apply(snapshot, filter)
	pos := positions(snapshot)
	title := "To-Do List"
	if filter != tasks.FilterAll {
		title += " (" + filter.String() + ")"
	}

	if c.path == "" || c.path == "-" {
		if err := output.Export(out, view, format, title, pos); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return exitcode.Success
	}

	f, err := os.Create(c.path)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := output.Export(f, view, format, title, pos); err != nil {
		f.Close()
		os.Remove(c.path)
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "wrote %d tasks to %s\n", len(view), c.path)
	}
	return exitcode.Success
}

// formatFromPath picks a format from the file extension, defaulting to JSON.
func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return output.FormatCSV
	case ".pdf":
		return output.FormatPDF
	default:
		return output.FormatJSON
	}
}
