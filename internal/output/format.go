// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todo/internal/tasks"
)

const (
	// ListSeparator is the separator line around section headers.
	ListSeparator = "------------"
)

// FormatTask formats a task line.
// Format: "{N:>4}  [{x| }] {TEXT}[  due:{DATE}][  @{CATEGORY}]\n"
func FormatTask(w io.Writer, num int, t tasks.Task) {
	fmt.Fprintf(w, "%4d  %s %s", num, checkbox(t.Completed), normalizeTitle(t.Text))
	if t.DueDate != nil {
		fmt.Fprintf(w, "  due:%s", t.DueDate)
	}
	if c := strings.TrimSpace(t.Category); c != "" {
		fmt.Fprintf(w, "  @%s", c)
	}
	fmt.Fprintln(w)
}

// FormatHeader formats a section header for a filtered listing.
func FormatHeader(w io.Writer, title string) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, ListSeparator)
}

// FormatCategory formats a line of the categories command.
// Format: "{NAME}  {OPEN}/{TOTAL} open\n"
func FormatCategory(w io.Writer, c tasks.CategoryCount) {
	fmt.Fprintf(w, "%s  %d/%d open\n", normalizeListTitle(c.Name), c.Open, c.Total)
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// normalizeTitle normalizes a task text for display.
// - Empty or whitespace-only texts become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeListTitle normalizes a category name for display.
// Empty or whitespace-only names become "(none)".
func normalizeListTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(none)"
	}
	return title
}
