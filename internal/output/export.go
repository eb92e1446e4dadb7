package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"todo/internal/tasks"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// Export writes ts to w in the given format. title heads the PDF page and
// pos numbers its rows, the way list numbers them. Tasks missing from pos
// are numbered by their index in ts.
func Export(w io.Writer, ts []tasks.Task, format, title string, pos map[string]int) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		return exportJSON(w, ts)
	case FormatCSV:
		return exportCSV(w, ts)
	case FormatPDF:
		return exportPDF(w, ts, title, pos)
	}
	return fmt.Errorf("unknown format: %s", format)
}

func exportJSON(w io.Writer, ts []tasks.Task) error {
	if ts == nil {
		ts = []tasks.Task{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ts)
}

func exportCSV(w io.Writer, ts []tasks.Task) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "text", "completed", "due_date", "category"})
	for _, t := range ts {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		_ = cw.Write([]string{t.ID, t.Text, strconv.FormatBool(t.Completed), due, t.Category})
	}
	cw.Flush()
	return cw.Error()
}

func exportPDF(w io.Writer, ts []tasks.Task, title string, pos map[string]int) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.AddPage()

	// Core fonts are cp1252; translate so accented text survives.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, tr(title))
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 11)
	if len(ts) == 0 {
		pdf.Cell(40, 8, "no tasks found")
	}
	for _, line := range pdfRows(ts, pos) {
		pdf.MultiCell(0, 7, tr(line), "0", "L", false)
	}
	return pdf.Output(w)
}

func pdfRows(ts []tasks.Task, pos map[string]int) []string {
	rows := make([]string, len(ts))
	for i, t := range ts {
		n, ok := pos[t.ID]
		if !ok {
			n = i + 1
		}
		rows[i] = pdfLine(n, t)
	}
	return rows
}

func pdfLine(n int, t tasks.Task) string {
	line := fmt.Sprintf("%d. %s %s", n, checkbox(t.Completed), normalizeTitle(t.Text))
	var meta []string
	if t.DueDate != nil {
		meta = append(meta, "due "+t.DueDate.String())
	}
	if c := strings.TrimSpace(t.Category); c != "" {
		meta = append(meta, c)
	}
	if len(meta) > 0 {
		line += "  (" + strings.Join(meta, ", ") + ")"
	}
	return line
}
