package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mesh-intelligence/todos/pkg/types"
)

const titleMaxWidth = 50

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	labelStyle  = lipgloss.NewStyle().Bold(true)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// printer renders command results as JSON, or as text styled only when
// writing to a terminal.
type printer struct {
	w      io.Writer
	json   bool
	styled bool
}

func (a *app) printer(cmd *cobra.Command) *printer {
	w := cmd.OutOrStdout()
	return &printer{
		w:      w,
		json:   a.flags.jsonMode,
		styled: !a.flags.jsonMode && isTerminal(w),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *printer) render(style lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return style.Render(text)
}

func (p *printer) writeJSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// todos prints a list as an aligned table.
func (p *printer) todos(todos []types.Todo) error {
	if p.json {
		return p.writeJSON(todos)
	}
	if len(todos) == 0 {
		_, err := fmt.Fprintln(p.w, p.render(mutedStyle, "No todos."))
		return err
	}

	headers := []string{"ID", "DONE", "TITLE", "CREATED"}
	for i, h := range headers {
		headers[i] = p.render(headerStyle, h)
	}
	rows := make([][]string, 0, len(todos))
	for _, t := range todos {
		rows = append(rows, []string{
			t.ID,
			p.doneMark(t.Completed),
			truncate(t.Title, titleMaxWidth),
			p.render(mutedStyle, formatCreated(t.CreatedAt)),
		})
	}
	_, err := fmt.Fprint(p.w, formatTable(headers, rows))
	return err
}

// todo prints a single todo as a labelled block.
func (p *printer) todo(t types.Todo) error {
	if p.json {
		return p.writeJSON(t)
	}
	desc := p.render(mutedStyle, "(none)")
	if t.Description != nil {
		desc = *t.Description
	}
	fields := [][2]string{
		{"ID", t.ID},
		{"Title", t.Title},
		{"Description", desc},
		{"Completed", p.doneMark(t.Completed)},
		{"Created", formatCreated(t.CreatedAt)},
	}
	var b strings.Builder
	for _, f := range fields {
		label := fmt.Sprintf("%-13s", f[0]+":")
		b.WriteString(p.render(labelStyle, label))
		b.WriteString(f[1])
		b.WriteByte('\n')
	}
	_, err := fmt.Fprint(p.w, b.String())
	return err
}

// result prints a short confirmation, or v as JSON.
func (p *printer) result(v any, format string, args ...any) error {
	if p.json {
		return p.writeJSON(v)
	}
	_, err := fmt.Fprintf(p.w, format+"\n", args...)
	return err
}

func (p *printer) doneMark(done bool) string {
	if done {
		return p.render(doneStyle, "[x]")
	}
	return "[ ]"
}

func formatCreated(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05Z")
}

// formatTable renders headers and rows with columns padded to the widest
// cell. Widths ignore ANSI styling.
func formatTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(row []string) {
		for i, cell := range row {
			b.WriteString(cell)
			if i == len(row)-1 {
				b.WriteByte('\n')
				continue
			}
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
		}
	}
	writeRow(headers)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

// truncate shortens s to max runes, marking the cut with "...". Newlines and
// tabs are flattened to spaces.
func truncate(s string, max int) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
