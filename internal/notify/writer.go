package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var severityStyles = map[Severity]lipgloss.Style{
	Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

// Style returns the lipgloss style used for a severity.
func Style(s Severity) lipgloss.Style {
	return severityStyles[s]
}

// Writer prints notifications as single lines, for non-interactive commands.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) Notify(n Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()
	line := Style(n.Severity).Render(n.Title)
	if n.Description != "" {
		line += ": " + n.Description
	}
	fmt.Fprintln(w.out, line)
}
