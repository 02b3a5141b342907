// Package notify prints user-facing notifications for CLI operations.
//
// Output is styled when the writer is a terminal and plain text otherwise.
package notify

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Notifier writes success and failure notices to one writer.
type Notifier struct {
	w io.Writer

	box     lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	info    lipgloss.Style
	detail  lipgloss.Style
}

func New(w io.Writer) *Notifier {
	r := lipgloss.NewRenderer(w)

	return &Notifier{
		w:       w,
		box:     r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		success: r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		failure: r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		info:    r.NewStyle().Bold(true),
		detail:  r.NewStyle().Faint(true),
	}
}

// Success reports a completed operation.
func (n *Notifier) Success(title string, details ...string) {
	n.render(n.success.Render("✓ "+title), details)
}

// Failure reports a failed operation together with its cause.
func (n *Notifier) Failure(title string, err error) {
	var details []string
	if err != nil {
		details = []string{err.Error()}
	}
	n.render(n.failure.Render("✗ "+title), details)
}

// Info reports a neutral outcome, such as a skipped sync.
func (n *Notifier) Info(title string, details ...string) {
	n.render(n.info.Render(title), details)
}

func (n *Notifier) render(head string, details []string) {
	lines := []string{head}
	for _, d := range details {
		if d = strings.TrimSpace(d); d != "" {
			lines = append(lines, n.detail.Render(d))
		}
	}
	fmt.Fprintln(n.w, n.box.Render(strings.Join(lines, "\n")))
}
