package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1F2937")).
			Padding(0, 1).
			MarginBottom(1)

	noteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(1, 2).
			Width(88)

	rawStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)
)

// Printer renders briefings and status lines for a terminal.
type Printer struct {
	out   io.Writer
	plain bool
}

// New returns a styled printer on w. A nil writer means stdout.
func New(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w}
}

// Plain disables styling, for piped output and tests.
func (p *Printer) Plain() *Printer {
	return &Printer{out: p.out, plain: true}
}

func (p *Printer) render(style lipgloss.Style, s string) string {
	if p.plain {
		return s
	}
	return style.Render(s)
}

// Briefing prints the strategy note followed by the raw briefing.
func (p *Printer) Briefing(subject, note, raw string) {
	fmt.Fprintln(p.out, p.render(titleStyle, "🧠 "+subject))
	if strings.TrimSpace(note) != "" {
		fmt.Fprintln(p.out, p.render(noteStyle, note))
		fmt.Fprintln(p.out)
	}
	fmt.Fprintln(p.out, p.render(rawStyle, raw))
}

// Raw prints the briefing text untouched.
func (p *Printer) Raw(raw string) {
	fmt.Fprint(p.out, raw)
}

func (p *Printer) Error(err error, context string) {
	fmt.Fprintln(p.out, p.render(errorStyle, fmt.Sprintf("❌ Error in %s: %v", context, err)))
}

func (p *Printer) Warning(message string) {
	fmt.Fprintln(p.out, p.render(warningStyle, "⚠️  Warning: "+message))
}

func (p *Printer) Success(message string) {
	fmt.Fprintln(p.out, p.render(successStyle, "✅ "+message))
}

func (p *Printer) Info(message string) {
	fmt.Fprintf(p.out, "ℹ️  %s\n", message)
}
