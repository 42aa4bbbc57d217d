// Package ui renders command output, styled when stdout is a terminal and
// plain otherwise.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color palette.
const (
	ColorAccent = "39"  // Headers
	ColorGreen  = "42"  // Success
	ColorGray   = "245" // Labels, echoed text
	ColorRed    = "196" // Errors
	ColorYellow = "220" // Warnings
)

// Styles holds the styles used for command output.
type Styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
	Label   lipgloss.Style
}

// DefaultStyles returns colored styles for terminals.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccent)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorRed)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
		Label:   lipgloss.NewStyle(),
	}
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// StylesFor picks colored styles only for a terminal without NO_COLOR.
func StylesFor(w io.Writer) Styles {
	if IsTTY(w) && !DetectNoColor() {
		return DefaultStyles()
	}
	return NoColorStyles()
}

// Printer writes styled lines to a writer.
type Printer struct {
	w io.Writer
	s Styles
}

// NewPrinter returns a printer with styles chosen for w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, s: StylesFor(w)}
}

// NewPlainPrinter returns a printer that never styles.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{w: w, s: NoColorStyles()}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

func (p *Printer) Header(format string, args ...any) {
	fmt.Fprintln(p.w, p.s.Header.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.s.Success.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.w, p.s.Warning.Render("warning: "+fmt.Sprintf(format, args...)))
}

func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.w, p.s.Error.Render("error: "+fmt.Sprintf(format, args...)))
}

// Field prints an aligned "label: value" line.
func (p *Printer) Field(label string, value any) {
	fmt.Fprintf(p.w, "%s %v\n", p.s.Label.Render(fmt.Sprintf("%-12s", label+":")), value)
}

// Block prints multi-line text indented and dimmed.
func (p *Printer) Block(text string) {
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintln(p.w, p.s.Dim.Render("    "+line))
	}
}

// Line prints an unstyled line.
func (p *Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}
