// Package logger provides leveled logging for the pelagia CLI.
// Debug, Info and Section print only in verbose mode; warnings and errors
// always print. Prefixes are coloured when the output is a terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	// mu also serialises writes to output.
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	styles            = newStyles(os.Stderr)
)

type prefixStyles struct {
	debug   lipgloss.Style
	info    lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	section lipgloss.Style
	plain   bool
}

func newStyles(w io.Writer) prefixStyles {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return prefixStyles{plain: true}
	}
	r := lipgloss.NewRenderer(w)
	return prefixStyles{
		debug:   r.NewStyle().Foreground(lipgloss.Color("8")),
		info:    r.NewStyle().Foreground(lipgloss.Color("6")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		err:     r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		section: r.NewStyle().Bold(true),
	}
}

func (s prefixStyles) render(style lipgloss.Style, text string) string {
	if s.plain {
		return text
	}
	return style.Render(text)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	styles = newStyles(w)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "%s "+format+"\n", append([]any{styles.render(styles.debug, "[DEBUG]")}, args...)...)
	}
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n%s\n", styles.render(styles.section, "=== "+name+" ==="))
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "%s "+format+"\n", append([]any{styles.render(styles.info, "[INFO]")}, args...)...)
	}
}

// Warn prints a warning. Warnings are always shown.
func Warn(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(output, "%s "+format+"\n", append([]any{styles.render(styles.warn, "Warning:")}, args...)...)
}

// Error prints an error. Errors are always shown.
func Error(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(output, "%s "+format+"\n", append([]any{styles.render(styles.err, "error:")}, args...)...)
}

// Detail prints a continuation line for the preceding warning
// or error. It is always shown.
func Detail(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(output, format+"\n", args...)
}
