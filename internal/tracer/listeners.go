package tracer

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

var (
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// styleFor picks a style from the leading word of a tool output line.
func styleFor(line string) (lipgloss.Style, bool) {
	switch {
	case strings.HasPrefix(line, "done:"):
		return doneStyle, true
	case strings.HasPrefix(line, "pending:"), strings.HasPrefix(line, "warning:"):
		return pendingStyle, true
	case strings.HasPrefix(line, "error:"), strings.HasPrefix(line, "binding error:"), strings.HasPrefix(line, "No matching"):
		return errorStyle, true
	case strings.HasPrefix(line, "skipped"), strings.HasPrefix(line, "duration:"):
		return faintStyle, true
	}
	return lipgloss.Style{}, false
}

// ConsoleListener writes trace output to a terminal, colored when enabled.
type ConsoleListener struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewConsoleListener creates a ConsoleListener writing to w.
func NewConsoleListener(w io.Writer, color bool) *ConsoleListener {
	return &ConsoleListener{w: w, color: color}
}

func (l *ConsoleListener) WriteTestOutput(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, message)
}

func (l *ConsoleListener) WriteToolOutput(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.color {
		if style, ok := styleFor(line); ok {
			// style only the first line so code skeletons stay copyable
			head, rest, multi := strings.Cut(line, "\n")
			line = style.Render(head)
			if multi {
				line += "\n" + rest
			}
		}
	}
	fmt.Fprintln(l.w, "-> "+line)
}

// LogListener forwards trace output to a logrus logger.
type LogListener struct {
	log *logrus.Logger
}

// NewLogListener creates a LogListener.
func NewLogListener(log *logrus.Logger) *LogListener {
	return &LogListener{log: log}
}

func (l *LogListener) WriteTestOutput(message string) {
	l.log.WithField("output", "test").Info(message)
}

func (l *LogListener) WriteToolOutput(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	entry := l.log.WithField("output", "tool")
	switch {
	case strings.HasPrefix(line, "error:"), strings.HasPrefix(line, "binding error:"), strings.HasPrefix(line, "No matching"):
		entry.Error(line)
	case strings.HasPrefix(line, "warning:"), strings.HasPrefix(line, "pending:"):
		entry.Warn(line)
	case strings.HasPrefix(line, "duration:"), strings.HasPrefix(line, "skipped"):
		entry.Debug(line)
	default:
		entry.Info(line)
	}
}
