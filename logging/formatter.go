package logging

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
)

// FormatOptions trims parts of the text format.
type FormatOptions struct {
	DisableTimestamp bool
	DisableComponent bool
}

// TextFormatter renders "time [LEVEL] [component] message key=value ...".
type TextFormatter struct {
	Options FormatOptions

	// Renderer styles the component name. Nil renders plain text.
	Renderer *lipgloss.Renderer
}

// NewTextFormatter returns a formatter that colours output only when w is a terminal.
func NewTextFormatter(opts FormatOptions, w io.Writer, interactive bool) *TextFormatter {
	r := lipgloss.NewRenderer(w)
	if !interactive {
		r.SetColorProfile(termenv.Ascii)
	}
	return &TextFormatter{Options: opts, Renderer: r}
}

var componentColor = lipgloss.Color("#7E9CD8")

// Format renders a single log entry.
func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder

	if !f.Options.DisableTimestamp {
		b.WriteString(entry.Time.Format("2006-01-02 15:04:05"))
		b.WriteString(" ")
	}

	levelStr := entry.Level.String()
	if levelStr == "warning" {
		levelStr = "warn"
	}
	b.WriteString(fmt.Sprintf("[%s]", strings.ToUpper(levelStr)))

	if component, ok := entry.Data["component"]; ok && !f.Options.DisableComponent {
		componentStr := fmt.Sprintf("%v", component)
		if f.Renderer != nil {
			componentStr = f.Renderer.NewStyle().Foreground(componentColor).Render(componentStr)
		}
		b.WriteString(fmt.Sprintf(" [%s]", componentStr))
	}

	if entry.HasCaller() {
		fileName := filepath.Base(entry.Caller.File)
		funcName := filepath.Base(entry.Caller.Function)
		b.WriteString(fmt.Sprintf(" [%s:%d %s]", fileName, entry.Caller.Line, funcName))
	}

	b.WriteString(" ")
	b.WriteString(entry.Message)

	// Remaining fields in stable order
	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		if key != "component" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.WriteString(fmt.Sprintf(" %s=%v", key, entry.Data[key]))
	}

	b.WriteString("\n")
	return []byte(b.String()), nil
}
