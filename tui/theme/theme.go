// Package theme holds the colors and styles shared by casemgmt's terminal
// output: help, tables and the watch view.
package theme

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// EnvTheme selects the palette ("kanagawa" or "terminal").
const EnvTheme = "CASEMGMT_THEME"

const defaultThemeName = "kanagawa"

// Colors encapsulates the palette used by a theme.
type Colors struct {
	Green              lipgloss.TerminalColor
	Yellow             lipgloss.TerminalColor
	Red                lipgloss.TerminalColor
	Orange             lipgloss.TerminalColor
	Cyan               lipgloss.TerminalColor
	Blue               lipgloss.TerminalColor
	Violet             lipgloss.TerminalColor
	MutedText          lipgloss.TerminalColor
	Border             lipgloss.TerminalColor
	SelectedBackground lipgloss.TerminalColor
	SubtleBackground   lipgloss.TerminalColor
}

func kanagawa() Colors {
	return Colors{
		Green:              lipgloss.AdaptiveColor{Light: "#4E7C5A", Dark: "#98BB6C"},
		Yellow:             lipgloss.AdaptiveColor{Light: "#A68A64", Dark: "#FF9E3B"},
		Red:                lipgloss.AdaptiveColor{Light: "#C34043", Dark: "#FF5D62"},
		Orange:             lipgloss.AdaptiveColor{Light: "#CC6B4E", Dark: "#FFA066"},
		Cyan:               lipgloss.AdaptiveColor{Light: "#5B8BBE", Dark: "#7E9CD8"},
		Blue:               lipgloss.AdaptiveColor{Light: "#4F7CAC", Dark: "#7FB4CA"},
		Violet:             lipgloss.AdaptiveColor{Light: "#674D7A", Dark: "#957FB8"},
		MutedText:          lipgloss.AdaptiveColor{Light: "#6C7086", Dark: "#727169"},
		Border:             lipgloss.AdaptiveColor{Light: "#B5BDC5", Dark: "#363646"},
		SelectedBackground: lipgloss.AdaptiveColor{Light: "#E2E6F3", Dark: "#223249"},
		SubtleBackground:   lipgloss.AdaptiveColor{Light: "#EFF1F8", Dark: "#181820"},
	}
}

// terminal uses ANSI indexes so the user's terminal scheme decides.
func terminal() Colors {
	return Colors{
		Green:              lipgloss.Color("2"),
		Yellow:             lipgloss.Color("3"),
		Red:                lipgloss.Color("1"),
		Orange:             lipgloss.Color("208"),
		Cyan:               lipgloss.Color("6"),
		Blue:               lipgloss.Color("4"),
		Violet:             lipgloss.Color("5"),
		MutedText:          lipgloss.Color("8"),
		Border:             lipgloss.Color("8"),
		SelectedBackground: lipgloss.Color("8"),
		SubtleBackground:   lipgloss.Color("0"),
	}
}

var palettes = map[string]func() Colors{
	"kanagawa": kanagawa,
	"terminal": terminal,
}

// Theme holds the pre-configured styles.
type Theme struct {
	Name   string
	Colors Colors

	Header  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Bold     lipgloss.Style
	Italic   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style

	TableHeader lipgloss.Style
	TableBorder lipgloss.Style
	// AlternateRows is off for the terminal palette, whose background
	// colors are unknown.
	AlternateRows bool

	Highlight lipgloss.Style
	Accent    lipgloss.Style
}

// DefaultTheme is the theme picked from CASEMGMT_THEME at startup.
var DefaultTheme = NewThemeWithName(os.Getenv(EnvTheme))

// NewThemeWithName builds a theme from a palette name. Unknown names fall
// back to the default palette.
func NewThemeWithName(name string) *Theme {
	name = strings.ToLower(strings.TrimSpace(name))
	build, ok := palettes[name]
	if !ok {
		name = defaultThemeName
		build = palettes[name]
	}
	c := build()

	return &Theme{
		Name:   name,
		Colors: c,

		Header:  lipgloss.NewStyle().Bold(true).Foreground(c.Orange),
		Success: lipgloss.NewStyle().Foreground(c.Green).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(c.Red).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(c.Yellow).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(c.Cyan).Bold(true),

		Bold:     lipgloss.NewStyle().Bold(true),
		Italic:   lipgloss.NewStyle().Italic(true),
		Muted:    lipgloss.NewStyle().Faint(true),
		Selected: lipgloss.NewStyle().Background(c.SelectedBackground).Bold(true),

		TableHeader: lipgloss.NewStyle().Bold(true).Foreground(c.Blue),
		TableBorder: lipgloss.NewStyle().Foreground(c.Border),

		AlternateRows: name != "terminal",

		Highlight: lipgloss.NewStyle().Foreground(c.Orange).Bold(true),
		Accent:    lipgloss.NewStyle().Foreground(c.Violet).Bold(true),
	}
}

// RenderStatus renders text with the style named by status.
func (t *Theme) RenderStatus(status, text string) string {
	switch status {
	case "success":
		return t.Success.Render(text)
	case "error":
		return t.Error.Render(text)
	case "warning":
		return t.Warning.Render(text)
	case "info":
		return t.Info.Render(text)
	default:
		return text
	}
}
