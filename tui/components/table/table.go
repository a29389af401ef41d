// Package table renders the lipgloss tables used by the state and status
// commands.
package table

import (
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/grovetools/casemgmt/tui/theme"
)

// Options configures a styled table.
type Options struct {
	Bordered      bool
	AlternateRows bool
	// Selected is the data row to highlight, or -1 for none.
	Selected int
	Theme    *theme.Theme
}

// DefaultOptions returns the options used by NewStyledTable.
func DefaultOptions() Options {
	return Options{
		Bordered:      true,
		AlternateRows: theme.DefaultTheme.AlternateRows,
		Selected:      -1,
		Theme:         theme.DefaultTheme,
	}
}

// NewStyledTable creates a bordered table with the default styling.
func NewStyledTable(headers ...string) *ltable.Table {
	return NewStyledTableWithOptions(DefaultOptions(), headers...)
}

// NewStyledTableWithOptions creates a table with custom options.
func NewStyledTableWithOptions(opts Options, headers ...string) *ltable.Table {
	t := opts.Theme
	if t == nil {
		t = theme.DefaultTheme
	}

	tbl := ltable.New()
	if opts.Bordered {
		tbl = tbl.Border(lipgloss.RoundedBorder()).BorderStyle(t.TableBorder)
	} else {
		tbl = tbl.Border(lipgloss.HiddenBorder())
	}
	if len(headers) > 0 {
		tbl = tbl.Headers(headers...)
	}

	// Header cells are reported as ltable.HeaderRow; data rows count from 0.
	return tbl.StyleFunc(func(row, col int) lipgloss.Style {
		if row == ltable.HeaderRow {
			return t.TableHeader.Padding(0, 1)
		}
		style := lipgloss.NewStyle().Padding(0, 1)
		if row == opts.Selected {
			return style.Inherit(t.Selected)
		}
		if opts.AlternateRows && row%2 == 1 {
			style = style.Background(t.Colors.SubtleBackground)
		}
		return style
	})
}

// SimpleTable renders headers and rows with the default styling.
func SimpleTable(headers []string, rows [][]string) string {
	return NewStyledTable(headers...).Rows(rows...).String()
}

// SelectableTable renders rows with the row at selected highlighted.
func SelectableTable(headers []string, rows [][]string, selected int) string {
	opts := DefaultOptions()
	opts.Selected = selected
	return NewStyledTableWithOptions(opts, headers...).Rows(rows...).String()
}

// StatusTable renders label/value pairs without borders.
func StatusTable(items [][2]string) string {
	opts := DefaultOptions()
	opts.Bordered = false
	opts.AlternateRows = false
	tbl := NewStyledTableWithOptions(opts)
	for _, item := range items {
		tbl = tbl.Row(opts.Theme.Muted.Render(item[0]+":"), item[1])
	}
	return tbl.String()
}
