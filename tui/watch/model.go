package watch

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/casemgmt/internal/daemon/store"
	"github.com/grovetools/casemgmt/pkg/daemon"
	"github.com/grovetools/casemgmt/pkg/models"
	"github.com/grovetools/casemgmt/tui/theme"
)

// Client is the part of daemon.Client the view drives.
type Client interface {
	SetSelection(ctx context.Context, field daemon.Field, id *int64) (*daemon.SelectionResponse, error)
	SetEnvironment(ctx context.Context, env models.Environment) (*daemon.EnvironmentResponse, error)
	Refresh(ctx context.Context) error
}

type keyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Select  key.Binding
	Clear   key.Binding
	Env     key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Select, k.Clear, k.Env, k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev}, {k.Select, k.Clear}, {k.Env, k.Refresh, k.Quit}}
}

var keys = keyMap{
	Next:    key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next list")),
	Prev:    key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "previous list")),
	Select:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select")),
	Clear:   key.NewBinding(key.WithKeys("backspace", "x"), key.WithHelp("x", "clear selection")),
	Env:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "toggle live/stage")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// updateMsg carries one message from the state stream.
type updateMsg daemon.StateUpdate

// streamClosedMsg reports that the stream ended.
type streamClosedMsg struct{}

// resultMsg reports the outcome of an action.
type resultMsg struct {
	status string
	err    error
}

// Model is the bubbletea model of the watch view.
type Model struct {
	ctx     context.Context
	client  Client
	updates <-chan daemon.StateUpdate

	state  *store.State
	lists  []List
	active int

	table  table.Model
	help   help.Model
	theme  *theme.Theme
	width  int
	height int

	status string
	err    error
	closed bool
}

// New creates the view. updates is usually client.StreamState(ctx).
func New(ctx context.Context, client Client, updates <-chan daemon.StateUpdate) Model {
	t := theme.DefaultTheme

	tbl := table.New(table.WithFocused(true), table.WithHeight(15))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(t.Colors.Blue).Bold(true).
		BorderStyle(lipgloss.NormalBorder()).BorderForeground(t.Colors.Border).BorderBottom(true)
	styles.Selected = styles.Selected.Background(t.Colors.SelectedBackground).Foreground(lipgloss.NoColor{})
	tbl.SetStyles(styles)

	return Model{
		ctx:     ctx,
		client:  client,
		updates: updates,
		table:   tbl,
		help:    help.New(),
		theme:   t,
		status:  "connecting…",
	}
}

// Init starts reading the stream.
func (m Model) Init() tea.Cmd {
	return m.wait()
}

func (m Model) wait() tea.Cmd {
	ch := m.updates
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return updateMsg(u)
	}
}

// Update handles stream messages, key presses and action results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if h := msg.Height - 8; h > 3 {
			m.table.SetHeight(h)
		}
		m.rebuild()
		return m, nil

	case updateMsg:
		if msg.State != nil {
			m.state = msg.State
			m.rebuild()
		}
		m.status = describe(daemon.StateUpdate(msg))
		return m, m.wait()

	case streamClosedMsg:
		m.closed = true
		m.status = "stream closed"
		return m, nil

	case resultMsg:
		m.err = msg.err
		if msg.err == nil && msg.status != "" {
			m.status = msg.status
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Next):
			m.active = (m.active + 1) % len(m.tabs())
			m.rebuild()
			return m, nil
		case key.Matches(msg, keys.Prev):
			n := len(m.tabs())
			m.active = (m.active + n - 1) % n
			m.rebuild()
			return m, nil
		case key.Matches(msg, keys.Select):
			return m, m.selectCurrent()
		case key.Matches(msg, keys.Clear):
			return m, m.setSelection(nil)
		case key.Matches(msg, keys.Env):
			return m, m.toggleEnvironment()
		case key.Matches(msg, keys.Refresh):
			return m, m.refresh()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// tabs returns the lists, or empty placeholders before the first update.
func (m Model) tabs() []List {
	if m.lists != nil {
		return m.lists
	}
	return Lists(store.State{})
}

// rebuild reloads the table from the active list, keeping the cursor on
// the selected row when there is one.
func (m *Model) rebuild() {
	if m.state == nil {
		return
	}
	m.lists = Lists(*m.state)
	if m.active >= len(m.lists) {
		m.active = 0
	}
	l := m.lists[m.active]

	cols := make([]table.Column, len(l.Headers))
	widths := columnWidths(l, m.width)
	for i, h := range l.Headers {
		cols[i] = table.Column{Title: h, Width: widths[i]}
	}
	rows := make([]table.Row, len(l.Rows))
	for i, r := range l.Rows {
		rows[i] = table.Row(r)
	}

	// Rows must shrink before the columns change so the table never renders
	// a row wider than its columns.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if l.Selected >= 0 {
		m.table.SetCursor(l.Selected)
	} else if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
}

func columnWidths(l List, total int) []int {
	widths := make([]int, len(l.Headers))
	for i, h := range l.Headers {
		widths[i] = len(h)
	}
	for _, r := range l.Rows {
		for i, c := range r {
			if i < len(widths) && len(c) > widths[i] {
				widths[i] = len(c)
			}
		}
	}
	if total <= 0 {
		total = 100
	}
	// The last column takes whatever is left.
	used := 0
	for i := 0; i < len(widths)-1; i++ {
		if widths[i] > 30 {
			widths[i] = 30
		}
		used += widths[i] + 2
	}
	if last := total - used - 4; last > 10 && widths[len(widths)-1] > last {
		widths[len(widths)-1] = last
	}
	return widths
}

func (m Model) selectCurrent() tea.Cmd {
	if m.lists == nil || len(m.lists[m.active].IDs) == 0 {
		return nil
	}
	cur := m.table.Cursor()
	ids := m.lists[m.active].IDs
	if cur < 0 || cur >= len(ids) {
		return nil
	}
	id := ids[cur]
	return m.setSelection(&id)
}

func (m Model) setSelection(id *int64) tea.Cmd {
	if m.lists == nil {
		return nil
	}
	field := m.lists[m.active].Field
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		resp, err := client.SetSelection(ctx, field, id)
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{status: fmt.Sprintf("%s = %s", field, FormatRef(resp.ID))}
	}
}

func (m Model) toggleEnvironment() tea.Cmd {
	next := models.Live
	if m.state != nil && m.state.IsLiveAPI {
		next = models.Stage
	}
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		resp, err := client.SetEnvironment(ctx, next)
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{status: "environment " + resp.Environment.String()}
	}
}

func (m Model) refresh() tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		if err := client.Refresh(ctx); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{status: "refresh requested"}
	}
}

// describe summarizes an update for the status line.
func describe(u daemon.StateUpdate) string {
	switch {
	case u.Selection != nil:
		return fmt.Sprintf("%s: %s → %s", u.Selection.Field, FormatRef(u.Selection.Previous), FormatRef(u.Selection.Current))
	case u.Environment != nil:
		return fmt.Sprintf("environment: %s → %s", u.Environment.Previous, u.Environment.Current)
	case u.ConfigFile != "":
		return "config reloaded: " + u.ConfigFile
	case u.Scanned > 0:
		return fmt.Sprintf("%s: %d records", u.UpdateType, u.Scanned)
	}
	return u.UpdateType
}

// View renders the environment, the list tabs, the table and the footer.
func (m Model) View() string {
	t := m.theme
	var b strings.Builder

	env := "stage"
	envStyle := t.Info
	if m.state != nil && m.state.IsLiveAPI {
		env = "live"
		envStyle = t.Warning
	}
	b.WriteString(t.Header.Render("casemgmt") + "  " + envStyle.Render(env))
	if m.state != nil {
		flags := []string{}
		if m.state.HasNewDataCommand {
			flags = append(flags, "new data command")
		}
		if m.state.HasDraggedPayload {
			flags = append(flags, "dragged payload")
		}
		if m.state.ActionModal.Show && m.state.ActionModal.Action != nil {
			flags = append(flags, "modal: "+m.state.ActionModal.Action.String())
		}
		if len(flags) > 0 {
			b.WriteString("  " + t.Muted.Render(strings.Join(flags, " · ")))
		}
	}
	b.WriteString("\n\n")

	var tabs []string
	for i, l := range m.tabs() {
		label := fmt.Sprintf("%s (%d)", l.Title, len(l.Rows))
		if i == m.active {
			tabs = append(tabs, t.Highlight.Render(label))
		} else {
			tabs = append(tabs, t.Muted.Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, "  ") + "\n\n")

	if m.state == nil {
		b.WriteString(t.Muted.Render("waiting for state…") + "\n")
	} else {
		b.WriteString(m.table.View() + "\n")
	}

	status := m.status
	if m.err != nil {
		status = t.Error.Render(m.err.Error())
	} else if m.closed {
		status = t.Warning.Render(status)
	}
	b.WriteString("\n" + status + "\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}
