// Package tui is the interactive front-end: one table each for the
// accounting hierarchy, the scheduler's jobs and the compute nodes, with
// footer prompts for every change.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"dlmanage/internal/slurm"
)

// view identifies which table is shown.
type view int

const (
	viewAssociations view = iota
	viewJobs
	viewNodes
	viewCount
)

var viewNames = [viewCount]string{"Associations", "Jobs", "Nodes"}

// loadedMsg carries a complete reload of all three tables.
type loadedMsg struct {
	entries []slurm.Entry
	jobs    []*slurm.Job
	nodes   []*slurm.Node
	err     error
}

// actionMsg reports a finished change. On success done describes it and
// the tables are reloaded.
type actionMsg struct {
	done string
	err  error
}

// Model is the bubbletea model of the front-end.
type Model struct {
	client *slurm.Client
	ctx    context.Context
	keys   KeyMap
	help   help.Model
	now    func() time.Time

	view   view
	tables [viewCount]table.Model

	entries []slurm.Entry
	jobs    []*slurm.Job
	nodes   []*slurm.Node

	prompt  *prompt
	status  string
	failed  bool
	loading bool

	width  int
	height int
}

// New returns the front-end model. ctx bounds every tool invocation it
// starts.
func New(ctx context.Context, client *slurm.Client) Model {
	m := Model{
		client:  client,
		ctx:     ctx,
		keys:    DefaultKeyMap,
		help:    help.New(),
		now:     time.Now,
		loading: true,
	}
	columns := [viewCount][]table.Column{
		associationColumns(10),
		jobColumns(),
		nodeColumns(),
	}
	for v := range viewCount {
		m.tables[v] = table.New(
			table.WithColumns(columns[v]),
			table.WithFocused(true),
			table.WithHeight(20),
			table.WithStyles(tableStyles()),
		)
	}
	return m
}

// Run starts the front-end on the terminal and blocks until it quits.
func Run(ctx context.Context, client *slurm.Client) error {
	p := tea.NewProgram(New(ctx, client), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

// load fetches the hierarchy, the jobs and the nodes concurrently.
func (m Model) load() tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		var msg loadedMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			entries, err := client.Associations.All(gctx)
			msg.entries = entries
			return err
		})
		g.Go(func() error {
			jobs, err := client.Jobs.All(gctx)
			msg.jobs = jobs
			return err
		})
		g.Go(func() error {
			nodes, err := client.Nodes.All(gctx)
			msg.nodes = nodes
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

// run wraps fn as a command reporting an actionMsg.
func (m Model) run(done string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{done: done}
	}
}

func fail(err error) tea.Cmd {
	return func() tea.Msg { return actionMsg{err: err} }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.entries, m.jobs, m.nodes = msg.entries, msg.jobs, msg.nodes
		m.refreshRows()
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.status, m.failed = msg.done, false
		m.loading = true
		return m, m.load()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.prompt != nil {
		cmd, _ := m.prompt.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) setError(err error) {
	m.status, m.failed = err.Error(), true
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt != nil {
		switch {
		case msg.Type == tea.KeyCtrlC:
			return m, tea.Quit
		case key.Matches(msg, m.keys.Cancel):
			m.prompt = nil
			m.status, m.failed = "cancelled", false
			return m, nil
		}
		cmd, done := m.prompt.update(msg)
		if done {
			m.prompt = nil
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextView):
		m.view = (m.view + 1) % viewCount
		return m, nil
	case key.Matches(msg, m.keys.Associations):
		m.view = viewAssociations
		return m, nil
	case key.Matches(msg, m.keys.Jobs):
		m.view = viewJobs
		return m, nil
	case key.Matches(msg, m.keys.Nodes):
		m.view = viewNodes
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, m.load()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil
	}

	var cmd tea.Cmd
	handled := false
	switch m.view {
	case viewAssociations:
		cmd, handled = m.associationKey(msg)
	case viewJobs:
		cmd, handled = m.jobKey(msg)
	case viewNodes:
		cmd, handled = m.nodeKey(msg)
	}
	if handled {
		return m, cmd
	}
	m.tables[m.view], cmd = m.tables[m.view].Update(msg)
	return m, cmd
}

// ---------------------------------------------------------------------------
// Selection
// ---------------------------------------------------------------------------

func selected[T any](t table.Model, items []T) (T, bool) {
	var zero T
	i := t.Cursor()
	if i < 0 || i >= len(items) {
		return zero, false
	}
	return items[i], true
}

func (m Model) selectedEntry() (slurm.Entry, bool) {
	return selected(m.tables[viewAssociations], m.entries)
}

func (m Model) selectedJob() (*slurm.Job, bool) {
	return selected(m.tables[viewJobs], m.jobs)
}

func (m Model) selectedNode() (*slurm.Node, bool) {
	return selected(m.tables[viewNodes], m.nodes)
}

// ---------------------------------------------------------------------------
// Layout
// ---------------------------------------------------------------------------

func (m *Model) resize() {
	if m.height == 0 {
		return
	}
	// Header, blank line, status line and help.
	chrome := 3 + lipgloss.Height(m.help.View(m.keys.helpFor(m.view)))
	for v := range viewCount {
		m.tables[v].SetHeight(max(m.height-chrome, 3))
		m.tables[v].SetWidth(m.width)
	}
}

func (m *Model) refreshRows() {
	now := m.now()

	labels := treeLabels(m.entries)
	nameWidth := min(max(plainWidth(labels), 10), 48)
	rows := make([]table.Row, len(m.entries))
	for i, e := range m.entries {
		rows[i] = associationRow(e, labels[i])
	}
	m.tables[viewAssociations].SetColumns(associationColumns(nameWidth))
	m.setRows(viewAssociations, rows)

	rows = make([]table.Row, len(m.jobs))
	for i, j := range m.jobs {
		rows[i] = jobRow(j)
	}
	m.setRows(viewJobs, rows)

	rows = make([]table.Row, len(m.nodes))
	for i, n := range m.nodes {
		rows[i] = nodeRow(n, now)
	}
	m.setRows(viewNodes, rows)
}

func (m *Model) setRows(v view, rows []table.Row) {
	t := &m.tables[v]
	t.SetRows(rows)
	if t.Cursor() >= len(rows) {
		t.SetCursor(max(len(rows)-1, 0))
	}
}

func (m Model) View() string {
	var tabs []string
	for v := range viewCount {
		style := tabStyle
		if v == m.view {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(viewNames[v]))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, append([]string{titleStyle.Render("dlmanage")}, tabs...)...)

	var footer string
	switch {
	case m.prompt != nil:
		footer = m.prompt.view()
	case m.loading:
		footer = statusStyle.Render("loading…")
	case m.failed:
		footer = statusErrorStyle.Render(firstLine(m.status))
	default:
		footer = statusStyle.Render(m.status)
	}

	return strings.Join([]string{
		header,
		m.tables[m.view].View(),
		footer,
		m.help.View(m.keys.helpFor(m.view)),
	}, "\n")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

// errNoSelection is reported when a key needs a selected row.
var errNoSelection = errors.New("nothing selected")

func (m *Model) ask(submit func([]string) tea.Cmd, questions ...question) (tea.Cmd, bool) {
	m.prompt = newPrompt(submit, questions...)
	return textinput.Blink, true
}

func (m *Model) confirm(text string, action tea.Cmd) (tea.Cmd, bool) {
	m.prompt = newConfirm(text, action)
	return nil, true
}

func (m *Model) noSelection() (tea.Cmd, bool) {
	m.setError(errNoSelection)
	return nil, true
}
