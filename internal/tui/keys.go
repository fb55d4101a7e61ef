package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings of the front-end. Bindings of different
// views may share keys; only the bindings of the active view are matched.
type KeyMap struct {
	// Global.
	NextView     key.Binding
	Associations key.Binding
	Jobs         key.Binding
	Nodes        key.Binding
	Reload       key.Binding
	Help         key.Binding
	Quit         key.Binding
	Cancel       key.Binding // Abort the footer prompt.

	// Associations view.
	AddAccount key.Binding
	AddUser    key.Binding
	Delete     key.Binding
	EditCPUs   key.Binding
	EditGPUs   key.Binding
	EditWall   key.Binding
	Rename     key.Binding
	Move       key.Binding

	// Jobs view.
	CancelJob    key.Binding
	KillJob      key.Binding
	HoldJob      key.Binding
	ReleaseJob   key.Binding
	JobCPUs      key.Binding
	JobGPUs      key.Binding
	JobTimeLimit key.Binding

	// Nodes view.
	NodeState   key.Binding
	Reboot      key.Binding
	ForceReboot key.Binding
}

// DefaultKeyMap is the built-in key binding set. It avoids the keys the
// table uses for movement (j, k, b, f, u, d, g, G).
var DefaultKeyMap = KeyMap{
	NextView: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next view"),
	),
	Associations: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "associations"),
	),
	Jobs: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "jobs"),
	),
	Nodes: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "nodes"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r", "f5"),
		key.WithHelp("r", "reload"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),

	AddAccount: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add account"),
	),
	AddUser: key.NewBinding(
		key.WithKeys("A"),
		key.WithHelp("A", "add user"),
	),
	Delete: key.NewBinding(
		key.WithKeys("x", "delete"),
		key.WithHelp("x", "delete"),
	),
	EditCPUs: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "max cpus"),
	),
	EditGPUs: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "max gpus"),
	),
	EditWall: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "wall time"),
	),
	Rename: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "rename user"),
	),
	Move: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "move"),
	),

	CancelJob: key.NewBinding(
		key.WithKeys("x", "delete"),
		key.WithHelp("x", "cancel"),
	),
	KillJob: key.NewBinding(
		key.WithKeys("X"),
		key.WithHelp("X", "kill"),
	),
	HoldJob: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "hold"),
	),
	ReleaseJob: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "release"),
	),
	JobCPUs: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "cpus"),
	),
	JobGPUs: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "gpus"),
	),
	JobTimeLimit: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "time limit"),
	),

	NodeState: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "set state"),
	),
	Reboot: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "reboot"),
	),
	ForceReboot: key.NewBinding(
		key.WithKeys("F"),
		key.WithHelp("F", "reboot asap"),
	),
}

// viewHelp adapts the bindings of one view to help.KeyMap.
type viewHelp struct {
	short []key.Binding
	full  [][]key.Binding
}

func (h viewHelp) ShortHelp() []key.Binding  { return h.short }
func (h viewHelp) FullHelp() [][]key.Binding { return h.full }

func (k KeyMap) helpFor(v view) viewHelp {
	global := []key.Binding{k.NextView, k.Associations, k.Jobs, k.Nodes, k.Reload, k.Help, k.Quit}
	var local []key.Binding
	switch v {
	case viewAssociations:
		local = []key.Binding{k.AddAccount, k.AddUser, k.Delete, k.EditCPUs, k.EditGPUs, k.EditWall, k.Rename, k.Move}
	case viewJobs:
		local = []key.Binding{k.CancelJob, k.KillJob, k.HoldJob, k.ReleaseJob, k.JobCPUs, k.JobGPUs, k.JobTimeLimit}
	case viewNodes:
		local = []key.Binding{k.NodeState, k.Reboot, k.ForceReboot}
	}
	short := append(append([]key.Binding{}, local...), k.Help, k.Quit)
	return viewHelp{short: short, full: [][]key.Binding{local, global}}
}
