package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"dlmanage/internal/slurm"
)

// entryLabel is the name shown for an entry: the account name for accounts
// and the user name for users.
func entryLabel(e slurm.Entry) string {
	if u, ok := e.(*slurm.User); ok {
		return u.User
	}
	return e.AccountName()
}

func buildTree(entries []slurm.Entry, label func(slurm.Entry) string) *tree.Tree {
	var node func(e slurm.Entry) any
	node = func(e slurm.Entry) any {
		children := e.Base().Children()
		if len(children) == 0 {
			return label(e)
		}
		t := tree.Root(label(e))
		for _, c := range children {
			t.Child(node(c))
		}
		return t
	}
	root := tree.New()
	for _, r := range slurm.Roots(entries) {
		root.Child(node(r))
	}
	return root
}

// RenderTree draws the accounting hierarchy for a terminal, accounts in
// bold and users plain.
func RenderTree(entries []slurm.Entry) string {
	label := func(e slurm.Entry) string {
		if _, ok := e.(*slurm.User); ok {
			return userStyle.Render(entryLabel(e))
		}
		return accountStyle.Render(entryLabel(e))
	}
	return buildTree(entries, label).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(treeStyle).
		String()
}

// treeLabels returns one unstyled label per entry, in listing order, with
// the tree branches drawn in front. A listing is in depth-first order, so
// the rendered lines line up with the entries. Should they not, the labels
// fall back to plain indentation.
func treeLabels(entries []slurm.Entry) []string {
	if len(entries) == 0 {
		return nil
	}
	rendered := buildTree(entries, entryLabel).Enumerator(tree.RoundedEnumerator).String()
	lines := strings.Split(rendered, "\n")
	if len(lines) == len(entries) {
		for i, line := range lines {
			lines[i] = strings.TrimRight(line, " ")
		}
		return lines
	}
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = strings.Repeat("  ", e.Base().NestingLevel) + entryLabel(e)
	}
	return labels
}

// plainWidth is the widest line of labels in terminal cells.
func plainWidth(labels []string) int {
	w := 0
	for _, l := range labels {
		w = max(w, lipgloss.Width(l))
	}
	return w
}
