package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"dlmanage/internal/slurm"
)

// Actions work on copies of the selected records: the commands run outside
// the update loop, and the originals are still rendered until the reload.

// ---------------------------------------------------------------------------
// Associations
// ---------------------------------------------------------------------------

func (m *Model) associationKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	k := m.keys
	if !key.Matches(msg, k.AddAccount, k.AddUser, k.Delete, k.EditCPUs, k.EditGPUs, k.EditWall, k.Rename, k.Move) {
		return nil, false
	}
	client := m.client
	sel, ok := m.selectedEntry()

	// Adding only needs a place in the tree, which defaults to root.
	switch {
	case key.Matches(msg, k.AddAccount):
		parent := "root"
		if a := slurm.NearestAccount(sel); a != nil {
			parent = a.Account
		}
		return m.ask(func(answers []string) tea.Cmd {
			name := answers[0]
			if name == "" {
				return fail(&slurm.ValidationError{Field: "account", Reason: "name must not be empty"})
			}
			return m.run(fmt.Sprintf("added account %s under %s", name, parent), func(ctx context.Context) error {
				account, err := client.Accounts.Create(ctx, slurm.Fields{"account": name})
				if err != nil {
					return err
				}
				return client.Accounts.SetParent(ctx, account, parent, slurm.Tolerant())
			})
		}, question{label: "New account under " + parent, placeholder: "account name"})

	case key.Matches(msg, k.AddUser):
		account := "root"
		if a := slurm.NearestAccount(sel); a != nil {
			account = a.Account
		}
		return m.ask(func(answers []string) tea.Cmd {
			name := answers[0]
			if name == "" {
				return fail(&slurm.ValidationError{Field: "user", Reason: "name must not be empty"})
			}
			return m.run(fmt.Sprintf("added user %s to %s", name, account), func(ctx context.Context) error {
				_, err := client.Users.Create(ctx, slurm.Fields{"user": name, "account": account})
				return err
			})
		}, question{label: "New user in " + account, placeholder: "user name"})
	}

	if !ok {
		return m.noSelection()
	}

	switch {
	case key.Matches(msg, k.Delete):
		return m.confirm(fmt.Sprintf("Delete %s?", sel), m.run(fmt.Sprintf("deleted %s", sel), func(ctx context.Context) error {
			return deleteEntry(ctx, client, sel)
		}))

	case key.Matches(msg, k.EditCPUs):
		return m.ask(func(answers []string) tea.Cmd {
			if err := validateCount("max cpus", answers[0]); err != nil {
				return fail(err)
			}
			return m.run(fmt.Sprintf("set max cpus of %s", sel), func(ctx context.Context) error {
				return saveEntry(ctx, client, sel, func(a *slurm.Association) { a.SetMaxCPUs(answers[0]) })
			})
		}, question{label: "Max CPUs of " + entryLabel(sel), placeholder: "empty for no limit", initial: noLimitBlank(sel.Base().MaxCPUs())})

	case key.Matches(msg, k.EditGPUs):
		return m.ask(func(answers []string) tea.Cmd {
			if err := validateCount("max gpus", answers[0]); err != nil {
				return fail(err)
			}
			return m.run(fmt.Sprintf("set max gpus of %s", sel), func(ctx context.Context) error {
				return saveEntry(ctx, client, sel, func(a *slurm.Association) { a.SetMaxGPUs(answers[0]) })
			})
		}, question{label: "Max GPUs of " + entryLabel(sel), placeholder: "empty for no limit", initial: noLimitBlank(sel.Base().MaxGPUs())})

	case key.Matches(msg, k.EditWall):
		return m.ask(func(answers []string) tea.Cmd {
			wall := answers[0]
			if wall == "" {
				wall = slurm.NoLimit
			}
			return m.run(fmt.Sprintf("set wall time of %s", sel), func(ctx context.Context) error {
				return saveEntry(ctx, client, sel, func(a *slurm.Association) { a.GrpWall = wall })
			})
		}, question{label: "Wall time of " + entryLabel(sel), placeholder: "[days-]hours:minutes:seconds", initial: noLimitBlank(sel.Base().GrpWall)})

	case key.Matches(msg, k.Rename):
		user, isUser := sel.(*slurm.User)
		if !isUser {
			m.setError(errors.New("only users can be renamed"))
			return nil, true
		}
		return m.ask(func(answers []string) tea.Cmd {
			name := answers[0]
			return m.run(fmt.Sprintf("renamed %s to %s", user.User, name), func(ctx context.Context) error {
				c := *user
				return client.Users.SetNewUsername(ctx, &c, name)
			})
		}, question{label: "New name of " + user.User, initial: user.User})

	case key.Matches(msg, k.Move):
		switch rec := sel.(type) {
		case *slurm.Account:
			return m.ask(func(answers []string) tea.Cmd {
				parent := answers[0]
				return m.run(fmt.Sprintf("moved %s under %s", rec.Account, parent), func(ctx context.Context) error {
					if err := requireAccount(ctx, client, parent); err != nil {
						return err
					}
					c := *rec
					return client.Accounts.SetParent(ctx, &c, parent)
				})
			}, question{label: "New parent of " + rec.Account, initial: rec.ParentName})
		case *slurm.User:
			return m.ask(func(answers []string) tea.Cmd {
				account := answers[0]
				return m.run(fmt.Sprintf("moved %s to %s", rec.User, account), func(ctx context.Context) error {
					if err := requireAccount(ctx, client, account); err != nil {
						return err
					}
					c := *rec
					return client.Users.SetAccount(ctx, &c, account)
				})
			}, question{label: "New account of " + rec.User, initial: rec.Account})
		}
	}
	return nil, false
}

// requireAccount fails unless an account called name exists.
func requireAccount(ctx context.Context, client *slurm.Client, name string) error {
	_, err := client.Accounts.Get(ctx, slurm.Fields{"account": name})
	if slurm.IsNotFound(err) {
		return &slurm.ValidationError{Field: "account", Reason: fmt.Sprintf("no account named %q", name)}
	}
	return err
}

func deleteEntry(ctx context.Context, client *slurm.Client, e slurm.Entry) error {
	var deleted bool
	var err error
	switch rec := e.(type) {
	case *slurm.Account:
		c := *rec
		deleted, err = client.Accounts.Delete(ctx, &c)
	case *slurm.User:
		c := *rec
		deleted, err = client.Users.Delete(ctx, &c)
	}
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%s was not deleted", e)
	}
	return nil
}

// saveEntry applies mutate to a copy of e and saves it. An account limit
// is set on every association of the account.
func saveEntry(ctx context.Context, client *slurm.Client, e slurm.Entry, mutate func(*slurm.Association)) error {
	switch rec := e.(type) {
	case *slurm.Account:
		c := *rec
		mutate(&c.Association)
		_, err := client.Accounts.Save(ctx, &c, slurm.AllowMultiple())
		return err
	case *slurm.User:
		c := *rec
		mutate(&c.Association)
		_, err := client.Users.Save(ctx, &c)
		return err
	}
	return fmt.Errorf("cannot save %s", e)
}

// noLimitBlank shows "no limit" as an empty input.
func noLimitBlank(v string) string {
	if v == slurm.NoLimit {
		return ""
	}
	return v
}

// validateCount accepts an empty value or a non-negative integer.
func validateCount(field, v string) error {
	if v == "" {
		return nil
	}
	if n, err := strconv.Atoi(v); err != nil || n < 0 {
		return &slurm.ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a non-negative number", v)}
	}
	return nil
}

func parseCount(field, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &slurm.ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a non-negative number", v)}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Jobs
// ---------------------------------------------------------------------------

func (m *Model) jobKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	k := m.keys
	if !key.Matches(msg, k.CancelJob, k.KillJob, k.HoldJob, k.ReleaseJob, k.JobCPUs, k.JobGPUs, k.JobTimeLimit) {
		return nil, false
	}
	job, ok := m.selectedJob()
	if !ok {
		return m.noSelection()
	}
	jobs := m.client.Jobs
	id := job.IDWithArray()
	c := *job

	switch {
	case key.Matches(msg, k.CancelJob):
		return m.confirm("Cancel job "+id+"?", m.run("cancelled job "+id, func(ctx context.Context) error {
			return jobs.Cancel(ctx, &c)
		}))
	case key.Matches(msg, k.KillJob):
		return m.confirm("Kill job "+id+"?", m.run("killed job "+id, func(ctx context.Context) error {
			return jobs.Kill(ctx, &c)
		}))
	case key.Matches(msg, k.HoldJob):
		return m.run("held job "+id, func(ctx context.Context) error { return jobs.Hold(ctx, &c) }), true
	case key.Matches(msg, k.ReleaseJob):
		return m.run("released job "+id, func(ctx context.Context) error { return jobs.Release(ctx, &c) }), true
	case key.Matches(msg, k.JobCPUs):
		return m.ask(func(answers []string) tea.Cmd {
			n, err := parseCount("cpus", answers[0])
			if err != nil {
				return fail(err)
			}
			return m.run(fmt.Sprintf("set cpus of job %s to %d", id, n), func(ctx context.Context) error {
				return jobs.SetCPUs(ctx, &c, n)
			})
		}, question{label: "CPUs of job " + id, initial: job.CPUs()})
	case key.Matches(msg, k.JobGPUs):
		return m.ask(func(answers []string) tea.Cmd {
			n, err := parseCount("gpus", answers[0])
			if err != nil {
				return fail(err)
			}
			return m.run(fmt.Sprintf("set gpus of job %s to %d", id, n), func(ctx context.Context) error {
				return jobs.SetGPUs(ctx, &c, n)
			})
		}, question{label: "GPUs per node of job " + id, initial: job.GPUs()})
	case key.Matches(msg, k.JobTimeLimit):
		return m.ask(func(answers []string) tea.Cmd {
			limit := answers[0]
			return m.run("set time limit of job "+id+" to "+limit, func(ctx context.Context) error {
				return jobs.SetTimeLimit(ctx, &c, limit)
			})
		}, question{label: "Time limit of job " + id, placeholder: "[days-]hours:minutes:seconds", initial: job.TimeLimit})
	}
	return nil, false
}

// ---------------------------------------------------------------------------
// Nodes
// ---------------------------------------------------------------------------

func (m *Model) nodeKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	k := m.keys
	if !key.Matches(msg, k.NodeState, k.Reboot, k.ForceReboot) {
		return nil, false
	}
	node, ok := m.selectedNode()
	if !ok {
		return m.noSelection()
	}
	nodes := m.client.Nodes
	name := node.NodeName

	switch {
	case key.Matches(msg, k.NodeState):
		return m.ask(func(answers []string) tea.Cmd {
			state, reason := strings.ToUpper(answers[0]), answers[1]
			return m.run(fmt.Sprintf("set %s to %s", name, state), func(ctx context.Context) error {
				return nodes.SetState(ctx, name, state, reason)
			})
		},
			question{label: "State of " + name, placeholder: strings.Join(slurm.NodeStates, ", ")},
			question{label: "Reason", placeholder: "required for DOWN and DRAIN", initial: node.Reason},
		)
	case key.Matches(msg, k.Reboot), key.Matches(msg, k.ForceReboot):
		force := key.Matches(msg, k.ForceReboot)
		label := "Reboot reason for " + name
		if force {
			label = "Reboot ASAP reason for " + name
		}
		return m.ask(func(answers []string) tea.Cmd {
			reason := answers[0]
			return m.run("scheduled reboot of "+name, func(ctx context.Context) error {
				return nodes.Reboot(ctx, name, reason, force)
			})
		}, question{label: label, placeholder: "optional"})
	}
	return nil, false
}
