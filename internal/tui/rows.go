package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/dustin/go-humanize"

	"dlmanage/internal/slurm"
)

const unlimited = "∞"

func associationColumns(nameWidth int) []table.Column {
	return []table.Column{
		{Title: "Name", Width: nameWidth},
		{Title: "Max CPUs", Width: 28},
		{Title: "Max GPUs", Width: 28},
		{Title: "Wall", Width: 12},
		{Title: "QOS", Width: 12},
		{Title: "Home", Width: 28},
	}
}

func jobColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 12},
		{Title: "Name", Width: 20},
		{Title: "User", Width: 10},
		{Title: "State", Width: 10},
		{Title: "Reason", Width: 14},
		{Title: "Time", Width: 22},
		{Title: "CPUs", Width: 5},
		{Title: "Mem", Width: 7},
		{Title: "GPUs", Width: 5},
		{Title: "Nodes", Width: 16},
	}
}

func nodeColumns() []table.Column {
	return []table.Column{
		{Title: "Node", Width: 14},
		{Title: "State", Width: 14},
		{Title: "CPUs", Width: 9},
		{Title: "GPUs", Width: 7},
		{Title: "Uptime", Width: 12},
		{Title: "Reason", Width: 30},
	}
}

func associationRow(e slurm.Entry, label string) table.Row {
	base := e.Base()
	home := ""
	if u, ok := e.(*slurm.User); ok {
		home = u.HomeDirectory()
	}
	return table.Row{
		label,
		limitCell(e, slurm.CPULimit),
		limitCell(e, slurm.GPULimit),
		orUnlimited(base.GrpWall),
		base.QOS,
		home,
	}
}

// limitCell shows the entry's own limit with how its ancestors constrain
// it, or the inherited limit when it has none.
func limitCell(e slurm.Entry, limit slurm.Limit) string {
	own := limit(e.Base())
	hint, placeholder := slurm.BottleneckHint(e, limit)
	switch {
	case own == "":
		return placeholder
	case own == slurm.NoLimit && hint != "":
		return hint
	case own == slurm.NoLimit:
		return unlimited
	case hint != "":
		return own + ", " + hint
	}
	return own
}

func orUnlimited(v string) string {
	if v == "" || v == slurm.NoLimit {
		return unlimited
	}
	return v
}

func jobRow(j *slurm.Job) table.Row {
	elapsed := j.RunTime
	if elapsed == "" {
		elapsed = "-"
	}
	return table.Row{
		j.IDWithArray(),
		j.JobName,
		j.Username(),
		j.JobState,
		j.Reason,
		elapsed + " / " + orUnlimited(j.TimeLimit),
		j.CPUs(),
		j.Memory(),
		j.GPUs(),
		j.NodeList,
	}
}

func nodeRow(n *slurm.Node, now time.Time) table.Row {
	cpuAlloc, cpuTotal := n.CPUAllocation()
	gpuAlloc, gpuTotal := n.GPUAllocation()
	return table.Row{
		n.NodeName,
		n.State,
		cpuAlloc + "/" + cpuTotal,
		gpuAlloc + "/" + gpuTotal,
		FormatUptime(n, now),
		n.Reason,
	}
}

// FormatUptime renders how long n has been up, e.g. "3 days", or "-" when
// its boot time is unknown.
func FormatUptime(n *slurm.Node, now time.Time) string {
	if n.Uptime(now) == 0 {
		return "-"
	}
	boot, _ := n.BootedAt(now.Location())
	return strings.TrimSpace(humanize.RelTime(boot, now, "", ""))
}
