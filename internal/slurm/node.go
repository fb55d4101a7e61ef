package slurm

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// NodeStates are the states a node can be set to.
var NodeStates = []string{"RESUME", "UNDRAIN", "DRAIN", "DOWN"}

// bootTimeLayout is how the control tool prints timestamps.
const bootTimeLayout = "2006-01-02T15:04:05"

// Node is a compute node.
type Node struct {
	NodeName  string `slurm:"node_name,primarykey"`
	State     string `slurm:"state,readonly"`
	Reason    string `slurm:"reason,readonly"`
	CPUAlloc  string `slurm:"cpu_alloc,readonly"`
	CPUTot    string `slurm:"cpu_tot,readonly"`
	AllocTRES string `slurm:"alloc_tres,readonly"`
	CfgTRES   string `slurm:"cfg_tres,readonly"`
	BootTime  string `slurm:"boot_time,readonly"`
}

func (*Node) ObjectType() string     { return "Node" }
func (*Node) QueryOptions() []string { return nil }

// CPUAllocation returns the allocated and total cpu counts.
func (n *Node) CPUAllocation() (allocated, total string) {
	return orZero(n.CPUAlloc), orZero(n.CPUTot)
}

// GPUAllocation returns the allocated and configured gpu counts.
func (n *Node) GPUAllocation() (allocated, total string) {
	a, _ := GresValue(n.AllocTRES, "gres/gpu")
	t, _ := GresValue(n.CfgTRES, "gres/gpu")
	return orZero(a), orZero(t)
}

// Uptime returns how long the node has been up at now. It is zero when the
// boot time is unknown.
func (n *Node) Uptime(now time.Time) time.Duration {
	if n.BootTime == "" {
		return 0
	}
	boot, err := time.ParseInLocation(bootTimeLayout, n.BootTime, now.Location())
	if err != nil || boot.After(now) {
		return 0
	}
	return now.Sub(boot)
}

// BootedAt returns the parsed boot time.
func (n *Node) BootedAt(loc *time.Location) (time.Time, bool) {
	boot, err := time.ParseInLocation(bootTimeLayout, n.BootTime, loc)
	return boot, err == nil
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// RequiresReason reports whether moving a node to state needs a reason.
func RequiresReason(state string) bool {
	return state == "DOWN" || state == "DRAIN"
}

// Nodes acts on compute nodes.
type Nodes struct {
	*ControlRepository[Node, *Node]
}

// SetState moves the node named name to state. DOWN and DRAIN need a
// reason.
func (r *Nodes) SetState(ctx context.Context, name, state, reason string) error {
	if !slices.Contains(NodeStates, state) {
		return &ValidationError{Field: "state", Reason: fmt.Sprintf("unknown node state %q", state)}
	}
	if RequiresReason(state) && reason == "" {
		return &ValidationError{Field: "reason", Reason: fmt.Sprintf("a reason is required to set a node %s", state)}
	}
	updates := Fields{"state": state}
	if reason != "" {
		updates["reason"] = reason
	}
	return r.update(ctx, name, updates)
}

// Reboot schedules a reboot of the node named name. With force the node is
// drained and rebooted as soon as possible instead of when it becomes idle.
func (r *Nodes) Reboot(ctx context.Context, name, reason string, force bool) error {
	var args []string
	if force {
		args = append(args, "ASAP")
	}
	if reason != "" {
		args = append(args, "Reason="+reason)
	}
	args = append(args, name)
	return r.controller.Action(ctx, (*Node)(nil).ObjectType(), "reboot", args...)
}
