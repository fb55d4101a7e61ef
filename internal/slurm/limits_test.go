package slurm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitTree(t *testing.T) []Entry {
	t.Helper()
	entries, err := BuildHierarchy([]Fields{
		{"account": "root"},
		{"account": " physics", "grp_tres": "cpu=100,gres/gpu=4"},
		{"account": "  theory", "grp_tres": "cpu=200"},
		{"account": "   theory", "user": "alice", "grp_tres": "cpu=50"},
		{"account": "   theory", "user": "bob", "grp_tres": "cpu=300,gres/gpu=8"},
		{"account": "  physics", "user": "carol"},
		{"account": " open"},
		{"account": "  open", "user": "dave"},
	})
	require.NoError(t, err)
	return entries
}

func TestBottleneck(t *testing.T) {
	entries := limitTree(t)
	physics, theory, alice, bob, carol, dave := entries[1], entries[2], entries[3], entries[4], entries[5], entries[7]

	assert.Same(t, physics, Bottleneck(theory, CPULimit))
	assert.Same(t, alice, Bottleneck(alice, CPULimit), "own limit is the lowest")
	assert.Same(t, physics, Bottleneck(bob, CPULimit))
	assert.Same(t, physics, Bottleneck(carol, CPULimit))
	assert.Same(t, dave, Bottleneck(dave, CPULimit), "nothing limits dave")
	assert.Same(t, physics, Bottleneck(bob, GPULimit))
}

func TestBottleneckHint(t *testing.T) {
	entries := limitTree(t)
	tests := []struct {
		name        string
		entry       Entry
		limit       Limit
		hint        string
		placeholder string
	}{
		{"own lowest", entries[3], CPULimit, "", "∞"},
		{"shadowed", entries[4], CPULimit, "shadowed by physics(100)", "∞"},
		{"shadowed gpus", entries[4], GPULimit, "shadowed by physics(4)", "∞"},
		{"inherited", entries[5], CPULimit, "", "100 shared in <physics>"},
		{"inherited gpus", entries[3], GPULimit, "", "4 shared in <physics>"},
		{"unlimited", entries[7], CPULimit, "", "∞"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hint, placeholder := BottleneckHint(tc.entry, tc.limit)
			assert.Equal(t, tc.hint, hint)
			assert.Equal(t, tc.placeholder, placeholder)
		})
	}
}

func TestBottleneckHintSharedPool(t *testing.T) {
	entries, err := BuildHierarchy([]Fields{
		{"account": "root", "grp_tres": "cpu=10"},
		{"account": " root", "user": "erin", "grp_tres": "cpu=10"},
	})
	require.NoError(t, err)

	hint, _ := BottleneckHint(entries[1], CPULimit)
	assert.Equal(t, "", hint, "an equal ancestor is not lower")

	entries, err = BuildHierarchy([]Fields{
		{"account": "root", "grp_tres": "cpu=10"},
		{"account": " lab", "grp_tres": "cpu=20"},
		{"account": "  lab", "user": "erin", "grp_tres": "cpu=5"},
	})
	require.NoError(t, err)
	hint, _ = BottleneckHint(entries[1], CPULimit)
	assert.Equal(t, "shadowed by root(10)", hint)
}

func TestMaxCPUsRoundTrip(t *testing.T) {
	a := &Association{GrpTRES: "mem=4G"}
	a.SetMaxCPUs("16")
	a.SetMaxGPUs("2")
	assert.Equal(t, "mem=4G,cpu=16,gres/gpu=2", a.GrpTRES)
	assert.Equal(t, "16", a.MaxCPUs())
	assert.Equal(t, "2", a.MaxGPUs())

	a.SetMaxGPUs("")
	assert.Equal(t, NoLimit, a.MaxGPUs())
}
