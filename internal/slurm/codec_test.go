package slurm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExternalName(t *testing.T) {
	tests := []struct {
		internal string
		want     string
	}{
		{"account", "Account"},
		{"grp_tres_mins", "GrpTresMins"},
		{"parent_id", "ParentId"},
		{"new_name", "NewName"},
		{"max_wall_duration_per_job", "MaxWallDurationPerJob"},
		{"max_2x", "Max2x"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ExternalName(tc.internal), tc.internal)
	}
}

func TestInternalName(t *testing.T) {
	tests := []struct {
		external string
		want     string
	}{
		{"Account", "account"},
		{"ParentID", "parent_id"},
		{"GrpTRESMins", "grp_tresmins"},
		{"GrpTresMins", "grp_tres_mins"},
		{"JobId", "job_id"},
		{"TRES", "tres"},
		{"Max2x", "max_2x"},
		{"Max2X", "max_2_x"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, InternalName(tc.external), tc.external)
	}
}

func TestNameTranslationRoundTrips(t *testing.T) {
	for _, name := range []string{
		"Account", "ParentID", "GrpTRESMins", "MaxTRESPerNode", "DefaultAccount",
		"NewName", "TRES", "Max2X", "a", "id",
		"a_1b", "x_2x", "cpu2x", "gres_1_gpu",
	} {
		internal := InternalName(name)
		assert.Equal(t, internal, InternalName(ExternalName(internal)), name)
	}
}

func TestParseParsableRowsNormalizesSentinels(t *testing.T) {
	fields := []string{"account", "grp_wall", "max_jobs", "grp_tres", "max_wall_duration_per_job", "user"}
	output := "root|0-00:00:00|0|cpu=4|00:00:00|\n child|1-00:00:00|10||2:00:00|alice\n"

	got := ParseParsableRows(output, fields)
	require.Len(t, got, 2)

	assert.Equal(t, Fields{
		"account": "root", "grp_wall": "", "max_jobs": "", "grp_tres": "cpu=4",
		"max_wall_duration_per_job": "", "user": "",
	}, got[0])
	assert.Equal(t, " child", got[1]["account"], "leading spaces carry the nesting level")
	assert.Equal(t, "1-00:00:00", got[1]["grp_wall"])
	assert.Equal(t, "10", got[1]["max_jobs"])
	assert.Equal(t, "alice", got[1]["user"])
}

func TestNormalizedFieldsAreNotWrittenBack(t *testing.T) {
	output := row(accountSchema, Fields{
		"account": "physics", "grp_wall": "0-00:00:00", "max_jobs": "0",
		"grp_jobs": "", "max_wall_duration_per_job": "00:00:00", "grp_tres": "cpu=8",
	})
	rows := ParseParsableRows(output, accountSchema.QueryFields())
	require.Len(t, rows, 1)

	account := &Account{}
	accountSchema.Decode(account, rows[0])
	updates, filters := accountSchema.Split(account)

	assert.Equal(t, Fields{"account": "physics"}, filters)
	assert.Equal(t, Fields{"grp_tres": "cpu=8"}, updates)
}

func TestParseKeyValueLine(t *testing.T) {
	fields := []string{"job_id", "job_name", "tres", "reason", "array_task_id", "std_out"}
	line := "JobId=37780 JobName=train UserId=alice(1000) TRES=cpu=4,mem=16G,gres/gpu=1 Reason=None ArrayTaskId=N/A StdOut=(null) Comment="

	got := ParseKeyValueLine(line, fields)

	assert.Equal(t, Fields{
		"job_id":        "37780",
		"job_name":      "train",
		"tres":          "cpu=4,mem=16G,gres/gpu=1",
		"reason":        "None",
		"array_task_id": "",
		"std_out":       "",
	}, got)
}

func TestParseKeyValueLineBareKey(t *testing.T) {
	got := ParseKeyValueLine("NodeName=n1 Reason= State=IDLE", []string{"node_name", "reason", "state"})
	assert.Equal(t, Fields{"node_name": "n1", "reason": "", "state": "IDLE"}, got)
}

func TestParseKeyValueRowsSkipsBlankLines(t *testing.T) {
	got := ParseKeyValueRows("NodeName=n1 State=IDLE\n\nNodeName=n2 State=DOWN\n", []string{"node_name", "state"})
	require.Len(t, got, 2)
	assert.Equal(t, "n2", got[1]["node_name"])
	assert.Equal(t, "DOWN", got[1]["state"])
}

func TestFieldsExternalIsSorted(t *testing.T) {
	f := Fields{"user": "alice", "account": "physics", "default_account": "physics"}
	assert.Equal(t, []string{"Account=physics", "DefaultAccount=physics", "User=alice"}, f.external())
}

// ---------------------------------------------------------------------------
// Resource lists
// ---------------------------------------------------------------------------

func TestGresValue(t *testing.T) {
	tests := []struct {
		haystack string
		key      string
		want     string
		found    bool
	}{
		{"cpu=4,mem=16G,gres/gpu=1", "cpu", "4", true},
		{"cpu=4,mem=16G,gres/gpu=1", "gres/gpu", "1", true},
		{"cpu=4,mem=16G", "gres/gpu", "", false},
		{"", "cpu", "", false},
		{"cpu=4,billing", "billing", "", false},
		{"gres/gpu=2", "gpu", "", false},
	}
	for _, tc := range tests {
		got, found := GresValue(tc.haystack, tc.key)
		assert.Equal(t, tc.want, got, "%s in %q", tc.key, tc.haystack)
		assert.Equal(t, tc.found, found, "%s in %q", tc.key, tc.haystack)
	}
}

func TestUpdateGresValue(t *testing.T) {
	tests := []struct {
		name     string
		haystack string
		key      string
		value    string
		want     string
	}{
		{"replace in place", "cpu=4,mem=16G,gres/gpu=1", "mem", "32G", "cpu=4,mem=32G,gres/gpu=1"},
		{"append missing", "cpu=4,mem=16G", "gres/gpu", "2", "cpu=4,mem=16G,gres/gpu=2"},
		{"empty haystack", "", "cpu", "8", "cpu=8"},
		{"clear becomes no limit", "cpu=4", "cpu", "", "cpu=-1"},
		{"substring key is not a match", "gres/gpu=2", "gpu", "1", "gres/gpu=2,gpu=1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, UpdateGresValue(tc.haystack, tc.key, tc.value))
		})
	}
}

func TestUpdateThenGetReturnsValue(t *testing.T) {
	haystacks := []string{"", "cpu=1", "cpu=1,mem=2G", "mem=2G,gres/gpu=4,node=1"}
	keys := []string{"cpu", "mem", "gres/gpu", "license/matlab"}
	values := []string{"0", "12", "64G", "-1"}
	for _, h := range haystacks {
		for _, k := range keys {
			for _, v := range values {
				got, ok := GresValue(UpdateGresValue(h, k, v), k)
				require.True(t, ok, "%s in update(%q)", k, h)
				assert.Equal(t, v, got, "%s in update(%q)", k, h)
			}
		}
	}
}
