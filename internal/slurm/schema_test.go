package slurm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountSchemaClassification(t *testing.T) {
	s := accountSchema

	assert.Equal(t, []string{"account"}, s.PrimaryKeys())
	assert.Equal(t, []string{"parent"}, s.WriteOnly())
	assert.Equal(t, []string{"nesting_level"}, s.Synthetic())
	assert.Subset(t, s.ReadOnly(), []string{"id", "parent_id", "parent_name", "cluster", "nesting_level", "account", "user"})
	assert.NotContains(t, s.ReadOnly(), "grp_tres")

	query := s.QueryFields()
	assert.Contains(t, query, "grp_tres")
	assert.Contains(t, query, "account")
	assert.NotContains(t, query, "parent", "write-only fields are never requested")
	assert.NotContains(t, query, "nesting_level", "synthetic fields are never requested")
}

func TestUserSchemaHasCompositeKey(t *testing.T) {
	assert.Equal(t, []string{"user", "account"}, userSchema.PrimaryKeys())
	assert.Equal(t, []string{"default_account"}, userSchema.WriteOnly())
}

func TestRegisterIsCached(t *testing.T) {
	a, err := Register[Account]()
	require.NoError(t, err)
	assert.Same(t, accountSchema, a)
}

type noKeyRecord struct {
	Name string `slurm:"name"`
}

type badClassRecord struct {
	Name string `slurm:"name,primarykey,mutable"`
}

type conflictingRecord struct {
	Name  string `slurm:"name,primarykey"`
	Notes string `slurm:"notes,readonly,writeonly"`
}

type nonStringRecord struct {
	Name  string `slurm:"name,primarykey"`
	Count int    `slurm:"count"`
}

type duplicateRecord struct {
	Name  string `slurm:"name,primarykey"`
	Other string `slurm:"name"`
}

type syntheticRecord struct {
	Name  string         `slurm:"name,primarykey"`
	Cache map[string]int `slurm:"cache,synthetic"`
	Skip  string
}

func TestRegisterRejectsMalformedSchemas(t *testing.T) {
	tests := []struct {
		name     string
		register func() (*Schema, error)
		contains string
	}{
		{"no primary key", Register[noKeyRecord], "no primary key"},
		{"unknown class", Register[badClassRecord], `unknown class "mutable"`},
		{"read-only and write-only", Register[conflictingRecord], "both read-only and write-only"},
		{"non string wire field", Register[nonStringRecord], "must be a string"},
		{"duplicate name", Register[duplicateRecord], "duplicate field name"},
		{"not a struct", Register[string], "not a struct"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.register()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestMustRegisterPanics(t *testing.T) {
	assert.Panics(t, func() { MustRegister[noKeyRecord]() })
}

func TestSyntheticFieldsMayHaveAnyType(t *testing.T) {
	s, err := Register[syntheticRecord]()
	require.NoError(t, err)

	assert.Empty(t, s.WriteOnly())
	assert.Equal(t, []string{"cache"}, s.Synthetic())
	assert.Equal(t, []string{"name"}, s.QueryFields())
	_, ok := s.Lookup("Skip")
	assert.False(t, ok, "untagged fields are not part of the schema")
}

func TestSplitSeparatesFiltersFromUpdates(t *testing.T) {
	account := &Account{
		Association: Association{
			ID:           "42",
			Cluster:      "cluster",
			GrpTRES:      "cpu=8",
			MaxJobs:      "",
			Fairshare:    "10",
			NestingLevel: 3,
		},
		Account:       "physics",
		User:          "",
		ParentAccount: "root",
	}

	updates, filters := accountSchema.Split(account)

	assert.Equal(t, Fields{"account": "physics"}, filters)
	assert.Equal(t, Fields{"grp_tres": "cpu=8", "fairshare": "10", "parent": "root"}, updates)
}

func TestSplitIncludesEmptyPrimaryKeys(t *testing.T) {
	_, filters := userSchema.Split(&User{User: "alice"})
	assert.Equal(t, Fields{"user": "alice", "account": ""}, filters)
}

func TestDecodeClearsMissingFields(t *testing.T) {
	account := &Account{Association: Association{GrpTRES: "cpu=1", NestingLevel: 2}, Account: "old"}

	accountSchema.Decode(account, Fields{"account": "physics", "max_jobs": "5"})

	assert.Equal(t, "physics", account.Account)
	assert.Equal(t, "5", account.MaxJobs)
	assert.Empty(t, account.GrpTRES)
	assert.Equal(t, 2, account.NestingLevel, "synthetic fields are untouched")
}

func TestEncodeSkipsEmptyAndSynthetic(t *testing.T) {
	account := &Account{Association: Association{GrpJobs: "3", NestingLevel: 1}, Account: "physics"}
	assert.Equal(t, Fields{"account": "physics", "grp_jobs": "3"}, accountSchema.encode(account))
}

func TestSchemaGet(t *testing.T) {
	user := &User{}
	userSchema.Decode(user, Fields{"user": "alice", "grp_wall": "1-00:00:00", "nesting_level": "7", "unknown": "x"})

	assert.Equal(t, "alice", user.User)
	assert.Equal(t, "alice", userSchema.Get(user, "user"))
	assert.Equal(t, "1-00:00:00", user.GrpWall)
	assert.Zero(t, user.NestingLevel)
	assert.Empty(t, userSchema.Get(user, "unknown"))
}

func TestSchemaPanicsOnForeignRecord(t *testing.T) {
	assert.Panics(t, func() { accountSchema.Get(&User{}, "account") })
}

func TestCopyWireKeepsLinks(t *testing.T) {
	parent := &Account{Account: "root"}
	dst := &Account{Account: "physics", Association: Association{MaxJobs: "5", NestingLevel: 1, parent: parent}}
	src := &Account{Account: "physics", Association: Association{GrpTRES: "cpu=2"}}

	accountSchema.CopyWire(dst, src)

	assert.Equal(t, "cpu=2", dst.GrpTRES)
	assert.Empty(t, dst.MaxJobs, "fields empty in src are cleared")
	assert.Equal(t, 1, dst.NestingLevel)
	assert.Same(t, parent, dst.Parent())
}
