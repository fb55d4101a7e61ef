package slurm

import (
	"context"
	"strings"
)

// AccountManager speaks the accounting tool's protocol.
type AccountManager struct {
	invoker *Invoker
}

// NewAccountManager returns an AccountManager running through invoker.
func NewAccountManager(invoker *Invoker) *AccountManager {
	return &AccountManager{invoker: invoker}
}

func (m *AccountManager) run(ctx context.Context, tolerant bool, args ...string) (int, string, error) {
	args = append(args, "--parsable2", "--noheader")
	code, output, err := m.invoker.Run(ctx, Sacctmgr, args...)
	if err != nil {
		return code, output, err
	}
	if code != 0 && !tolerant {
		return code, output, &AccountManagerError{Output: output}
	}
	return code, output, nil
}

// Show lists objectType records. fields are requested through "format=" in
// the given order and filters become a "where" clause.
func (m *AccountManager) Show(ctx context.Context, objectType string, options, fields []string, filters Fields) ([]Fields, error) {
	args := []string{"show", objectType}
	args = append(args, options...)
	external := make([]string, len(fields))
	for i, f := range fields {
		external[i] = ExternalName(f)
	}
	args = append(args, "format="+strings.Join(external, ","))
	if len(filters) > 0 {
		args = append(args, "where")
		args = append(args, filters.external()...)
	}

	_, output, err := m.run(ctx, false, args...)
	if err != nil {
		return nil, err
	}
	return ParseParsableRows(output, fields), nil
}

// Write runs a create, modify or delete and returns the identifiers of the
// records the tool reports as directly affected. With Tolerant, a failing
// invocation reports zero affected records instead of an error.
func (m *AccountManager) Write(ctx context.Context, verb, objectType string, updates, filters Fields, opts ...WriteOption) ([]string, error) {
	o := writeOptions(opts)

	args := []string{verb, objectType}
	if len(filters) > 0 {
		args = append(args, "where")
		args = append(args, filters.external()...)
	}
	if len(updates) > 0 {
		if verb == "modify" {
			args = append(args, "set")
		}
		args = append(args, updates.external()...)
	}
	args = append(args, "--immediate")

	code, output, err := m.run(ctx, o.tolerant, args...)
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return nil, nil
	}
	return ParseMutationReport(verb, output), nil
}

// ParseMutationReport reads the affected records out of the free text the
// accounting tool prints after a mutation.
//
// For create, "Nothing new added." means nothing was created and any other
// output means exactly one record was. For modify and delete the output is a
// series of sections, each opened by a header line ending in "..."; only the
// first section lists the records that were hit directly, later sections
// describe cascading changes and are not counted.
func ParseMutationReport(verb, output string) []string {
	if verb == "create" {
		if strings.Contains(output, "Nothing new added.") {
			return nil
		}
		return []string{""}
	}

	var affected []string
	section := 0
	for _, line := range splitLines(output) {
		if strings.HasSuffix(line, "...") {
			section++
			continue
		}
		if section != 1 {
			break
		}
		affected = append(affected, strings.TrimSpace(line))
	}
	return affected
}

// ---------------------------------------------------------------------------
// Write options
// ---------------------------------------------------------------------------

// WriteOption adjusts a mutation.
type WriteOption func(*writeOpts)

type writeOpts struct {
	tolerant      bool
	allowMultiple bool
}

// Tolerant makes a failing mutation report zero affected records instead of
// returning the tool's error. Meant for speculative writes that may
// legitimately be rejected.
func Tolerant() WriteOption {
	return func(o *writeOpts) { o.tolerant = true }
}

// AllowMultiple lets Save and Delete affect more than one record, for
// account limits that cascade to several associations.
func AllowMultiple() WriteOption {
	return func(o *writeOpts) { o.allowMultiple = true }
}

func writeOptions(opts []WriteOption) writeOpts {
	var o writeOpts
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
