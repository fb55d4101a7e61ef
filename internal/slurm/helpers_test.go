package slurm

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

// reply is one canned subprocess result.
type reply struct {
	stdout string
	stderr string
	code   int
}

// fakeRunner records every invocation and answers with the queued replies
// in order. Running out of replies fails the test.
type fakeRunner struct {
	t       *testing.T
	replies []reply
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, path string, args []string) (ProcessOutput, error) {
	f.t.Helper()
	f.calls = append(f.calls, filepath.Base(path)+" "+strings.Join(args, " "))
	if len(f.replies) == 0 {
		f.t.Fatalf("unexpected invocation: %s %s", path, strings.Join(args, " "))
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return ProcessOutput{Stdout: []byte(r.stdout), Stderr: []byte(r.stderr), ExitCode: r.code}, nil
}

func newTestClient(t *testing.T, replies ...reply) (*Client, *fakeRunner) {
	t.Helper()
	runner := &fakeRunner{t: t, replies: replies}
	client := NewClient(
		WithRunner(runner),
		WithLookPath(func(name string) (string, error) { return "/usr/bin/" + name, nil }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return client, runner
}

// row renders values as one parsable2 line in the query order of schema.
func row(schema *Schema, values Fields) string {
	fields := schema.QueryFields()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = values[f]
	}
	return strings.Join(cols, "|")
}

func rows(schema *Schema, values ...Fields) string {
	lines := make([]string, len(values))
	for i, v := range values {
		lines[i] = row(schema, v)
	}
	return strings.Join(lines, "\n") + "\n"
}

func formatArg(schema *Schema) string {
	fields := schema.QueryFields()
	ext := make([]string, len(fields))
	for i, f := range fields {
		ext[i] = ExternalName(f)
	}
	return "format=" + strings.Join(ext, ",")
}
