package slurm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Tool names an external executable.
type Tool string

const (
	Sacctmgr Tool = "sacctmgr"
	Scontrol Tool = "scontrol"
	Scancel  Tool = "scancel"
)

// ProcessOutput is what a finished subprocess produced.
type ProcessOutput struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Message returns stderr when it is not empty, stdout otherwise.
func (o ProcessOutput) Message() string {
	if len(o.Stderr) > 0 {
		return string(o.Stderr)
	}
	return string(o.Stdout)
}

// Runner executes a resolved executable with an argument vector. Nothing is
// written to the process's stdin. A non-zero exit is reported through
// ProcessOutput.ExitCode; the error return is reserved for processes that
// could not be run at all.
type Runner interface {
	Run(ctx context.Context, path string, args []string) (ProcessOutput, error)
}

// ExecRunner runs processes with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, path string, args []string) (ProcessOutput, error) {
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, path, args...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	err := command.Run()
	out := ProcessOutput{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
	default:
		return out, fmt.Errorf("run %s: %w", path, err)
	}
	return out, nil
}

// Invoker resolves tools and runs them. It holds no per-call state, so one
// Invoker may serve concurrent callers.
type Invoker struct {
	runner   Runner
	lookPath func(string) (string, error)
	paths    map[Tool]string
	logger   *slog.Logger
}

// NewInvoker returns an Invoker that resolves tools on PATH unless paths
// names an explicit location.
func NewInvoker(runner Runner, paths map[Tool]string, logger *slog.Logger) *Invoker {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{runner: runner, lookPath: exec.LookPath, paths: paths, logger: logger}
}

// Resolve returns the absolute path of tool, or an error wrapping
// ErrToolNotFound.
func (iv *Invoker) Resolve(tool Tool) (string, error) {
	name := string(tool)
	if p := iv.paths[tool]; p != "" {
		name = p
	}
	path, err := iv.lookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrToolNotFound, tool, err)
	}
	return path, nil
}

// Run executes tool with args and returns its exit code and message text
// (stderr if any, else stdout). A non-zero exit is not an error here; the
// per-tool wrappers decide what it means.
func (iv *Invoker) Run(ctx context.Context, tool Tool, args ...string) (int, string, error) {
	path, err := iv.Resolve(tool)
	if err != nil {
		return 0, "", err
	}
	iv.logger.Debug("running command", "tool", tool, "args", strings.Join(args, " "))
	out, err := iv.runner.Run(ctx, path, args)
	if err != nil {
		return 0, "", err
	}
	msg := out.Message()
	if out.ExitCode != 0 {
		iv.logger.Warn("command failed", "tool", tool, "args", strings.Join(args, " "),
			"exit_code", out.ExitCode, "output", strings.TrimSpace(msg))
	}
	return out.ExitCode, msg, nil
}
