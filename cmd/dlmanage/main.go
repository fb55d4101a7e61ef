package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"dlmanage/internal/logging"
	"dlmanage/internal/settings"
	"dlmanage/internal/slurm"
	"dlmanage/internal/tui"
)

// command describes a CLI subcommand.
type command struct {
	name  string
	short string
	usage string
	long  string
	run   func(ctx context.Context, args []string) error
}

const commonFlags = `
Flags:
  --config string       settings file (default $XDG_CONFIG_HOME/dlmanage/settings.yaml)
  --log-level string    debug, info, warn or error
  --log-output string   stderr, stdout or file
  --log-format string   text or json
  --log-file string     log file when the output is file
`

var commands = []command{
	{
		name:  "tui",
		short: "Browse and change associations, jobs and nodes interactively",
		usage: "dlmanage tui [flags]",
		long: `Start the interactive front-end. This is the default when no command
is given.

The associations view shows the account tree with its cpu, gpu and wall
time limits. The jobs and nodes views show the scheduler's live state.
Press ? inside for the key bindings.
` + commonFlags,
		run: runTUI,
	},
	{
		name:  "accounts",
		short: "Print the account and user tree",
		usage: "dlmanage accounts [flags]",
		long: `Print every account and user association as a tree, in the order the
accounting tool lists them.
` + commonFlags,
		run: runAccounts,
	},
	{
		name:  "jobs",
		short: "List the scheduler's jobs",
		usage: "dlmanage jobs [flags]",
		long:  "List every job known to the scheduler with its resources.\n" + commonFlags,
		run:   runJobs,
	},
	{
		name:  "nodes",
		short: "List compute nodes with allocation and uptime",
		usage: "dlmanage nodes [flags]",
		long:  "List every compute node with its state, allocated cpus and gpus and uptime.\n" + commonFlags,
		run:   runNodes,
	},
	{
		name:  "qos",
		short: "List quality of service definitions",
		usage: "dlmanage qos [flags]",
		long:  "List every quality of service with its priority and per-user gpu limit.\n" + commonFlags,
		run:   runQOS,
	},
	{
		name:  "status",
		short: "Summarize job and node states",
		usage: "dlmanage status [flags]",
		long:  "Count jobs and nodes by state and report the cluster's allocated cpus and gpus.\n" + commonFlags,
		run:   runStatus,
	},
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "dlmanage — Slurm accounting and cluster administration\n\n")
	fmt.Fprintf(w, "Usage:\n  dlmanage [command] [flags]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.short)
	}
	fmt.Fprintf(w, "\nRun 'dlmanage help <command>' for details on a specific command.\n")
}

func printCommandHelp(w io.Writer, name string) {
	for _, cmd := range commands {
		if cmd.name == name {
			fmt.Fprintf(w, "Usage: %s\n\n%s", cmd.usage, cmd.long)
			return
		}
	}
	fmt.Fprintf(w, "dlmanage: unknown command %q\n\nRun 'dlmanage help' for usage.\n", name)
}

func dispatch(ctx context.Context, args []string) error {
	if len(args) > 0 && (args[0] == "--help" || args[0] == "-h") {
		printUsage(os.Stdout)
		return nil
	}
	if len(args) > 0 && args[0] == "help" {
		if len(args) >= 2 {
			printCommandHelp(os.Stdout, args[1])
		} else {
			printUsage(os.Stdout)
		}
		return nil
	}
	// No command, or only flags, starts the front-end.
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return runTUI(ctx, args)
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(ctx, args[1:])
		}
	}
	return fmt.Errorf("unknown command %q\n\nRun 'dlmanage help' for usage.", args[0])
}

// ---------------------------------------------------------------------------
// Shared setup
// ---------------------------------------------------------------------------

// options are the flags every command accepts.
type options struct {
	config    string
	logLevel  string
	logOutput string
	logFormat string
	logFile   string
	flags     *pflag.FlagSet
}

// parseFlags parses args for the command name. Commands take no positional
// arguments.
func parseFlags(name string, args []string) (*options, error) {
	o := &options{}
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.config, "config", "", "settings file")
	fs.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&o.logOutput, "log-output", "", "stderr, stdout or file")
	fs.StringVar(&o.logFormat, "log-format", "", "text or json")
	fs.StringVar(&o.logFile, "log-file", "", "log file when the output is file")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w\nusage: dlmanage %s [flags]", err, name)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q\nusage: dlmanage %s [flags]", fs.Arg(0), name)
	}
	o.flags = fs
	return o, nil
}

// apply overrides s with the flags that were set.
func (o *options) apply(s *settings.Settings) {
	if o.flags.Changed("log-level") {
		s.Log.Level = o.logLevel
	}
	if o.flags.Changed("log-output") {
		s.Log.Output = o.logOutput
	}
	if o.flags.Changed("log-format") {
		s.Log.Format = o.logFormat
	}
	if o.flags.Changed("log-file") {
		s.Log.File = o.logFile
	}
}

// setup parses args, loads the settings and returns a client wired to them.
// The returned func closes the log.
func setup(name string, args []string) (*slurm.Client, func(), error) {
	o, err := parseFlags(name, args)
	if err != nil {
		return nil, nil, err
	}
	s, err := settings.Load(o.config)
	if err != nil {
		return nil, nil, err
	}
	o.apply(s)

	logger, cleanup, err := logging.NewLogger(s.Log.Output, s.Log.Format, s.Log.File, s.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}
	logger.Debug("starting", slog.String("command", name), slog.String("config", o.config))

	client := slurm.NewClient(
		slurm.WithToolPath(slurm.Sacctmgr, s.Tools.Sacctmgr),
		slurm.WithToolPath(slurm.Scontrol, s.Tools.Scontrol),
		slurm.WithToolPath(slurm.Scancel, s.Tools.Scancel),
		slurm.WithLogger(logger),
		slurm.WithHomeFinder(slurm.NewHomeFinder(s.HomePatterns)),
	)
	return client, cleanup, nil
}

// ---------------------------------------------------------------------------
// tui
// ---------------------------------------------------------------------------

func runTUI(ctx context.Context, args []string) error {
	client, cleanup, err := setup("tui", args)
	if err != nil {
		return err
	}
	defer cleanup()
	// A missing tool is reported before the terminal is taken over.
	if err := client.CheckTools(); err != nil {
		return err
	}
	return tui.Run(ctx, client)
}

// ---------------------------------------------------------------------------
// accounts
// ---------------------------------------------------------------------------

func runAccounts(ctx context.Context, args []string) error {
	client, cleanup, err := setup("accounts", args)
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := client.Associations.All(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no associations")
		return nil
	}
	fmt.Println(tui.RenderTree(entries))
	return nil
}

// ---------------------------------------------------------------------------
// jobs
// ---------------------------------------------------------------------------

func runJobs(ctx context.Context, args []string) error {
	client, cleanup, err := setup("jobs", args)
	if err != nil {
		return err
	}
	defer cleanup()

	jobs, err := client.Jobs.All(ctx)
	if err != nil {
		return err
	}
	return writeJobs(os.Stdout, jobs)
}

func writeJobs(w io.Writer, jobs []*slurm.Job) error {
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "JOBID\tNAME\tUSER\tSTATE\tTIME\tLIMIT\tCPUS\tMEM\tGPUS\tNODES\n")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			j.IDWithArray(), j.JobName, j.Username(), j.JobState, dash(j.RunTime),
			dash(j.TimeLimit), dash(j.CPUs()), dash(j.Memory()), dash(j.GPUs()), dash(j.NodeList))
	}
	return tw.Flush()
}

// ---------------------------------------------------------------------------
// nodes
// ---------------------------------------------------------------------------

func runNodes(ctx context.Context, args []string) error {
	client, cleanup, err := setup("nodes", args)
	if err != nil {
		return err
	}
	defer cleanup()

	nodes, err := client.Nodes.All(ctx)
	if err != nil {
		return err
	}
	return writeNodes(os.Stdout, nodes, time.Now())
}

func writeNodes(w io.Writer, nodes []*slurm.Node, now time.Time) error {
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "NODE\tSTATE\tCPUS\tGPUS\tUPTIME\tREASON\n")
	for _, n := range nodes {
		cpuAlloc, cpuTotal := n.CPUAllocation()
		gpuAlloc, gpuTotal := n.GPUAllocation()
		fmt.Fprintf(tw, "%s\t%s\t%s/%s\t%s/%s\t%s\t%s\n",
			n.NodeName, n.State, cpuAlloc, cpuTotal, gpuAlloc, gpuTotal,
			tui.FormatUptime(n, now), dash(n.Reason))
	}
	return tw.Flush()
}

// ---------------------------------------------------------------------------
// qos
// ---------------------------------------------------------------------------

func runQOS(ctx context.Context, args []string) error {
	client, cleanup, err := setup("qos", args)
	if err != nil {
		return err
	}
	defer cleanup()

	qos, err := client.QOS.All(ctx)
	if err != nil {
		return err
	}
	return writeQOS(os.Stdout, qos)
}

func writeQOS(w io.Writer, qos []*slurm.QOS) error {
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "NAME\tPRIORITY\tMAX GPUS/USER\tMAX WALL\n")
	for _, q := range qos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", q.Name, dash(q.Priority), dash(q.MaxGPUsPerUser()), dash(q.MaxWallDurationPerJob))
	}
	return tw.Flush()
}

// ---------------------------------------------------------------------------
// status
// ---------------------------------------------------------------------------

func runStatus(ctx context.Context, args []string) error {
	client, cleanup, err := setup("status", args)
	if err != nil {
		return err
	}
	defer cleanup()

	var jobs []*slurm.Job
	var nodes []*slurm.Node
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		jobs, err = client.Jobs.All(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		nodes, err = client.Nodes.All(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return writeStatus(os.Stdout, jobs, nodes)
}

// summary counts records by state.
type summary struct {
	jobStates  map[string]int
	nodeStates map[string]int
	cpuAlloc   int
	cpuTotal   int
	gpuAlloc   int
	gpuTotal   int
}

func summarize(jobs []*slurm.Job, nodes []*slurm.Node) summary {
	s := summary{jobStates: map[string]int{}, nodeStates: map[string]int{}}
	for _, j := range jobs {
		s.jobStates[j.JobState]++
	}
	for _, n := range nodes {
		s.nodeStates[n.State]++
		cpuAlloc, cpuTotal := n.CPUAllocation()
		gpuAlloc, gpuTotal := n.GPUAllocation()
		s.cpuAlloc += count(cpuAlloc)
		s.cpuTotal += count(cpuTotal)
		s.gpuAlloc += count(gpuAlloc)
		s.gpuTotal += count(gpuTotal)
	}
	return s
}

func writeStatus(w io.Writer, jobs []*slurm.Job, nodes []*slurm.Node) error {
	s := summarize(jobs, nodes)
	fmt.Fprintf(w, "jobs:  %s (%s)\n", humanize.Comma(int64(len(jobs))), formatCounts(s.jobStates))
	fmt.Fprintf(w, "nodes: %s (%s)\n", humanize.Comma(int64(len(nodes))), formatCounts(s.nodeStates))
	fmt.Fprintf(w, "cpus:  %s of %s allocated\n", humanize.Comma(int64(s.cpuAlloc)), humanize.Comma(int64(s.cpuTotal)))
	_, err := fmt.Fprintf(w, "gpus:  %s of %s allocated\n", humanize.Comma(int64(s.gpuAlloc)), humanize.Comma(int64(s.gpuTotal)))
	return err
}

// formatCounts renders counts as "RUNNING 3, PENDING 1", largest first.
func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	states := make([]string, 0, len(counts))
	for state := range counts {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool {
		if counts[states[i]] != counts[states[j]] {
			return counts[states[i]] > counts[states[j]]
		}
		return states[i] < states[j]
	})
	parts := make([]string, len(states))
	for i, state := range states {
		parts[i] = fmt.Sprintf("%s %d", dash(state), counts[state])
	}
	return strings.Join(parts, ", ")
}

func count(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dispatch(ctx, os.Args[1:]); err != nil {
		stop()
		if errors.Is(err, slurm.ErrToolNotFound) {
			fmt.Fprintf(os.Stderr, "dlmanage: %v\nSet the tool paths in %s.\n", err, settings.DefaultPath())
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "dlmanage: %v\n", err)
		os.Exit(1)
	}
}
