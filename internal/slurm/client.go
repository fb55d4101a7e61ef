// Package slurm bridges typed records and the Slurm command line tools.
//
// Accounting data (accounts, users, their associations and QOS) is read and
// written with sacctmgr; live state (jobs, nodes) with scontrol and scancel.
// Every operation runs exactly one subprocess per tool call and waits for
// it: there is no caching, polling, timeout or retry here. Callers that need
// a deadline set one on the context.
package slurm

import (
	"log/slog"
)

// Client groups the repositories of every record type.
type Client struct {
	Associations *Associations
	Accounts     *Accounts
	Users        *Users
	QOS          *Repository[QOS, *QOS]
	Jobs         *Jobs
	Nodes        *Nodes

	invoker *Invoker
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	runner   Runner
	paths    map[Tool]string
	logger   *slog.Logger
	finder   *HomeFinder
	lookPath func(string) (string, error)
}

// WithRunner replaces the subprocess runner.
func WithRunner(r Runner) Option {
	return func(c *clientConfig) { c.runner = r }
}

// WithToolPath sets an explicit executable for tool instead of a PATH
// lookup.
func WithToolPath(tool Tool, path string) Option {
	return func(c *clientConfig) {
		if path != "" {
			c.paths[tool] = path
		}
	}
}

// WithLogger sets the logger used for command tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// WithHomeFinder sets how users' home directories are located.
func WithHomeFinder(f *HomeFinder) Option {
	return func(c *clientConfig) { c.finder = f }
}

// WithLookPath replaces exec.LookPath for resolving tools.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(c *clientConfig) { c.lookPath = fn }
}

// NewClient returns a Client. Tools are resolved lazily on every call, so a
// missing tool surfaces as ErrToolNotFound from the first operation using it.
func NewClient(opts ...Option) *Client {
	cfg := clientConfig{paths: map[Tool]string{}, finder: DefaultHomeFinder}
	for _, opt := range opts {
		opt(&cfg)
	}

	invoker := NewInvoker(cfg.runner, cfg.paths, cfg.logger)
	if cfg.lookPath != nil {
		invoker.lookPath = cfg.lookPath
	}
	manager := NewAccountManager(invoker)
	controller := NewController(invoker)

	c := &Client{
		Associations: &Associations{manager: manager, finder: cfg.finder},
		Accounts:     newAccounts(manager),
		Users:        newUsers(manager, cfg.finder),
		QOS:          newRepository[QOS, *QOS](manager, nil),
		Nodes:        &Nodes{newControlRepository[Node, *Node](controller)},
		invoker:      invoker,
	}
	c.Jobs = &Jobs{
		ControlRepository: newControlRepository[Job, *Job](controller),
		users:             c.Users,
		accounts:          c.Accounts,
	}
	return c
}

// CheckTools resolves every tool and returns the first failure.
func (c *Client) CheckTools() error {
	for _, tool := range []Tool{Sacctmgr, Scontrol, Scancel} {
		if _, err := c.invoker.Resolve(tool); err != nil {
			return err
		}
	}
	return nil
}
