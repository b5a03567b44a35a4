// Package engine executes parsed commands against the store and over HTTP.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mcastorina/repost/internal/state"
	"github.com/mcastorina/repost/pkg/command"
	"github.com/mcastorina/repost/pkg/shell"
)

// DefaultTimeout bounds a request when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Store is the persistence the engine needs. *state.SQLiteStore implements it.
type Store interface {
	ActiveWorkspace(ctx context.Context) (string, error)
	SetWorkspace(ctx context.Context, name string) error
	ListWorkspaces(ctx context.Context) ([]string, error)
	ActiveEnvironment(ctx context.Context) (string, error)
	SetEnvironment(ctx context.Context, name string) error
	ListEnvironments(ctx context.Context) ([]string, error)
	LastRequest(ctx context.Context) (string, error)
	SetLastRequest(ctx context.Context, name string) error
	Counts(ctx context.Context) (state.Counts, error)

	SaveRequest(ctx context.Context, req *state.Request) error
	GetRequest(ctx context.Context, name string) (*state.Request, error)
	ListRequests(ctx context.Context) ([]*state.Request, error)
	DeleteRequests(ctx context.Context, names []string) (int64, error)
	DeleteOptions(ctx context.Context, names []string) (int64, error)

	SetVariable(ctx context.Context, name, environment, value string) error
	ListVariables(ctx context.Context) ([]*state.Variable, error)
	LookupVariable(ctx context.Context, name, environment string) (string, bool, error)
	DeleteVariables(ctx context.Context, keys []string) (int64, error)

	Path() string
}

var _ Store = (*state.SQLiteStore)(nil)

// Config holds engine configuration.
type Config struct {
	Store      Store
	Out        io.Writer     // defaults to io.Discard
	HTTPClient *http.Client  // optional, built from Timeout if nil
	Timeout    time.Duration // per request, defaults to DefaultTimeout
	Color      bool          // colour JSON bodies and status lines
	Logger     *slog.Logger  // optional, uses discard if nil
}

// Engine executes commands. It is not safe for concurrent use.
type Engine struct {
	store  Store
	out    io.Writer
	client *http.Client
	color  bool
	logger *slog.Logger

	last *Response
}

var _ shell.Executor = (*Engine)(nil)

// New creates an engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("engine requires a store")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	out := cfg.Out
	if out == nil {
		out = io.Discard
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	logger.Debug("initializing engine", "store", cfg.Store.Path(), "timeout", client.Timeout)

	return &Engine{
		store:  cfg.Store,
		out:    out,
		client: client,
		color:  cfg.Color,
		logger: logger,
	}, nil
}

// LastResponse returns the response of the most recent run, or nil.
func (e *Engine) LastResponse() *Response {
	return e.last
}

// Execute runs one command.
func (e *Engine) Execute(ctx context.Context, cmd command.Command) error {
	e.logger.Debug("executing command", "kind", cmd.Kind().String())

	switch c := cmd.(type) {
	case command.PrintRequests:
		return e.printRequests(ctx)
	case command.PrintVariables:
		return e.printVariables(ctx)
	case command.PrintEnvironments:
		return e.printEnvironments(ctx)
	case command.PrintWorkspaces:
		return e.printWorkspaces(ctx)
	case command.CreateRequest:
		return e.createRequest(ctx, c)
	case command.CreateVariable:
		return e.createVariable(ctx, c)
	case command.DeleteRequests:
		n, err := e.store.DeleteRequests(ctx, c.Names)
		return e.reportDeleted(n, "request", err)
	case command.DeleteVariables:
		n, err := e.store.DeleteVariables(ctx, c.Names)
		return e.reportDeleted(n, "variable", err)
	case command.DeleteOptions:
		n, err := e.store.DeleteOptions(ctx, c.Names)
		return e.reportDeleted(n, "option", err)
	case command.SetEnvironment:
		return e.setEnvironment(ctx, c)
	case command.SetWorkspace:
		return e.setWorkspace(ctx, c)
	case command.Run:
		return e.run(ctx, c)
	case command.Extract:
		return e.extract(ctx, c)
	case command.Info:
		return e.info(ctx)
	default:
		return fmt.Errorf("unsupported command %T", cmd)
	}
}

func (e *Engine) createRequest(ctx context.Context, c command.CreateRequest) error {
	req := &state.Request{
		Name:    c.Name,
		Method:  c.Method,
		URL:     c.URL,
		Headers: c.Headers,
		Body:    c.Body,
	}
	if err := e.store.SaveRequest(ctx, req); err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	_, _ = fmt.Fprintf(e.out, "saved request %s (%s %s)\n", req.Name, req.Method, req.URL)
	return nil
}

func (e *Engine) createVariable(ctx context.Context, c command.CreateVariable) error {
	envs := make([]string, 0, len(c.Values))
	for _, ev := range c.Values {
		if err := e.store.SetVariable(ctx, c.Name, ev.Environment, ev.Value); err != nil {
			return fmt.Errorf("failed to set %s in %s: %w", c.Name, ev.Environment, err)
		}
		envs = append(envs, ev.Environment)
	}
	_, _ = fmt.Fprintf(e.out, "set %s in %s\n", c.Name, strings.Join(envs, ", "))
	return nil
}

func (e *Engine) reportDeleted(n int64, noun string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to delete %ss: %w", noun, err)
	}
	if n != 1 {
		noun += "s"
	}
	_, _ = fmt.Fprintf(e.out, "deleted %d %s\n", n, noun)
	return nil
}

func (e *Engine) setEnvironment(ctx context.Context, c command.SetEnvironment) error {
	if err := e.store.SetEnvironment(ctx, c.Name); err != nil {
		return fmt.Errorf("failed to set environment: %w", err)
	}
	if c.Name == "" {
		_, _ = fmt.Fprintln(e.out, "cleared environment")
		return nil
	}
	_, _ = fmt.Fprintf(e.out, "using environment %s\n", c.Name)
	return nil
}

func (e *Engine) setWorkspace(ctx context.Context, c command.SetWorkspace) error {
	if err := e.store.SetWorkspace(ctx, c.Name); err != nil {
		return fmt.Errorf("failed to set workspace: %w", err)
	}
	// The last response belongs to the previous workspace's requests.
	e.last = nil
	_, _ = fmt.Fprintf(e.out, "using workspace %s\n", c.Name)
	return nil
}

// environments returns the environments variables are looked up in, most
// specific first.
func (e *Engine) environments(ctx context.Context) ([]string, error) {
	env, err := e.store.ActiveEnvironment(ctx)
	if err != nil {
		return nil, err
	}
	if env == "" || env == state.DefaultEnvironment {
		return []string{state.DefaultEnvironment}, nil
	}
	return []string{env, state.DefaultEnvironment}, nil
}
