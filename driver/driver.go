// Package driver adapts a stateless HTTP query backend to the callback
// contract of a pooled-connection framework. The framework owns all
// concurrency and lease discipline; every method here is synchronous and
// runs to completion, and connection state is replaced rather than mutated
// so no internal locking is needed.
package driver

import (
	"context"

	"github.com/TFMV/chdriver/driver/config"
	"github.com/TFMV/chdriver/pkg/errors"
	"github.com/rs/zerolog"
)

// ConnectErrorPolicy controls the shape of connect-time failures.
// Execute-time failures always pass through the classifier; historically
// connect-time failures were returned raw, and some framework integrations
// depend on that.
type ConnectErrorPolicy int

const (
	// RawConnectErrors returns connect failures in the backend's own shape
	RawConnectErrors ConnectErrorPolicy = iota
	// ClassifiedConnectErrors normalizes connect failures to typed errors,
	// same as the execute path
	ClassifiedConnectErrors
)

// Driver is the fixed set of lifecycle and query hooks a pool framework
// invokes, one method per operation. Alternate backends substitute here
// without touching the framework-facing contract.
type Driver interface {
	Connect(ctx context.Context, cfg *config.Config) (*ConnState, error)
	Disconnect(ctx context.Context, cause error, state *ConnState) error
	Reconnect(ctx context.Context, cfg *config.Config, state *ConnState) (*ConnState, error)
	Ping(ctx context.Context, state *ConnState) Outcome
	Checkout(state *ConnState) Outcome
	Checkin(state *ConnState) Outcome
	Status(state *ConnState) Status

	Prepare(query Query, state *ConnState) (Query, Outcome)
	Execute(ctx context.Context, query Query, params ExecutionParams, state *ConnState) Outcome

	Declare(query Query, params ExecutionParams, state *ConnState) Outcome
	Fetch(query Query, cursor interface{}, state *ConnState) Outcome
	Deallocate(query Query, cursor interface{}, state *ConnState) Outcome

	Begin(state *ConnState) Outcome
	Commit(state *ConnState) Outcome
	Rollback(state *ConnState) Outcome
	Close(state *ConnState) Outcome
}

// Options configures a Conn
type Options struct {
	Backend            Backend
	Logger             zerolog.Logger
	ConnectErrorPolicy ConnectErrorPolicy
}

// Conn implements Driver against an HTTP query backend
type Conn struct {
	backend Backend
	logger  zerolog.Logger
	policy  ConnectErrorPolicy
}

var _ Driver = (*Conn)(nil)

// New creates a driver connection adapter
func New(opt *Options) (*Conn, error) {
	if opt == nil || opt.Backend == nil {
		return nil, errors.New(ErrBackendMissing, "a backend is required")
	}

	return &Conn{
		backend: opt.Backend,
		logger:  opt.Logger,
		policy:  opt.ConnectErrorPolicy,
	}, nil
}

// Connect derives the base address from cfg and verifies the backend is
// reachable with the given credentials by running the fixed health check.
// On failure no state is created; the error shape follows the configured
// ConnectErrorPolicy.
func (c *Conn) Connect(ctx context.Context, cfg *config.Config) (*ConnState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	state := &ConnState{Config: cfg, BaseURL: cfg.BaseURL()}

	c.logger.Debug().Str("base_url", state.BaseURL).Msg("Connecting to query backend")

	resp, err := c.backend.Send(ctx, healthCheckQuery, healthCheckParams, state.request())
	if err != nil {
		c.logger.Debug().Err(err).Msg("Health check failed")
		if c.policy == ClassifiedConnectErrors {
			return nil, errors.AsError(err)
		}
		return nil, err
	}

	if resp.Command != Selected {
		return nil, errors.New(ErrHealthCheckFailed, "health check did not return a result set")
	}

	c.logger.Info().Str("base_url", state.BaseURL).Msg("Connected to query backend")
	return state, nil
}

// Disconnect always succeeds: the backend is stateless per call, so there
// is no per-connection resource to release
func (c *Conn) Disconnect(ctx context.Context, cause error, state *ConnState) error {
	if cause != nil {
		c.logger.Debug().Err(cause).Str("base_url", state.BaseURL).Msg("Disconnecting")
	}
	return nil
}

// Reconnect replaces the connection wholesale: disconnect (which cannot
// fail), then a fresh connect with the new configuration
func (c *Conn) Reconnect(ctx context.Context, cfg *config.Config, state *ConnState) (*ConnState, error) {
	_ = c.Disconnect(ctx, nil, state)
	return c.Connect(ctx, cfg)
}

// Ping runs the health check through the execute path. A healthy backend
// returns the state unchanged; any failure becomes a disconnect directive,
// never a degraded-but-retained connection.
func (c *Conn) Ping(ctx context.Context, state *ConnState) Outcome {
	out := c.Execute(ctx, healthCheckQuery, healthCheckParams, state)
	if out.Directive == DirectiveOK {
		return OK(state, nil)
	}
	return Discard(state, out.Err)
}

// Checkout hands the connection to a borrower. The framework enforces the
// single-borrower discipline; nothing to track here.
func (c *Conn) Checkout(state *ConnState) Outcome {
	return OK(state, nil)
}

// Checkin returns the connection to the pool
func (c *Conn) Checkin(state *ConnState) Outcome {
	return OK(state, nil)
}

// Status always reports idle: single-shot calls leave no in-progress
// transaction or busy state to surface
func (c *Conn) Status(state *ConnState) Status {
	return StatusIdle
}

// Prepare is an identity pass-through; there is no server-side preparation
// step, so the same Query value is reused verbatim on every execution
func (c *Conn) Prepare(query Query, state *ConnState) (Query, Outcome) {
	return query, OK(state, nil)
}

// Execute runs one statement as a single blocking backend call and
// normalizes the response. No retries here; the framework decides what to
// do with the returned directive.
func (c *Conn) Execute(ctx context.Context, query Query, params ExecutionParams, state *ConnState) Outcome {
	c.logger.Debug().Str("statement", query.Statement).Msg("Executing query")

	resp, err := c.backend.Send(ctx, query, params, state.request())
	if err != nil {
		return Classify(state, err)
	}

	switch resp.Command {
	case Updated:
		return OK(state, UpdatedResult(resp.Count))
	default:
		return OK(state, SelectedResult(resp.Columns, resp.Rows))
	}
}
