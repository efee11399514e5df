package driver

import (
	"context"
	"fmt"
	"testing"

	"github.com/TFMV/chdriver/driver/config"
	"github.com/TFMV/chdriver/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBackend scripts backend behavior per test and records what it was
// asked to do
type mockBackend struct {
	sendFunc  func(ctx context.Context, query Query, params ExecutionParams, req Request) (*Response, error)
	calls     int
	lastQuery Query
	lastReq   Request
}

func (m *mockBackend) Send(ctx context.Context, query Query, params ExecutionParams, req Request) (*Response, error) {
	m.calls++
	m.lastQuery = query
	m.lastReq = req
	return m.sendFunc(ctx, query, params, req)
}

func healthyBackend() *mockBackend {
	return &mockBackend{
		sendFunc: func(ctx context.Context, query Query, params ExecutionParams, req Request) (*Response, error) {
			return &Response{Command: Selected, Columns: []string{"1"}, Rows: [][]interface{}{{1}}}, nil
		},
	}
}

func newTestConn(t *testing.T, backend Backend) *Conn {
	t.Helper()
	conn, err := New(&Options{Backend: backend, Logger: zerolog.Nop()})
	require.NoError(t, err)
	return conn
}

func connectedState(t *testing.T, conn *Conn) *ConnState {
	t.Helper()
	state, err := conn.Connect(context.Background(), config.DefaultConfig())
	require.NoError(t, err)
	return state
}

func TestNewRequiresBackend(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(&Options{})
	assert.Error(t, err)
}

func TestConnectSuccess(t *testing.T) {
	backend := healthyBackend()
	conn := newTestConn(t, backend)

	state, err := conn.Connect(context.Background(), config.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8123/", state.BaseURL)
	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, "SELECT 1", backend.lastQuery.Statement)
	assert.Equal(t, "default", backend.lastReq.Database)
	assert.Equal(t, config.DefaultTimeout, backend.lastReq.Timeout)
}

func TestConnectCarriesCredentials(t *testing.T) {
	backend := healthyBackend()
	conn := newTestConn(t, backend)

	cfg := config.DefaultConfig()
	cfg.Username = "reader"
	cfg.Password = "secret"

	_, err := conn.Connect(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "reader", backend.lastReq.Username)
	assert.Equal(t, "secret", backend.lastReq.Password)
}

func TestConnectUnreachableNeverOk(t *testing.T) {
	refused := errors.New(errors.MustNewCode("test.refused", errors.KindConnection), "connection refused")
	backend := &mockBackend{
		sendFunc: func(ctx context.Context, query Query, params ExecutionParams, req Request) (*Response, error) {
			return nil, refused
		},
	}
	conn := newTestConn(t, backend)

	state, err := conn.Connect(context.Background(), config.DefaultConfig())
	assert.Nil(t, state)
	assert.Error(t, err)
}

func TestConnectErrorRawShape(t *testing.T) {
	raw := fmt.Errorf("dial tcp: connection refused")
	backend := &mockBackend{
		sendFunc: func(ctx context.Context, query Query, params ExecutionParams, req Request) (*Response, error) {
			return nil, raw
		},
	}
	conn := newTestConn(t, backend)

	_, err := conn.Connect(context.Background(), config.DefaultConfig())

	// Default policy preserves the backend's raw error shape
	assert.Same(t, raw, err)
}

func TestConnectErrorClassifiedShape(t *testing.T) {
	raw := fmt.Errorf("dial tcp: connection refused")
	backend := &mockBackend{
		sendFunc: func(ctx context.Context, query Query, params ExecutionParams, req Request) (*Response, error) {
			return nil, raw
		},
	}

	conn, err := New(&Options{
		Backend:            backend,
		Logger:             zerolog.Nop(),
		ConnectErrorPolicy: ClassifiedConnectErrors,
	})
	require.NoError(t, err)

	_, err = conn.Connect(context.Background(), config.DefaultConfig())
	require.Error(t, err)

	typed := errors.AsError(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.KindQuery, typed.Kind())
	assert.ErrorIs(t, typed, raw)
}

func TestConnectRejectsInvalidConfig(t *testing.T) {
	backend := healthyBackend()
	conn := newTestConn(t, backend)

	cfg := config.DefaultConfig()
	cfg.Scheme = "ftp"

	_, err := conn.Connect(context.Background(), cfg)
	assert.Error(t, err)
	assert.Zero(t, backend.calls)
}

func TestConnectRejectsNonSelectedHealthCheck(t *testing.T) {
	backend := &mockBackend{
		sendFunc: func(ctx context.Context, query Query, params ExecutionParams, req Request) (*Response, error) {
			return &Response{Command: Updated, Count: 0}, nil
		},
	}
	conn := newTestConn(t, backend)

	_, err := conn.Connect(context.Background(), config.DefaultConfig())
	require.Error(t, err)
	assert.Equal(t, "driver.health_check_failed", errors.GetCode(err))
}

func TestDisconnectAlwaysSucceeds(t *testing.T) {
	conn := newTestConn(t, healthyBackend())
	state := connectedState(t, conn)

	assert.NoError(t, conn.Disconnect(context.Background(), nil, state))
	assert.NoError(t, conn.Disconnect(context.Background(), fmt.Errorf("prior failure"), state))
}

func TestReconnectReplacesState(t *testing.T) {
	backend := healthyBackend()
	conn := newTestConn(t, backend)
	state := connectedState(t, conn)

	newCfg := config.DefaultConfig()
	newCfg.Hostname = "ch.internal"

	replaced, err := conn.Reconnect(context.Background(), newCfg, state)
	require.NoError(t, err)

	assert.Equal(t, "http://ch.internal:8123/", replaced.BaseURL)
	assert.NotSame(t, state, replaced)
	// The old state is untouched
	assert.Equal(t, "http://localhost:8123/", state.BaseURL)
}

func TestReconnectPropagatesConnectFailure(t *testing.T) {
	raw := fmt.Errorf("dial tcp: connection refused")
	failing := &mockBackend{
		sendFunc: func(ctx context.Context, query Query, params ExecutionParams, req Request) (*Response, error) {
			return nil, raw
		},
	}
	conn := newTestConn(t, failing)

	state := &ConnState{Config: config.DefaultConfig(), BaseURL: "http://localhost:8123/"}
	replaced, err := conn.Reconnect(context.Background(), config.DefaultConfig(), state)

	assert.Nil(t, replaced)
	assert.Same(t, raw, err)
}

func TestPingHealthy(t *testing.T) {
	backend := healthyBackend()
	conn := newTestConn(t, backend)
	state := connectedState(t, conn)

	out := conn.Ping(context.Background(), state)

	assert.Equal(t, DirectiveOK, out.Directive)
	assert.Same(t, state, out.State)
	assert.Nil(t, out.Result)
	assert.Equal(t, "SELECT 1", backend.lastQuery.Statement)
}

func TestPingConnectionFailureDisconnects(t *testing.T) {
	conn := newTestConn(t, healthyBackend())
	state := connectedState(t, conn)

	down := errors.New(errors.MustNewCode("test.refused", errors.KindConnection), "connection refused")
	conn.backend = &mockBackend{
		sendFunc: func(ctx context.Context, query Query, params ExecutionParams, req Request) (*Response, error) {
			return nil, down
		},
	}

	out := conn.Ping(context.Background(), state)

	assert.Equal(t, DirectiveDisconnect, out.Directive)
	assert.Same(t, down, out.Err)
}

func TestPingQueryFailureStillDisconnects(t *testing.T) {
	// Ping never leaves a connection degraded-but-retained: even a
	// query-level failure escalates to a disconnect directive.
	conn := newTestConn(t, healthyBackend())
	state := connectedState(t, conn)

	conn.backend = &mockBackend{
		sendFunc: func(ctx context.Context, query Query, params ExecutionParams, req Request) (*Response, error) {
			return nil, fmt.Errorf("some untyped failure")
		},
	}

	out := conn.Ping(context.Background(), state)
	assert.Equal(t, DirectiveDisconnect, out.Directive)
	require.NotNil(t, out.Err)
	assert.Equal(t, errors.KindQuery, out.Err.Kind())
}

func TestCheckoutCheckinIdentity(t *testing.T) {
	conn := newTestConn(t, healthyBackend())
	state := connectedState(t, conn)

	first := conn.Checkout(state)
	assert.Equal(t, DirectiveOK, first.Directive)
	assert.Same(t, state, first.State)

	back := conn.Checkin(state)
	assert.Equal(t, DirectiveOK, back.Directive)
	assert.Same(t, state, back.State)

	// Lease cycles accumulate no side effects
	again := conn.Checkout(state)
	assert.Equal(t, first, again)
}

func TestStatusAlwaysIdle(t *testing.T) {
	conn := newTestConn(t, healthyBackend())
	state := connectedState(t, conn)

	assert.Equal(t, StatusIdle, conn.Status(state))
}

func TestPrepareIdentity(t *testing.T) {
	conn := newTestConn(t, healthyBackend())
	state := connectedState(t, conn)

	query := Query{Statement: "SELECT * FROM events"}
	prepared, out := conn.Prepare(query, state)

	assert.Equal(t, query, prepared)
	assert.Equal(t, DirectiveOK, out.Directive)
	assert.Same(t, state, out.State)
}

func TestExecuteSelected(t *testing.T) {
	conn := newTestConn(t, healthyBackend())
	state := connectedState(t, conn)

	conn.backend = &mockBackend{
		sendFunc: func(ctx context.Context, query Query, params ExecutionParams, req Request) (*Response, error) {
			return &Response{
				Command: Selected,
				Columns: []string{"a", "b"},
				Rows:    [][]interface{}{{1, 2}, {3, 4}},
			}, nil
		},
	}

	out := conn.Execute(context.Background(), Query{Statement: "SELECT a, b FROM t"}, ExecutionParams{}, state)

	require.Equal(t, DirectiveOK, out.Directive)
	require.NotNil(t, out.Result)
	assert.Equal(t, Selected, out.Result.Command)
	assert.Equal(t, []string{"a", "b"}, out.Result.Columns)
	assert.Equal(t, [][]interface{}{{1, 2}, {3, 4}}, out.Result.Rows)
	assert.Equal(t, 2, out.Result.RowCount)
}

func TestExecuteUpdated(t *testing.T) {
	conn := newTestConn(t, healthyBackend())
	state := connectedState(t, conn)

	conn.backend = &mockBackend{
		sendFunc: func(ctx context.Context, query Query, params ExecutionParams, req Request) (*Response, error) {
			return &Response{Command: Updated, Count: 5}, nil
		},
	}

	out := conn.Execute(context.Background(), Query{Statement: "INSERT INTO t VALUES (1)"}, ExecutionParams{}, state)

	require.Equal(t, DirectiveOK, out.Directive)
	require.NotNil(t, out.Result)
	assert.Equal(t, Updated, out.Result.Command)
	assert.Equal(t, []string{"count"}, out.Result.Columns)
	assert.Equal(t, [][]interface{}{{5}}, out.Result.Rows)
	assert.Equal(t, 1, out.Result.RowCount)
}

func TestExecuteQueryFailureKeepsConnection(t *testing.T) {
	conn := newTestConn(t, healthyBackend())
	state := connectedState(t, conn)

	conn.backend = &mockBackend{
		sendFunc: func(ctx context.Context, query Query, params ExecutionParams, req Request) (*Response, error) {
			return nil, errors.New(errors.MustNewCode("test.syntax", errors.KindQuery), "syntax error near FROM")
		},
	}

	out := conn.Execute(context.Background(), Query{Statement: "SELEC 1"}, ExecutionParams{}, state)

	assert.Equal(t, DirectiveError, out.Directive)
	assert.Same(t, state, out.State)
}

func TestExecuteConnectionFailureDisconnects(t *testing.T) {
	conn := newTestConn(t, healthyBackend())
	state := connectedState(t, conn)

	conn.backend = &mockBackend{
		sendFunc: func(ctx context.Context, query Query, params ExecutionParams, req Request) (*Response, error) {
			return nil, errors.New(errors.CommonTimeout, "request timed out")
		},
	}

	out := conn.Execute(context.Background(), Query{Statement: "SELECT 1"}, ExecutionParams{}, state)
	assert.Equal(t, DirectiveDisconnect, out.Directive)
}

func TestExecuteSingleAttempt(t *testing.T) {
	conn := newTestConn(t, healthyBackend())
	state := connectedState(t, conn)

	backend := &mockBackend{
		sendFunc: func(ctx context.Context, query Query, params ExecutionParams, req Request) (*Response, error) {
			return nil, errors.New(errors.CommonTimeout, "request timed out")
		},
	}
	conn.backend = backend

	conn.Execute(context.Background(), Query{Statement: "SELECT 1"}, ExecutionParams{}, state)
	assert.Equal(t, 1, backend.calls)
}
