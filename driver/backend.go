package driver

import (
	"context"
	"time"

	"github.com/TFMV/chdriver/driver/config"
)

// Request carries the per-connection parameters a backend needs for one
// call. Derived from the connection state; the backend holds no state of
// its own between calls.
type Request struct {
	BaseURL  string
	Timeout  time.Duration
	Username string
	Password string
	Database string
}

// Response is the backend's normalized answer to a single statement
type Response struct {
	Command Command
	Columns []string
	Rows    [][]interface{}
	Count   int
}

// Backend executes one statement against the query endpoint. A Send is a
// single blocking attempt bounded by req.Timeout; implementations must not
// retry internally. Failures should be returned as typed *errors.Error so
// the classifier can pick a recovery directive; untyped errors are treated
// as query-level.
type Backend interface {
	Send(ctx context.Context, query Query, params ExecutionParams, req Request) (*Response, error)
}

// ConnState is one logical connection: its configuration plus the base
// address derived from it. Never mutated after Connect; Reconnect builds a
// replacement instead.
type ConnState struct {
	Config  *config.Config
	BaseURL string
}

// request derives the backend call parameters for this connection
func (s *ConnState) request() Request {
	return Request{
		BaseURL:  s.BaseURL,
		Timeout:  s.Config.Timeout,
		Username: s.Config.Username,
		Password: s.Config.Password,
		Database: s.Config.Database,
	}
}
