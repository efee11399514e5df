package driver

import "github.com/TFMV/chdriver/pkg/errors"

// Directive tells the pool framework what to do with the connection after
// an operation
type Directive int

const (
	// DirectiveOK - operation succeeded, connection stays in the pool
	DirectiveOK Directive = iota
	// DirectiveError - operation failed but the connection is still usable
	DirectiveError
	// DirectiveDisconnect - the connection must be discarded and rebuilt
	DirectiveDisconnect
)

func (d Directive) String() string {
	switch d {
	case DirectiveOK:
		return "ok"
	case DirectiveError:
		return "error"
	case DirectiveDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Outcome is the single tagged result of every stateful operation: the
// directive, the (possibly unchanged) connection state, and either a
// payload or an error. Exactly one of Result/Err is set for OK/failure
// outcomes; operations without a payload leave both nil.
type Outcome struct {
	Directive Directive
	State     *ConnState
	Result    *ResultSet
	Err       *errors.Error
}

// OK builds a success outcome
func OK(state *ConnState, result *ResultSet) Outcome {
	return Outcome{Directive: DirectiveOK, State: state, Result: result}
}

// Fail builds a failure outcome that keeps the connection
func Fail(state *ConnState, err *errors.Error) Outcome {
	return Outcome{Directive: DirectiveError, State: state, Err: err}
}

// Discard builds a failure outcome that forces the framework to drop the
// connection
func Discard(state *ConnState, err *errors.Error) Outcome {
	return Outcome{Directive: DirectiveDisconnect, State: state, Err: err}
}

// Status is what the driver reports about a checked-out connection
type Status int

const (
	// StatusIdle is the only status this backend can be in: every call is
	// single-shot, so there is never an in-progress transaction to surface
	StatusIdle Status = iota
)

func (s Status) String() string {
	if s == StatusIdle {
		return "idle"
	}
	return "unknown"
}
