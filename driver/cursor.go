package driver

import "github.com/TFMV/chdriver/pkg/errors"

// Server-side cursors do not exist in a single-shot request/response
// protocol; result sets are fully materialized per call. The three cursor
// hooks reject unconditionally, with an error kind that never triggers a
// disconnect.

const cursorsNotSupportedMessage = "cursors_not_supported"

// Declare rejects opening a server-side cursor
func (c *Conn) Declare(query Query, params ExecutionParams, state *ConnState) Outcome {
	return Fail(state, errors.New(ErrCursorsNotSupported, cursorsNotSupportedMessage))
}

// Fetch rejects reading from a server-side cursor
func (c *Conn) Fetch(query Query, cursor interface{}, state *ConnState) Outcome {
	return Fail(state, errors.New(ErrCursorsNotSupported, cursorsNotSupportedMessage))
}

// Deallocate rejects releasing a server-side cursor
func (c *Conn) Deallocate(query Query, cursor interface{}, state *ConnState) Outcome {
	return Fail(state, errors.New(ErrCursorsNotSupported, cursorsNotSupportedMessage))
}
