package driver

import "github.com/TFMV/chdriver/pkg/errors"

// Classify maps a backend failure to the outcome handed to the pool
// framework. Untyped failures are wrapped with query-level severity first,
// so an unrecognized failure shape never drops a reusable connection. Only
// KindConnection forces a disconnect; statement-level failures (bad
// syntax, missing table) and unsupported-feature errors keep the
// connection.
func Classify(state *ConnState, err error) Outcome {
	typed := errors.AsError(err)

	if typed.Kind() == errors.KindConnection {
		return Discard(state, typed)
	}

	return Fail(state, typed)
}
