package http

import "github.com/TFMV/chdriver/pkg/errors"

// Error codes for the HTTP backend. The kind attached to each code is
// what the driver's classifier acts on: only backend.* codes marked as
// connection errors force the pool to rebuild the connection.
var (
	ErrRequestBuildFailed = errors.MustNewCode("backend.request_build_failed", errors.KindQuery)
	ErrUnreachable        = errors.MustNewCode("backend.unreachable", errors.KindConnection)
	ErrAuthFailed         = errors.MustNewCode("backend.auth_failed", errors.KindConnection)
	ErrServerStatus       = errors.MustNewCode("backend.server_status", errors.KindQuery)
	ErrMalformedResponse  = errors.MustNewCode("backend.malformed_response", errors.KindQuery)
)
