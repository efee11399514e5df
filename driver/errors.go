package driver

import "github.com/TFMV/chdriver/pkg/errors"

// Error codes for the driver package
var (
	// Lifecycle errors
	ErrBackendMissing    = errors.MustNewCode("driver.backend_missing", errors.KindQuery)
	ErrHealthCheckFailed = errors.MustNewCode("driver.health_check_failed", errors.KindConnection)

	// Feature-gap errors
	ErrCursorsNotSupported = errors.MustNewCode("driver.cursors_not_supported", errors.KindUnsupported)
)
