package config

import "github.com/TFMV/chdriver/pkg/errors"

// Error codes for the config package
var (
	// File operation errors
	ErrConfigFileReadFailed    = errors.MustNewCode("config.file_read_failed", errors.KindQuery)
	ErrConfigFileParseFailed   = errors.MustNewCode("config.file_parse_failed", errors.KindQuery)
	ErrConfigFileWriteFailed   = errors.MustNewCode("config.file_write_failed", errors.KindQuery)
	ErrConfigFileMarshalFailed = errors.MustNewCode("config.file_marshal_failed", errors.KindQuery)

	// Validation errors
	ErrSchemeInvalid  = errors.MustNewCode("config.scheme_invalid", errors.KindQuery)
	ErrHostnameEmpty  = errors.MustNewCode("config.hostname_empty", errors.KindQuery)
	ErrPortInvalid    = errors.MustNewCode("config.port_invalid", errors.KindQuery)
	ErrTimeoutInvalid = errors.MustNewCode("config.timeout_invalid", errors.KindQuery)
)
