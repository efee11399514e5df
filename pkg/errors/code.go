package errors

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind classifies an error for connection-recovery purposes. The pool
// framework discards and rebuilds a connection only for KindConnection
// failures; everything else leaves the connection usable.
type Kind int

const (
	// KindQuery is the zero value on purpose: an error of unknown
	// provenance must never force a disconnect.
	KindQuery Kind = iota
	KindConnection
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindQuery:
		return "query_exception"
	case KindConnection:
		return "connection_exception"
	case KindUnsupported:
		return "unsupported_feature"
	default:
		return "unknown"
	}
}

// Code represents a validated error code with package prefix and an
// attached Kind
type Code struct {
	value string
	kind  Kind
}

// Common error codes that can be used across packages
var (
	CommonInternal     = MustNewCode("common.internal", KindQuery)
	CommonTimeout      = MustNewCode("common.timeout", KindConnection)
	CommonUnauthorized = MustNewCode("common.unauthorized", KindConnection)
	CommonUnsupported  = MustNewCode("common.unsupported", KindUnsupported)
	CommonInvalidInput = MustNewCode("common.invalid_input", KindQuery)
)

// Validation regex: package.name format
var codeRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*\.[a-z][a-z0-9_]*$`)

// NewCode creates a new validated Code carrying the given Kind
func NewCode(s string, kind Kind) (Code, error) {
	if !codeRegex.MatchString(s) {
		return Code{}, fmt.Errorf("invalid code format '%s': must be 'package.name' (lowercase, underscores, dots only)", s)
	}
	return Code{value: s, kind: kind}, nil
}

// MustNewCode creates a new Code or panics if invalid
func MustNewCode(s string, kind Kind) Code {
	code, err := NewCode(s, kind)
	if err != nil {
		panic(err)
	}
	return code
}

// String returns the string representation of the Code
func (c Code) String() string {
	return c.value
}

// Kind returns the classification attached to the code
func (c Code) Kind() Kind {
	return c.kind
}

// Package returns the package prefix from the code
func (c Code) Package() string {
	if idx := strings.Index(c.value, "."); idx != -1 {
		return c.value[:idx]
	}
	return ""
}

// Name returns the name part from the code
func (c Code) Name() string {
	if idx := strings.Index(c.value, "."); idx != -1 {
		return c.value[idx+1:]
	}
	return c.value
}

// IsValid returns true if the code is properly formatted
func (c Code) IsValid() bool {
	return codeRegex.MatchString(c.value)
}

// Equals checks if two codes are equal
func (c Code) Equals(other Code) bool {
	return c.value == other.value
}
