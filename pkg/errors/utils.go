package errors

import (
	"errors"
	"fmt"
	"strings"
)

// IsTyped reports whether err is (or wraps) our Error type
func IsTyped(err error) bool {
	var target *Error
	return errors.As(err, &target)
}

// AsError extracts the typed error from err, or wraps an untyped failure
// as common.internal. The wrap keeps KindQuery severity so an unrecognized
// failure shape never discards a reusable connection.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	return Wrap(CommonInternal, err, err.Error())
}

// KindOf returns the classification of any error; untyped errors report
// KindQuery, matching the AsError wrap
func KindOf(err error) Kind {
	if typed := AsError(err); typed != nil {
		return typed.Kind()
	}
	return KindQuery
}

// Helper to extract context from our errors
func GetContext(err error) map[string]string {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Context
	}
	return nil
}

// Helper to get error code
func GetCode(err error) string {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Code.String()
	}
	return ""
}

// Helper to format error for logging
func FormatError(err error) string {
	var typed *Error
	if !errors.As(err, &typed) {
		return err.Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("Code: %s", typed.Code))
	parts = append(parts, fmt.Sprintf("Kind: %s", typed.Kind()))
	parts = append(parts, fmt.Sprintf("Message: %s", typed.Message))

	if len(typed.Context) > 0 {
		parts = append(parts, "Context:")
		for k, v := range typed.Context {
			parts = append(parts, fmt.Sprintf("  %s: %v", k, v))
		}
	}

	if typed.Cause != nil {
		parts = append(parts, fmt.Sprintf("Cause: %v", typed.Cause))
	}

	return strings.Join(parts, "\n")
}
