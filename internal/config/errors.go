package config

import (
	"errors"
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error codes for configuration failures.
const (
	ErrCodeNotFound   = "CONFIG_NOT_FOUND"
	ErrCodeLoadFailed = "CONFIG_LOAD_FAILED"
	ErrCodeInvalid    = "CONFIG_INVALID"
)

// ConfigError describes a configuration that could not be loaded.
type ConfigError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalid returns true if err is a schema violation.
func IsInvalid(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce) && ce.Code == ErrCodeInvalid
}

// fromCUE converts a CUE error to a ConfigError, keeping the position of
// the first error that has one.
func fromCUE(code string, err error) *ConfigError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ConfigError{Code: code, Message: err.Error()}
	}

	first := errs[0]
	ce := &ConfigError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
