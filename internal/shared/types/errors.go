package types

import (
	"errors"
	"fmt"
)

var (
	ErrNoTenants       = errors.New("no Costlocker tokens configured")
	ErrUnknownReport   = errors.New("unknown report type")
	ErrUnknownFormat   = errors.New("unknown report format")
	ErrDuplicateReport = errors.New("report type already registered")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrUnknown         = errors.New("unknown error")
)

// ConfigLogicError is a configuration that passes the schema but cannot be
// resolved, e.g. "months" without exactly two custom dates.
type ConfigLogicError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigLogicError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error in %s: %s", e.Field, e.Reason)
}

func (e *ConfigLogicError) Unwrap() error {
	return e.Err
}

// ValidationError is one schema violation of a run config.
type ValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

func (e ValidationError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Description)
}

// ValidationErrors is the full list of violations found in a run config.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	return fmt.Sprintf("%s: %d problem(s)", ErrInvalidConfig, len(e))
}

func (e ValidationErrors) Unwrap() error {
	return ErrInvalidConfig
}

// Strings returns the violations formatted as "field: description".
func (e ValidationErrors) Strings() []string {
	out := make([]string, len(e))
	for i, v := range e {
		out[i] = v.String()
	}
	return out
}
