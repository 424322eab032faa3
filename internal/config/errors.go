package config

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// Error code constants.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeFormat      = "E002" // Unsupported file extension
	ErrCodeLoadFailed  = "E004" // YAML or CUE parse failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE evaluation failed

	// Content validation errors
	ErrCodeUnknownDriver = "E201" // Unsupported database driver
	ErrCodeUnknownType   = "E202" // Criterion type not registered
	ErrCodeUnknownParent = "E203" // Parent model not defined
	ErrCodeParentCycle   = "E204" // Parent chain loops
	ErrCodeUnknownModel  = "E205" // Facets declared on an undefined model
	ErrCodeInvalidFacet  = "E206" // Malformed criterion definition
	ErrCodeInvalidLog    = "E207" // Unknown log level or format
)

// LoadError represents a problem with a configuration file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	File    string    // YAML file, when Pos is not set
	Line    int       // YAML line, when Pos is not set
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Code, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrorCode returns the code of a *LoadError, or "" for other errors.
// Uses errors.As to handle wrapped errors.
func ErrorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}
