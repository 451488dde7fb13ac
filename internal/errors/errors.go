// Package errors defines the structured error taxonomy used throughout
// minipack. Every failure the pipeline can surface carries the identity of
// the module that triggered it plus the offending specifier or source
// fragment, so callers (and watch mode) can report actionable messages.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType categorizes bundle errors.
type ErrorType string

const (
	ErrorTypeResolution ErrorType = "resolution"
	ErrorTypeSyntax     ErrorType = "syntax"
	ErrorTypeCycle      ErrorType = "cycle"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeUnresolvedImport = "ERR_UNRESOLVED_IMPORT"
	ErrCodeEntryNotFound    = "ERR_ENTRY_NOT_FOUND"
	ErrCodeBadDeclaration   = "ERR_BAD_DECLARATION"
	ErrCodeImportCycle      = "ERR_IMPORT_CYCLE"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeWriteFailed      = "ERR_WRITE_FAILED"
	ErrCodeReadFailed       = "ERR_READ_FAILED"
	ErrCodeInternal         = "ERR_INTERNAL"
)

// BundleError is a structured error with module context.
type BundleError struct {
	Type      ErrorType
	Code      string
	Message   string
	Module    string   // identity of the module that triggered the error
	Specifier string   // offending import specifier, if any
	Fragment  string   // offending source fragment, if any
	Line      int      // 1-based line of the offending declaration, 0 if unknown
	Members   []string // participating modules for cycle errors
	Cause     error
}

// Error implements the error interface.
func (e *BundleError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Module != "" {
		location := e.Module
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *BundleError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison by type and code.
func (e *BundleError) Is(target error) bool {
	var t *BundleError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithLine attaches the declaration line to the error.
func (e *BundleError) WithLine(line int) *BundleError {
	e.Line = line
	return e
}

// Error creation functions

// NewResolutionError reports an unresolvable dependency specifier. The
// importer is the module whose declaration could not be satisfied.
func NewResolutionError(importer, specifier string, cause error) *BundleError {
	return &BundleError{
		Type:      ErrorTypeResolution,
		Code:      ErrCodeUnresolvedImport,
		Message:   fmt.Sprintf("cannot resolve %q imported by %s", specifier, importer),
		Module:    importer,
		Specifier: specifier,
		Cause:     cause,
	}
}

// NewEntryError reports an entry point that does not resolve to readable
// source text.
func NewEntryError(entry string, cause error) *BundleError {
	return &BundleError{
		Type:      ErrorTypeResolution,
		Code:      ErrCodeEntryNotFound,
		Message:   fmt.Sprintf("entry point %q not found", entry),
		Specifier: entry,
		Cause:     cause,
	}
}

// NewSyntaxError reports a malformed import/export declaration.
func NewSyntaxError(module, fragment string) *BundleError {
	return &BundleError{
		Type:     ErrorTypeSyntax,
		Code:     ErrCodeBadDeclaration,
		Message:  fmt.Sprintf("malformed declaration %q", fragment),
		Module:   module,
		Fragment: fragment,
	}
}

// NewCycleError reports a circular import chain under the strict cycle
// policy. Members are listed in first-discovery order.
func NewCycleError(members []string) *BundleError {
	return &BundleError{
		Type:    ErrorTypeCycle,
		Code:    ErrCodeImportCycle,
		Message: "import cycle: " + strings.Join(members, " -> "),
		Members: members,
	}
}

// NewConfigError reports invalid configuration.
func NewConfigError(message string) *BundleError {
	return &BundleError{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeConfigInvalid,
		Message: message,
	}
}

// NewIOError reports a filesystem failure while reading or writing.
func NewIOError(code, message string, cause error) *BundleError {
	return &BundleError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError reports a bug in the bundler itself.
func NewInternalError(message string, cause error) *BundleError {
	return &BundleError{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeInternal,
		Message: message,
		Cause:   cause,
	}
}

// Predicates

// IsResolutionError checks if an error is a resolution failure.
func IsResolutionError(err error) bool {
	return hasType(err, ErrorTypeResolution)
}

// IsSyntaxError checks if an error is a declaration parse failure.
func IsSyntaxError(err error) bool {
	return hasType(err, ErrorTypeSyntax)
}

// IsCycleError checks if an error is a circular import failure.
func IsCycleError(err error) bool {
	return hasType(err, ErrorTypeCycle)
}

func hasType(err error, t ErrorType) bool {
	var be *BundleError
	if errors.As(err, &be) {
		return be.Type == t
	}

	return false
}
