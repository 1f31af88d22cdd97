// Package domainerrors defines coded errors returned by services.
//
// Stores return sentinel errors from pkg/platform/sentinel; services translate
// them into an *Error carrying a Code (the broad class) and, where callers need
// to branch on the precise reason, a Kind. Validation failures may also carry
// field-level details.
package domainerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Code is the broad error class.
type Code string

const (
	CodeValidation           Code = "validation_error"
	CodeInvalidInput         Code = "invalid_input"
	CodeInvariantViolation   Code = "invariant_violation"
	CodeNotFound             Code = "not_found"
	CodeForbidden            Code = "forbidden"
	CodeConflict             Code = "conflict"
	CodeNotEditable          Code = "not_editable"
	CodeConfigurationMissing Code = "configuration_missing"
	CodeAmendmentChainBroken Code = "amendment_chain_broken"
	CodeNotImplemented       Code = "not_implemented"
	CodeTimeout              Code = "timeout"
	CodeInternal             Code = "internal_error"
)

// Kind narrows a Code to a specific reason.
type Kind string

const (
	KindNone                   Kind = ""
	KindAmendmentTargetInvalid Kind = "amendment_target_invalid"
	KindMissingDeadline        Kind = "missing_deadline"
	KindUnsupportedFilingType  Kind = "unsupported_filing_type"
	KindNoMatchingFeeSchedule  Kind = "no_matching_fee_schedule"
	KindSchema                 Kind = "schema"
	KindInvalidPeriod          Kind = "invalid_period"
	KindLocked                 Kind = "locked"
	KindNotEditable            Kind = "not_editable"
)

// FieldError points at a single invalid document field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the coded domain error.
type Error struct {
	Code    Code
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

// Error renders the message and field errors. The cause of an internal error
// is left out so it cannot reach callers; it stays reachable via Unwrap.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, "; "))
	}
	if e.Err != nil && e.Code != CodeInternal {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, msg string) error {
	return &Error{Code: code, Message: msg, Err: err}
}

// NewKind creates a coded error with a specific kind.
func NewKind(code Code, kind Kind, msg string) error {
	return &Error{Code: code, Kind: kind, Message: msg}
}

// Validation creates a CodeValidation error of the given kind.
func Validation(kind Kind, msg string, fields ...FieldError) error {
	return &Error{Code: CodeValidation, Kind: kind, Message: msg, Fields: fields}
}

// As returns the outermost *Error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether any *Error in the chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		de, ok := As(err)
		if !ok {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// Is is shorthand for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// HasKind reports whether any *Error in the chain carries kind.
func HasKind(err error, kind Kind) bool {
	for err != nil {
		de, ok := As(err)
		if !ok {
			return false
		}
		if de.Kind == kind {
			return true
		}
		err = de.Err
	}
	return false
}

// FieldsOf returns the field errors of the outermost *Error, if any.
func FieldsOf(err error) []FieldError {
	if de, ok := As(err); ok {
		return de.Fields
	}
	return nil
}
