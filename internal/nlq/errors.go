// Package nlq turns a classified natural-language intent into parameterized,
// tenant-isolated SQL. It is a pure function library: no execution, no
// drivers, no shared mutable state.
package nlq

import "fmt"

// ErrorKind identifies why a generation attempt was aborted
type ErrorKind string

const (
	ErrUnknownTemplate      ErrorKind = "unknown_template"
	ErrMissingParameter     ErrorKind = "missing_parameter"
	ErrInvalidUUID          ErrorKind = "invalid_uuid"
	ErrInvalidDate          ErrorKind = "invalid_date"
	ErrInvalidEnum          ErrorKind = "invalid_enum"
	ErrInvalidNumber        ErrorKind = "invalid_number"
	ErrRenderIncomplete     ErrorKind = "template_render_incomplete"
	ErrExpectedTableMissing ErrorKind = "expected_table_missing"
	ErrInjectionPattern     ErrorKind = "injection_pattern_detected"
	ErrConstraintViolation  ErrorKind = "parameter_constraint_violation"
	ErrSafetyValidation     ErrorKind = "safety_validation_failed"
)

// Constraint names which of the parameter checks failed
type Constraint string

const (
	ConstraintTimeWindow   Constraint = "time_window"
	ConstraintResultLimit  Constraint = "result_limit"
	ConstraintGroupBy      Constraint = "group_by"
	ConstraintFilterField  Constraint = "filter_field"
	ConstraintFilterValue  Constraint = "filter_value"
	ConstraintTenantFilter Constraint = "tenant_filter"
)

// Error is the single error type the generator produces. Every failure is
// terminal for the generation attempt; nothing is downgraded to a warning.
type Error struct {
	Kind       ErrorKind
	Constraint Constraint // set only for ErrConstraintViolation
	Message    string
}

func (e *Error) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Constraint, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func constraintError(c Constraint, format string, args ...any) *Error {
	return &Error{Kind: ErrConstraintViolation, Constraint: c, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the ErrorKind of err, or "" if err is not a generation error
func KindOf(err error) ErrorKind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ""
}
