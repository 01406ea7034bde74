// Package errors provides the error taxonomy of the bridge.
// All error types support error unwrapping via errors.As() and errors.Is(),
// and convert themselves to the structured entities.ErrorDetail returned to hosts.
package errors

import (
	stdErrors "errors"
	"fmt"
	"strconv"

	"github.com/archernet/callbridge/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// DetailedError is implemented by error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to the structured ErrorDetail.
// The outermost structured error in the chain wins, so a CallbackError
// wrapping a guest's ErrorDetail is reported as a callback error.
// Unknown errors are categorized as internal.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	for e := err; e != nil; e = stdErrors.Unwrap(e) {
		switch d := e.(type) {
		case DetailedError:
			return d.ToErrorDetail()
		case *entities.ErrorDetail:
			return d
		}
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// ArityError reports a call with fewer arguments than the contract requires.
type ArityError struct {
	Function string
	Min      int
	Got      int
}

func (e *ArityError) Error() string {
	msg := fmt.Sprintf("need %d args, got %d", e.Min, e.Got)
	if e.Function != "" {
		return e.Function + ": " + msg
	}
	return msg
}

// ToErrorDetail implements DetailedError.
func (e *ArityError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("arity", e.Error()).
		WithCode(e.Function).
		WithDetails(map[string]any{"min": e.Min, "got": e.Got})
}

// TypeMismatchError reports an argument whose variant differs from the contract.
// Position is -1 when the value was not a positional argument.
type TypeMismatchError struct {
	Function string
	Position int
	Expected entities.Kind
	Got      entities.Kind
}

func (e *TypeMismatchError) Error() string {
	var msg string
	if e.Position >= 0 {
		msg = fmt.Sprintf("argument %d must be %s, got %s", e.Position, e.Expected, e.Got)
	} else {
		msg = fmt.Sprintf("expected %s, got %s", e.Expected, e.Got)
	}
	if e.Function != "" {
		return e.Function + ": " + msg
	}
	return msg
}

// ToErrorDetail implements DetailedError.
func (e *TypeMismatchError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("type_mismatch", e.Error()).
		WithCode(e.Function).
		WithDetails(map[string]any{
			"position": e.Position,
			"expected": e.Expected.String(),
			"got":      e.Got.String(),
		})
}

// ConversionError reports a value of the right variant that cannot be
// converted, e.g. a string that is not valid UTF-8.
type ConversionError struct {
	Err      error
	Function string
	Position int
	Kind     entities.Kind
}

func (e *ConversionError) Error() string {
	var msg string
	if e.Position >= 0 {
		msg = fmt.Sprintf("cannot convert argument %d (%s): %v", e.Position, e.Kind, e.Err)
	} else {
		msg = fmt.Sprintf("cannot convert %s value: %v", e.Kind, e.Err)
	}
	if e.Function != "" {
		return e.Function + ": " + msg
	}
	return msg
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConversionError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("conversion", e.Error()).
		WithCode(e.Function).
		WithDetails(map[string]any{"position": e.Position, "kind": e.Kind.String()})
}

// CallbackError reports that an invoked host function threw.
// Message carries the host-reported text.
type CallbackError struct {
	Err      error
	Function string
	Message  string
}

func (e *CallbackError) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("%s: callback threw: %s", e.Function, e.Message)
	}
	return "callback threw: " + e.Message
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *CallbackError) ToErrorDetail() *entities.ErrorDetail {
	detail := entities.NewErrorDetail("callback", e.Error()).WithCode(e.Function)
	if e.Err != nil {
		detail.Wrapped = ToErrorDetail(e.Err)
	}
	return detail
}

// NotFoundError reports a call to a name that is not exposed.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return "unknown exposed function: " + strconv.Quote(e.Name)
}

// ToErrorDetail implements DetailedError.
func (e *NotFoundError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "not_found", Code: e.Name}
}

// InternalError reports an unexpected failure inside the bridge, such as a
// recovered panic or a guest memory fault.
type InternalError struct {
	Err      error
	Function string
	Message  string
	Stack    []byte
}

func (e *InternalError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Function != "" {
		return fmt.Sprintf("%s: internal error: %s", e.Function, msg)
	}
	return "internal error: " + msg
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *InternalError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "internal", Code: e.Function, Stack: e.Stack}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}

// WireFormatError represents a wire format encoding/decoding error.
type WireFormatError struct {
	Err       error
	Operation string
	Type      string
}

func (e *WireFormatError) Error() string {
	return fmt.Sprintf("wire format %s failed for %s: %v", e.Operation, e.Type, e.Err)
}

func (e *WireFormatError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *WireFormatError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "internal", Code: "wire_format"}
}
