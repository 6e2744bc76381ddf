// Package domainerrors carries the error taxonomy shared by services and
// transports. Services return *Error values; transports map the Code to a
// status and a stable wire identifier.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a failure kind. Codes are stable wire identifiers.
type Code string

// Generic codes.
const (
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeUnauthorized Code = "unauthorized"
	CodeInternal     Code = "internal_error"
	CodeTimeout      Code = "timeout"
)

// Authorization codes: the caller lacks the required role or the registry
// has not been bootstrapped.
const (
	CodeNotAuthorized     Code = "not_authorized"
	CodeNotConfigured     Code = "not_configured"
	CodeAlreadyConfigured Code = "already_configured"
	CodeFeeNotConfigured  Code = "fee_not_configured"
)

// Validation codes: malformed input, caller must correct and resubmit.
const (
	CodeInvalidIdentity      Code = "invalid_identity"
	CodeInvalidCapacity      Code = "invalid_capacity"
	CodeInvalidCategory      Code = "invalid_category"
	CodeInvalidMetadata      Code = "invalid_metadata"
	CodeInvalidOrigin        Code = "invalid_origin"
	CodeInvalidCertification Code = "invalid_certification"
	CodeInvalidQuantity      Code = "invalid_quantity"
	CodeInvalidMinQuantity   Code = "invalid_min_quantity"
	CodeInvalidMaxQuantity   Code = "invalid_max_quantity"
	CodeInvalidOwner         Code = "invalid_owner"
)

// Resource codes: structural limits reached.
const (
	CodeFeeTransferFailed Code = "fee_transfer_failed"
	CodeCapacityExceeded  Code = "capacity_exceeded"
	CodeCategoryIndexFull Code = "category_index_full"
)

// Consistency codes. TransferNotAllowed and InsufficientBalance signal an
// internal invariant breach and are unreachable in a correct ledger.
const (
	CodeAssetNotFound       Code = "asset_not_found"
	CodeTransferNotAllowed  Code = "transfer_not_allowed"
	CodeInsufficientBalance Code = "insufficient_balance"
)

// Class groups codes by cause.
type Class string

const (
	ClassAuthorization Class = "authorization"
	ClassValidation    Class = "validation"
	ClassResource      Class = "resource"
	ClassConsistency   Class = "consistency"
	ClassInternal      Class = "internal"
)

var codeClasses = map[Code]Class{
	CodeBadRequest:           ClassValidation,
	CodeInvalidInput:         ClassValidation,
	CodeUnauthorized:         ClassAuthorization,
	CodeInternal:             ClassInternal,
	CodeTimeout:              ClassInternal,
	CodeNotAuthorized:        ClassAuthorization,
	CodeNotConfigured:        ClassAuthorization,
	CodeAlreadyConfigured:    ClassAuthorization,
	CodeFeeNotConfigured:     ClassAuthorization,
	CodeInvalidIdentity:      ClassValidation,
	CodeInvalidCapacity:      ClassValidation,
	CodeInvalidCategory:      ClassValidation,
	CodeInvalidMetadata:      ClassValidation,
	CodeInvalidOrigin:        ClassValidation,
	CodeInvalidCertification: ClassValidation,
	CodeInvalidQuantity:      ClassValidation,
	CodeInvalidMinQuantity:   ClassValidation,
	CodeInvalidMaxQuantity:   ClassValidation,
	CodeInvalidOwner:         ClassValidation,
	CodeFeeTransferFailed:    ClassResource,
	CodeCapacityExceeded:     ClassResource,
	CodeCategoryIndexFull:    ClassResource,
	CodeAssetNotFound:        ClassConsistency,
	CodeTransferNotAllowed:   ClassConsistency,
	CodeInsufficientBalance:  ClassConsistency,
}

// Class returns the cause class of the code. Unknown codes are internal.
func (c Code) Class() Class {
	if class, ok := codeClasses[c]; ok {
		return class
	}
	return ClassInternal
}

// IsInvariantBreach reports whether the code can only be produced by a
// ledger that disagrees with itself.
func (c Code) IsInvariantBreach() bool {
	return c == CodeTransferNotAllowed || c == CodeInsufficientBalance
}

// Error is a coded domain error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so callers can write
// errors.Is(err, domainerrors.New(code, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New builds a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) error {
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the outermost code in the chain, or CodeInternal for
// uncoded errors. A nil error has no code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost coded error in the chain has code.
func HasCode(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}
