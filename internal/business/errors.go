package business

import (
	"errors"
	"fmt"
)

// Code identifies a class of business-rule failure. Codes are stable and
// safe to expose to API clients.
type Code string

const (
	CodePaymentFailed    Code = "PAYMENT_FAILED"
	CodeLimitExceeded    Code = "TRANSACTION_LIMIT_EXCEEDED"
	CodeInvalidAmount    Code = "INVALID_AMOUNT"
	CodeRequiredField    Code = "REQUIRED_FIELD"
	CodeInvalidFormat    Code = "INVALID_FORMAT"
	CodeInvalidEmail     Code = "INVALID_EMAIL"
	CodePasswordMismatch Code = "PASSWORD_MISMATCH"
	CodeInvalidRange     Code = "INVALID_RANGE"
	CodeServerError      Code = "SERVER_ERROR"
)

// Error is a typed business-rule violation returned as a value by the
// validation layer and the wallet orchestrators. It carries enough
// structured context to render a user-facing message and to decide
// whether resubmitting the same input can succeed.
type Error struct {
	Code      Code
	Message   string
	Retryable bool

	// Reason qualifies PAYMENT_FAILED style errors.
	Reason string
	// Field names the offending input for field-level validation errors.
	Field string
	// Limit, Attempted and LimitType describe TRANSACTION_LIMIT_EXCEEDED.
	Limit     int64
	Attempted int64
	LimitType string
	// Min and Max bound INVALID_AMOUNT and INVALID_RANGE when present.
	Min *int64
	Max *int64
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Reason)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Field)
	}
	return string(e.Code)
}

// PaymentFailed reports a payment that cannot proceed for the given reason.
func PaymentFailed(reason string) *Error {
	return &Error{
		Code:    CodePaymentFailed,
		Message: "お支払いを完了できませんでした",
		Reason:  reason,
	}
}

// LimitExceeded reports an amount above a fixed ceiling. limitType names the
// ceiling that was hit, e.g. "transaction".
func LimitExceeded(limit, attempted int64, limitType string) *Error {
	return &Error{
		Code:      CodeLimitExceeded,
		Message:   fmt.Sprintf("1回のお取引の上限は%d円です", limit),
		Limit:     limit,
		Attempted: attempted,
		LimitType: limitType,
	}
}

// InvalidAmount reports an amount outside the permitted bounds. Either bound
// may be nil when open-ended.
func InvalidAmount(min, max *int64) *Error {
	return &Error{
		Code:    CodeInvalidAmount,
		Message: "金額が正しくありません",
		Min:     min,
		Max:     max,
	}
}

// RequiredField reports a missing mandatory input.
func RequiredField(field string) *Error {
	return &Error{
		Code:    CodeRequiredField,
		Message: "必須項目が入力されていません",
		Field:   field,
	}
}

// InvalidFormat reports an input that does not match its expected shape.
func InvalidFormat(field, reason string) *Error {
	return &Error{
		Code:    CodeInvalidFormat,
		Message: "入力形式が正しくありません",
		Field:   field,
		Reason:  reason,
	}
}

// InvalidEmail reports a malformed email address.
func InvalidEmail(field string) *Error {
	return &Error{
		Code:    CodeInvalidEmail,
		Message: "メールアドレスの形式が正しくありません",
		Field:   field,
	}
}

// PasswordMismatch reports a password confirmation that differs from the
// password itself.
func PasswordMismatch() *Error {
	return &Error{
		Code:    CodePasswordMismatch,
		Message: "パスワードが一致しません",
		Field:   "passwordConfirm",
	}
}

// InvalidRange reports a numeric input outside [min, max].
func InvalidRange(field string, min, max int64) *Error {
	return &Error{
		Code:    CodeInvalidRange,
		Message: fmt.Sprintf("%dから%dの間で入力してください", min, max),
		Field:   field,
		Min:     &min,
		Max:     &max,
	}
}

// ServerError wraps an unexpected failure caught at an orchestrator boundary.
// It is the only retryable code: the input was fine, the attempt was not.
func ServerError(cause error) *Error {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	return &Error{
		Code:      CodeServerError,
		Message:   "時間をおいて再度お試しください",
		Retryable: true,
		Reason:    reason,
	}
}

// As extracts a business error from an error chain.
func As(err error) (*Error, bool) {
	var bizErr *Error
	if errors.As(err, &bizErr) {
		return bizErr, true
	}
	return nil, false
}
