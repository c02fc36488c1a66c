package domain

import (
	"context"
	"errors"
	"fmt"
)

// FailureKind classifies a Failure. Stores never branch on it; it exists for
// logging and for adapters that need to map transport errors.
type FailureKind string

const (
	KindNetwork    FailureKind = "network"
	KindServer     FailureKind = "server"
	KindAuth       FailureKind = "auth"
	KindPermission FailureKind = "permission"
	KindAPI        FailureKind = "api"
	KindValidation FailureKind = "validation"
	KindData       FailureKind = "data"
	KindCache      FailureKind = "cache"
	KindCancelled  FailureKind = "cancelled"
	KindUnknown    FailureKind = "unknown"
)

// Failure is the typed error carried by a failed Result.
type Failure struct {
	Kind    FailureKind
	Code    string // stable machine-readable code, e.g. "NETWORK_ERROR"
	Message string
	Details string // optional, preferred over Message when shown to users
	Cause   error  // for logs only
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Code, f.Message, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

func (f *Failure) Unwrap() error { return f.Cause }

// UserMessage returns the text safe to show to the user.
func (f *Failure) UserMessage() string {
	if f.Details != "" {
		return f.Details
	}
	return f.Message
}

// WithDetails returns a copy of f carrying user-facing details.
func (f *Failure) WithDetails(details string) *Failure {
	cp := *f
	cp.Details = details
	return &cp
}

func newFailure(kind FailureKind, code, message string, cause error) *Failure {
	return &Failure{Kind: kind, Code: code, Message: message, Cause: cause}
}

func NetworkFailure(message string, cause error) *Failure {
	return newFailure(KindNetwork, "NETWORK_ERROR", message, cause)
}

func ServerFailure(message string, cause error) *Failure {
	return newFailure(KindServer, "SERVER_ERROR", message, cause)
}

func AuthFailure(message string) *Failure {
	return newFailure(KindAuth, "UNAUTHENTICATED", message, ErrUnauthenticated)
}

func PermissionFailure(message string) *Failure {
	return newFailure(KindPermission, "FORBIDDEN", message, nil)
}

func APIFailure(code, message string) *Failure {
	return newFailure(KindAPI, code, message, nil)
}

func ValidationFailure(message string) *Failure {
	return newFailure(KindValidation, "VALIDATION_ERROR", message, nil)
}

func DataFailure(message string, cause error) *Failure {
	return newFailure(KindData, "DATA_ERROR", message, cause)
}

func CacheFailure(message string, cause error) *Failure {
	return newFailure(KindCache, "CACHE_ERROR", message, cause)
}

func CancelledFailure() *Failure {
	return newFailure(KindCancelled, "CANCELLED", "request cancelled", context.Canceled)
}

func UnknownFailure(cause error) *Failure {
	return newFailure(KindUnknown, "UNKNOWN_ERROR", "something went wrong", cause)
}

// AsFailure classifies any error as a Failure. Nil stays nil.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	switch {
	case errors.Is(err, context.Canceled):
		return CancelledFailure()
	case errors.Is(err, context.DeadlineExceeded):
		return NetworkFailure("request timed out", err)
	case errors.Is(err, ErrUnauthenticated):
		return AuthFailure("please log in again")
	case errors.Is(err, ErrNotFound):
		return APIFailure("NOT_FOUND", "content not found")
	default:
		return UnknownFailure(err)
	}
}

// UserMessage returns the user-facing text of err, or "" for nil.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return AsFailure(err).UserMessage()
}
