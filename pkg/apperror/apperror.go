// Package apperror defines the failure kinds shared by the service packages.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnexpected           Kind = "UNEXPECTED_FAILURE"
	KindInvalidArgument      Kind = "INVALID_ARGUMENT"
	KindAccountNotFound      Kind = "ACCOUNT_NOT_FOUND"
	KindAccountAlreadyExists Kind = "ACCOUNT_ALREADY_EXISTS"
	KindInvalidChallenge     Kind = "INVALID_CHALLENGE"
	KindConversationNotFound Kind = "CONVERSATION_NOT_FOUND"
	KindExternalService      Kind = "EXTERNAL_SERVICE_FAILURE"
)

type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches two *Error values of the same kind and message, so a wrapped
// sentinel still satisfies errors.Is against the bare sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf reports the kind of the first *Error in err's chain, or
// KindUnexpected when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}
