// Package apperr defines the error taxonomy shared by the store client,
// the state machine, and the console. Every failure an operator can see
// is one of these kinds; nothing else escapes an action boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	Transport         Kind = "transport"          // network or HTTP failure against the order store
	Decode            Kind = "decode"             // store payload could not be mapped to the domain shape
	NotFound          Kind = "not_found"          // referenced order is gone
	Conflict          Kind = "conflict"           // concurrent modification reported by the store
	InvalidTransition Kind = "invalid_transition" // illegal status edge, no network call attempted
	Invalid           Kind = "invalid"            // bad input (config, request parameters)
	Internal          Kind = "internal"
)

type Error struct {
	Kind      Kind
	PublicMsg string // safe to show to the operator
	Err       error  // internal cause, for logs only
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.PublicMsg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.PublicMsg)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func TransportErr(publicMsg string, err error) *Error {
	return &Error{Kind: Transport, PublicMsg: publicMsg, Err: err}
}

func DecodeErr(publicMsg string, err error) *Error {
	return &Error{Kind: Decode, PublicMsg: publicMsg, Err: err}
}

func NotFoundErr(publicMsg string) *Error {
	return &Error{Kind: NotFound, PublicMsg: publicMsg}
}

func ConflictErr(publicMsg string) *Error {
	return &Error{Kind: Conflict, PublicMsg: publicMsg}
}

func InvalidErr(publicMsg string) *Error {
	return &Error{Kind: Invalid, PublicMsg: publicMsg}
}

// As unwraps err to an *Error if one is anywhere in the chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf reports the Kind of err, or Internal for unclassified errors.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return Internal
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, k Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == k
}

func HTTPStatus(err error) int {
	if ae, ok := As(err); ok {
		switch ae.Kind {
		case Invalid, InvalidTransition:
			return http.StatusBadRequest
		case NotFound:
			return http.StatusNotFound
		case Conflict:
			return http.StatusConflict
		case Transport, Decode:
			return http.StatusBadGateway
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

func PublicMessage(err error) string {
	if ae, ok := As(err); ok && ae.PublicMsg != "" {
		return ae.PublicMsg
	}
	return "An unexpected error occurred."
}
