// Package rpcerr defines the closed error-kind taxonomy every agent speaks
// on the wire, per the protocol's error model: a stable machine-readable
// kind plus a human message, never a raw exception.
package rpcerr

import (
	"github.com/cockroachdb/errors"
)

// Kind is one of the fixed error kinds agents exchange over JSON-RPC.
type Kind string

const (
	// Transport-level
	ConnectionRefused       Kind = "CONNECTION_REFUSED"
	Timeout                 Kind = "TIMEOUT"
	MalformedMessage        Kind = "MALFORMED_MESSAGE"
	ProtocolVersionMismatch Kind = "PROTOCOL_VERSION_MISMATCH"
	AuthFailed              Kind = "AUTH_FAILED"

	// Registration
	LeagueFull         Kind = "LEAGUE_FULL"
	RegistrationClosed Kind = "REGISTRATION_CLOSED"
	AlreadyRegistered  Kind = "ALREADY_REGISTERED"
	DuplicateRefereeID Kind = "DUPLICATE_REFEREE_ID"
	UnsupportedGame    Kind = "UNSUPPORTED_GAME"

	// Dispatch
	CapacityExceeded     Kind = "CAPACITY_EXCEEDED"
	NoRefereesAvailable  Kind = "NO_REFEREES_AVAILABLE"
	NoPlayersRegistered  Kind = "NO_PLAYERS_REGISTERED"

	// Match
	MatchNotFound         Kind = "MATCH_NOT_FOUND"
	InviteRejected        Kind = "INVITE_REJECTED"
	InviteTimeout         Kind = "INVITE_TIMEOUT"
	MoveTimeout           Kind = "MOVE_TIMEOUT"
	InvalidMove           Kind = "INVALID_MOVE"
	DuplicateMove         Kind = "DUPLICATE_MOVE"
	GameAlreadyStarted    Kind = "GAME_ALREADY_STARTED"
	UnknownGame           Kind = "UNKNOWN_GAME"
	MatchAlreadyReported  Kind = "MATCH_ALREADY_REPORTED"

	// Controller
	InvalidPhase            Kind = "INVALID_PHASE"
	StandingsInconsistency  Kind = "STANDINGS_INCONSISTENCY"
)

// transportKinds are retryable per the retry policy; domain errors never are.
var transportKinds = map[Kind]bool{
	ConnectionRefused: true,
	Timeout:           true,
}

// Error is the typed error every tool handler and client returns.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Cause implements the cockroachdb/errors cause interface so New/Wrap keep
// stack traces attached to the underlying failure.
func (e *Error) Cause() error { return e.cause }

// New builds a domain error of the given kind with a stack-carrying cause.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: errors.Newf(format, args...).Error(),
		cause:   errors.NewWithDepth(1, string(kind)),
	}
}

// Wrap attaches a kind to an underlying error, preserving its stack trace.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:    kind,
		Message: errors.Wrapf(err, format, args...).Error(),
		cause:   err,
	}
}

// Retryable reports whether the client-side retry policy (§5) may retry
// a call that failed with this kind. Domain errors are never retryable.
func Retryable(kind Kind) bool {
	return transportKinds[kind]
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// AsError extracts the *Error from err, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
