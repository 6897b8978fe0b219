package draft

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the ways a draft operation can fail.
type ErrorKind string

const (
	// ErrorKindPreconditionFailed means the draft is not in a state that
	// allows the operation (wrong roster size, already started, etc).
	ErrorKindPreconditionFailed ErrorKind = "PRECONDITION_FAILED"
	// ErrorKindNotStarted means the operation requires an in-progress draft.
	ErrorKindNotStarted ErrorKind = "NOT_STARTED"
	// ErrorKindWrongTurn means the submitting team does not hold the current
	// pick slot. ExpectedTeam names who does.
	ErrorKindWrongTurn ErrorKind = "WRONG_TURN"
	// ErrorKindTeamNotFound means the named team is not registered in the draft.
	ErrorKindTeamNotFound ErrorKind = "TEAM_NOT_FOUND"
	// ErrorKindPlayerNotFound means the player id does not exist in the pool.
	ErrorKindPlayerNotFound ErrorKind = "PLAYER_NOT_FOUND"
	// ErrorKindPlayerUnavailable means the player was already picked in this draft.
	ErrorKindPlayerUnavailable ErrorKind = "PLAYER_UNAVAILABLE"
	// ErrorKindNotAuthenticated means the caller supplied no identity.
	ErrorKindNotAuthenticated ErrorKind = "NOT_AUTHENTICATED"
	// ErrorKindNotAuthorized means the caller may not run a privileged operation.
	ErrorKindNotAuthorized ErrorKind = "NOT_AUTHORIZED"
	// ErrorKindAlreadyTerminal means the draft is completed or cancelled.
	ErrorKindAlreadyTerminal ErrorKind = "ALREADY_TERMINAL"
)

// Error is a draft domain failure with a machine-readable kind. Messages
// name the current truth (who is on the clock, which player is taken) so a
// caller can resync without reloading the whole draft.
type Error struct {
	Kind         ErrorKind `json:"kind"`
	Message      string    `json:"message"`
	ExpectedTeam string    `json:"expected_team,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// KindOf returns the ErrorKind carried by err, or "" when err is not a
// draft Error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a draft Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// AsError returns the draft Error inside err, if any.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func newWrongTurnError(expected, attempted string) *Error {
	return &Error{
		Kind:         ErrorKindWrongTurn,
		Message:      fmt.Sprintf("not %s's turn, %s is on the clock", attempted, expected),
		ExpectedTeam: expected,
	}
}
