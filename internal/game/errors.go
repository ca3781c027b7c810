package game

import (
	"errors"
)

// Kind is the machine-readable error kind reported to clients.
type Kind string

const (
	KindRoomNotFound        Kind = "RoomNotFound"
	KindRoomFull            Kind = "RoomFull"
	KindGameInProgress      Kind = "GameInProgress"
	KindNotHost             Kind = "NotHost"
	KindNeedMorePlayers     Kind = "NeedMorePlayers"
	KindNotYourTurn         Kind = "NotYourTurn"
	KindUnknownPrompt       Kind = "UnknownPrompt"
	KindDuplicateSubmission Kind = "DuplicateSubmission"
	KindEmptyText           Kind = "EmptyText"
	KindContentRejected     Kind = "ContentRejected"
	KindInvalidState        Kind = "InvalidState"
	KindNotInRoom           Kind = "NotInRoom"
	KindRateLimited         Kind = "RateLimited"
	KindCodeSpace           Kind = "CodeSpaceExhausted"
	KindInternal            Kind = "Internal"
)

// Error is an expected, user-facing failure. None of them are fatal.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrRoomNotFound        = &Error{KindRoomNotFound, "Room not found."}
	ErrRoomFull            = &Error{KindRoomFull, "Room is full."}
	ErrGameInProgress      = &Error{KindGameInProgress, "The game has already started."}
	ErrNotHost             = &Error{KindNotHost, "Only the host can do that."}
	ErrNeedMorePlayers     = &Error{KindNeedMorePlayers, "Need at least 2 players."}
	ErrNotYourTurn         = &Error{KindNotYourTurn, "It's not your turn for this prompt."}
	ErrUnknownPrompt       = &Error{KindUnknownPrompt, "Unknown prompt."}
	ErrDuplicateSubmission = &Error{KindDuplicateSubmission, "Already submitted."}
	ErrEmptyText           = &Error{KindEmptyText, "Please write something."}
	ErrContentRejected     = &Error{KindContentRejected, "Please keep it PG-13."}
	ErrInvalidState        = &Error{KindInvalidState, "Not possible right now."}
	ErrNotInRoom           = &Error{KindNotInRoom, "You are not in a room."}
	ErrRateLimited         = &Error{KindRateLimited, "Slow down."}
	ErrCodeSpace           = &Error{KindCodeSpace, "Could not allocate a room code."}
)

// KindOf maps err to its Kind, looking through wrapping.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindInternal
}
