// internal/models/errors.go
package models

// Error codes reported back to the originating session. All are
// recoverable: they never terminate the connection or the room.
const (
	CodeNotFound         = "not_found"
	CodeAlreadyExists    = "already_exists"
	CodeRoomFull         = "room_full"
	CodeGameInProgress   = "game_in_progress"
	CodeNotEnoughPlayers = "not_enough_players"
	CodeNotHost          = "not_host"
	CodeNotYourTurn      = "not_your_turn"
	CodeInvalidIndex     = "invalid_index"
	CodeIllegalPlay      = "illegal_play"
	CodeColorRequired    = "color_required"
)

// CodedError is a rejected-request error carrying a wire-level code so the
// session layer can map it onto an error reply without string matching.
type CodedError struct {
	Code string
	Msg  string
}

func (e *CodedError) Error() string { return e.Msg }

var (
	ErrRoomNotFound     = &CodedError{CodeNotFound, "room not found"}
	ErrRoomExists       = &CodedError{CodeAlreadyExists, "a room with that name already exists"}
	ErrAlreadySeated    = &CodedError{CodeAlreadyExists, "session is already seated in this room"}
	ErrRoomFull         = &CodedError{CodeRoomFull, "room is full"}
	ErrGameInProgress   = &CodedError{CodeGameInProgress, "the game has already started"}
	ErrNotEnoughPlayers = &CodedError{CodeNotEnoughPlayers, "at least two players are required"}
	ErrNotHost          = &CodedError{CodeNotHost, "only the host may start the game"}
	ErrNotYourTurn      = &CodedError{CodeNotYourTurn, "it is not your turn"}
	ErrInvalidIndex     = &CodedError{CodeInvalidIndex, "hand index out of range"}
	ErrIllegalPlay      = &CodedError{CodeIllegalPlay, "that card cannot be played now"}
	ErrColorRequired    = &CodedError{CodeColorRequired, "a color must be chosen for a wild card"}

	ErrGameNotStarted = &CodedError{CodeIllegalPlay, "the game has not started"}
	ErrGameOver       = &CodedError{CodeIllegalPlay, "the game is over"}
)
