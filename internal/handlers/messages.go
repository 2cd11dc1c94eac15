// internal/handlers/messages.go
package handlers

import (
	"errors"

	"github.com/mwalan/Trabalho-2-Redes/internal/game"
	"github.com/mwalan/Trabalho-2-Redes/internal/models"
	"github.com/mwalan/Trabalho-2-Redes/internal/room"
)

// Client -> server message types.
const (
	MsgListRooms = "list_rooms"
	MsgCreate    = "create_room"
	MsgJoin      = "join_room"
	MsgLeave     = "leave_room"
	MsgStart     = "start_game"
	MsgPlay      = "play_card"
	MsgDraw      = "draw_card"
	MsgDeclare   = "declare"
)

// Server -> client message types.
const (
	MsgWelcome     = "welcome"
	MsgRoomList    = "room_list"
	MsgRoomCreated = "room_created"
	MsgJoinResult  = "join_result"
	MsgFullState   = "full_state"
	MsgError       = "error"
)

// ClientMessage is the envelope for every incoming request. Fields beyond
// Type are interpreted per message type; unknown fields are ignored.
type ClientMessage struct {
	Type string `json:"type"`

	// Room names the target room for create/join requests.
	Room string `json:"room,omitempty"`

	// HandIndex selects the card for a play_card request. A pointer so a
	// missing field is distinguishable from index zero.
	HandIndex *int `json:"hand_index,omitempty"`

	// ChosenColor accompanies a wild card play.
	ChosenColor models.Color `json:"chosen_color,omitempty"`
}

// ServerMessage is the envelope for every reply and push. Only the fields
// relevant to Type are populated.
type ServerMessage struct {
	Type string `json:"type"`

	SessionID string `json:"session_id,omitempty"`
	Token     string `json:"session_token,omitempty"`

	Rooms []room.RoomInfo `json:"rooms,omitempty"`
	Room  string          `json:"room,omitempty"`

	State *game.Snapshot `json:"state,omitempty"`

	// Kind and Message describe a rejected request.
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

// errorMessage maps a domain error onto an error reply for the originating
// session. Errors without a code fall back to not_found semantics rather
// than leaking internals.
func errorMessage(err error) ServerMessage {
	var coded *models.CodedError
	if errors.As(err, &coded) {
		return ServerMessage{Type: MsgError, Kind: coded.Code, Message: coded.Msg}
	}
	return ServerMessage{Type: MsgError, Kind: models.CodeNotFound, Message: err.Error()}
}
