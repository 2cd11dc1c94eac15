// internal/models/player.go
package models

import (
	"context"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Player is one connected session inside a room. The ID doubles as the
// session identity issued at connect time; it is independent of the
// transport address, so a reconnecting client can resume it via its
// session token.
type Player struct {
	ID   uuid.UUID `json:"id"`
	Hand []Card    `json:"-"`

	Conn *websocket.Conn `json:"-"`

	// Out is the per-session outbound queue drained by the connection's
	// write pump. Broadcasts enqueue here so no room lock is ever held
	// across a network write.
	Out chan []byte `json:"-"`

	// Cancel tears down the connection's context; the write pump invokes
	// it on write/ping failure so the read loop exits into disconnect
	// cleanup.
	Cancel context.CancelFunc `json:"-"`
}

// Send pushes an already-marshalled payload onto the session's outbound
// queue without blocking. A full queue drops the payload silently; the
// next state broadcast supersedes it, and a genuinely stuck connection
// surfaces through the write pump's ping failure.
func (p *Player) Send(data []byte) {
	if p.Out == nil {
		return
	}
	select {
	case p.Out <- data:
	default:
	}
}
