// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mwalan/Trabalho-2-Redes/internal/auth"
	"github.com/mwalan/Trabalho-2-Redes/internal/game"
	"github.com/mwalan/Trabalho-2-Redes/internal/middleware"
	"github.com/mwalan/Trabalho-2-Redes/internal/models"
	"github.com/mwalan/Trabalho-2-Redes/internal/room"
)

const outboundQueueSize = 16

// NotifyPlayer marshals a snapshot and enqueues it on the session's
// outbound queue. It is the room.StateNotifier the registry is built with,
// so rooms never touch the wire directly.
func NotifyPlayer(logger *logrus.Logger) room.StateNotifier {
	return func(p *models.Player, snap game.Snapshot) {
		msg := ServerMessage{Type: MsgFullState, State: &snap}
		data, err := json.Marshal(msg)
		if err != nil {
			logger.Warnf("failed to marshal state for session %s: %v", p.ID, err)
			return
		}
		p.Send(data)
	}
}

// session tracks one connection's state across the read loop.
type session struct {
	player *models.Player
	cur    *room.Room
}

// WSHandler upgrades the HTTP connection to WebSocket, establishes the
// session identity and runs the read loop. Every action the client can
// take flows through here.
func WSHandler(logger *logrus.Logger, reg *room.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"uno"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "uno" {
			logger.Warnf("Client connected with invalid subprotocol: %s", c.Subprotocol())
			c.Close(websocket.StatusCode(BadSubprotocolError), "Client must use the 'uno' subprotocol.")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path, c.Subprotocol())

		sessionID := resolveSession(logger, r)
		token, err := auth.CreateJWT(sessionID.String())
		if err != nil {
			logger.Warnf("Failed to create session token for %s: %v", sessionID, err)
			c.Close(websocket.StatusInternalError, "Failed to establish session.")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		p := &models.Player{
			ID:     sessionID,
			Conn:   c,
			Out:    make(chan []byte, outboundQueueSize),
			Cancel: cancel,
		}

		go writePump(ctx, c, p, logger)

		welcome := ServerMessage{Type: MsgWelcome, SessionID: sessionID.String(), Token: token}
		if data, err := json.Marshal(welcome); err == nil {
			p.Send(data)
		}

		sess := &session{player: p}
		readErr := readPump(ctx, c, sess, reg, logger)

		// Sole cleanup path: voluntary leave already cleared sess.cur, a
		// dropped or misbehaving connection lands here with it still set.
		if sess.cur != nil {
			sess.cur.Leave(p.ID)
			sess.cur = nil
		}
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)
	}
}

// resolveSession resumes an existing session identity from the
// session_token query parameter, or mints a new one.
func resolveSession(logger *logrus.Logger, r *http.Request) uuid.UUID {
	tokenStr := r.URL.Query().Get("session_token")
	if tokenStr != "" {
		sub, err := auth.AuthenticateJWT(tokenStr)
		if err == nil {
			if id, perr := uuid.Parse(sub); perr == nil {
				return id
			}
		}
		logger.Warnf("Ignoring invalid session token from %s: %v", r.RemoteAddr, err)
	}
	return uuid.New()
}

// readPump parses and dispatches client messages until the connection or
// context dies. Malformed JSON and unknown message types terminate the
// session; the client is out of sync with the protocol and reconnecting is
// the only sane recovery.
func readPump(ctx context.Context, c *websocket.Conn, sess *session, reg *room.Registry, logger *logrus.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, data, err := c.Read(ctx)
		if err != nil {
			return err
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Session %s sent malformed JSON: %v", sess.player.ID, err)
			c.Close(websocket.StatusCode(MalformedMessageError), "Malformed message.")
			return err
		}

		if done := dispatch(sess, reg, msg, logger); done {
			c.Close(websocket.StatusCode(MalformedMessageError), "Unrecognized message.")
			return nil
		}
	}
}

// dispatch routes one parsed message. Returns true when the session should
// be closed (unknown message type).
func dispatch(sess *session, reg *room.Registry, msg ClientMessage, logger *logrus.Logger) bool {
	p := sess.player

	switch msg.Type {
	case MsgListRooms:
		reply(p, ServerMessage{Type: MsgRoomList, Rooms: reg.List()})

	case MsgCreate:
		if msg.Room == "" {
			logger.Warnf("Session %s sent create_room without a name", p.ID)
			return true
		}
		if _, err := reg.Create(msg.Room); err != nil {
			reply(p, errorMessage(err))
			return false
		}
		reply(p, ServerMessage{Type: MsgRoomCreated, Room: msg.Room})

	case MsgJoin:
		if sess.cur != nil {
			reply(p, errorMessage(&models.CodedError{
				Code: models.CodeAlreadyExists,
				Msg:  "already in a room, leave it first",
			}))
			return false
		}
		r, err := reg.Get(msg.Room)
		if err != nil {
			reply(p, errorMessage(err))
			return false
		}
		if err := r.Join(p); err != nil {
			reply(p, errorMessage(err))
			return false
		}
		sess.cur = r
		reply(p, ServerMessage{Type: MsgJoinResult, Room: r.Name})

	case MsgLeave:
		if sess.cur != nil {
			sess.cur.Leave(p.ID)
			sess.cur = nil
		}

	case MsgStart:
		if sess.cur == nil {
			reply(p, errorMessage(models.ErrRoomNotFound))
			return false
		}
		if err := sess.cur.Start(p.ID); err != nil {
			reply(p, errorMessage(err))
		}

	case MsgPlay:
		if sess.cur == nil {
			reply(p, errorMessage(models.ErrRoomNotFound))
			return false
		}
		if msg.HandIndex == nil {
			reply(p, errorMessage(models.ErrInvalidIndex))
			return false
		}
		if err := sess.cur.Play(p.ID, *msg.HandIndex, msg.ChosenColor); err != nil {
			reply(p, errorMessage(err))
		}

	case MsgDraw:
		if sess.cur == nil {
			reply(p, errorMessage(models.ErrRoomNotFound))
			return false
		}
		if err := sess.cur.DrawCard(p.ID); err != nil {
			reply(p, errorMessage(err))
		}

	case MsgDeclare:
		if sess.cur == nil {
			reply(p, errorMessage(models.ErrRoomNotFound))
			return false
		}
		sess.cur.Declare(p.ID)

	default:
		logger.Warnf("Session %s sent unknown message type %q", p.ID, msg.Type)
		return true
	}
	return false
}

func reply(p *models.Player, msg ServerMessage) {
	if data, err := json.Marshal(msg); err == nil {
		p.Send(data)
	}
}

// writePump drains the session's outbound queue onto the wire and pings
// every 30 seconds. A failed write or ping cancels the session context,
// which unblocks the read loop into disconnect cleanup; that is how ghost
// connections are detected without a reaper goroutine.
func writePump(ctx context.Context, c *websocket.Conn, p *models.Player, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case data, ok := <-p.Out:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("Failed to write to session %s: %v", p.ID, err)
				p.Cancel()
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("Failed to ping session %s: %v. Assuming disconnect.", p.ID, err)
				p.Cancel()
				return
			}
		}
	}
}
