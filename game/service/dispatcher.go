// Package service contains the protocol dispatcher and the connection
// registry: the layer between the websocket transport and the game
// sessions. The dispatcher enforces, for every message, the ordering
// decode → shape check → registry lookup → session lock → state guard →
// mutate → unlock → send.
package service

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"seabattle/game/engine"
	"seabattle/game/session"
)

// outbound pairs a message with the connection it goes to. Handlers build
// their sends under the session lock and flush them after releasing it, so
// no send ever happens while a lock is held.
type outbound struct {
	to  session.Conn
	msg interface{}
}

// Dispatcher routes decoded client messages to the session state machine
// and decides which connections receive which responses. It implements the
// transport's EventHandler.
type Dispatcher struct {
	sessions *session.Manager
	registry *ConnectionRegistry
	archive  *session.FileArchive
}

// NewDispatcher creates a dispatcher over the given session registry.
// archive may be nil to disable match archiving.
func NewDispatcher(sessions *session.Manager, archive *session.FileArchive) *Dispatcher {
	return &Dispatcher{
		sessions: sessions,
		registry: NewConnectionRegistry(),
		archive:  archive,
	}
}

// Registry exposes the connection registry, mainly for tests and stats.
func (d *Dispatcher) Registry() *ConnectionRegistry {
	return d.registry
}

// OnConnect is called by the transport when a connection is established.
// Nothing is bound until the client creates or joins a session.
func (d *Dispatcher) OnConnect(conn session.Conn) {
	log.Printf("connection opened")
}

// OnDisconnect revokes the connection's binding, clears its slot in the
// session and, if the other player is still connected, tells them the
// opponent is gone. The session itself stays registered for the expiry
// sweep.
func (d *Dispatcher) OnDisconnect(conn session.Conn) {
	sess, role, ok := d.registry.Unbind(conn)
	if !ok {
		log.Printf("connection closed (unbound)")
		return
	}

	var opponentConn session.Conn
	func() {
		sess.Lock()
		defer sess.Unlock()

		sess.PlayerByRole(role).Conn = nil
		var opponent *session.Player
		if role == session.RolePlayer1 {
			opponent = sess.Player2
		} else {
			opponent = sess.Player1
		}
		if opponent.Connected() {
			opponentConn = opponent.Conn
		}
	}()

	log.Printf("connection closed (room %s, %s)", sess.RoomCode, role)
	if opponentConn != nil {
		opponentConn.Send(errorMessage("opponent disconnected"))
	}
}

// OnBinary rejects a binary frame; the connection stays open.
func (d *Dispatcher) OnBinary(conn session.Conn) {
	conn.Send(errorMessage("binary messages are not supported"))
}

// OnMessage handles one inbound text frame. Unexpected panics are converted
// to a generic error response; no lock is held across this boundary because
// every locked section below releases via defer.
func (d *Dispatcher) OnMessage(conn session.Conn, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic while handling message: %v", r)
			conn.Send(errorMessage("internal server error"))
		}
	}()

	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		conn.Send(errorMessage("invalid JSON"))
		return
	}

	switch msg.Type {
	case TypePing:
		conn.Send(pongMessage())

	case TypeCreateSession:
		d.handleCreateSession(conn)

	case TypeJoinSession:
		d.handleJoinSession(conn, msg)

	case TypePlaceShips:
		d.handlePlaceShips(conn, msg)

	case TypeShot:
		d.handleShot(conn, msg)

	default:
		conn.Send(errorMessage("unknown message type: " + msg.Type))
	}
}

// Sweep removes expired sessions and revokes any registry entries still
// pointing at them, keeping the two tables consistent. It returns the
// number of sessions removed.
func (d *Dispatcher) Sweep(maxAge time.Duration) int {
	removed := d.sessions.CleanupExpiredSessions(maxAge)
	for _, sess := range removed {
		d.registry.UnbindSession(sess)
	}
	return len(removed)
}

func (d *Dispatcher) handleCreateSession(conn session.Conn) {
	if _, _, bound := d.registry.Lookup(conn); bound {
		conn.Send(errorMessage("connection already bound to a session"))
		return
	}

	sess := d.sessions.CreateSession(conn)
	d.registry.Bind(conn, sess, session.RolePlayer1)

	log.Printf("session created (room %s)", sess.RoomCode)
	conn.Send(sessionCreatedMessage(sess.RoomCode))
}

func (d *Dispatcher) handleJoinSession(conn session.Conn, msg ClientMessage) {
	if _, _, bound := d.registry.Lookup(conn); bound {
		conn.Send(errorMessage("connection already bound to a session"))
		return
	}
	if msg.RoomCode == "" {
		conn.Send(errorMessage("missing field 'roomCode'"))
		return
	}

	sess, err := d.sessions.JoinSession(msg.RoomCode, conn)
	if err != nil {
		// No binding happens on a failed join; the connection may retry.
		switch {
		case errors.Is(err, session.ErrRoomNotFound):
			conn.Send(errorMessage("room not found"))
		case errors.Is(err, session.ErrRoomFull):
			conn.Send(errorMessage("room is full"))
		default:
			conn.Send(errorMessage(err.Error()))
		}
		return
	}
	d.registry.Bind(conn, sess, session.RolePlayer2)

	var out []outbound
	func() {
		sess.Lock()
		defer sess.Unlock()
		for _, p := range []*session.Player{sess.Player1, sess.Player2} {
			if p.Connected() {
				out = append(out, outbound{p.Conn, gameStartMessage(session.RolePlayer1)})
			}
		}
	}()

	log.Printf("player joined (room %s)", sess.RoomCode)
	flush(out)
}

func (d *Dispatcher) handlePlaceShips(conn session.Conn, msg ClientMessage) {
	sess, role, bound := d.registry.Lookup(conn)
	if !bound {
		conn.Send(errorMessage("session not found"))
		return
	}

	ships, errMsg := parseShips(msg.Ships)
	if errMsg != "" {
		conn.Send(errorMessage(errMsg))
		return
	}

	var out []outbound
	func() {
		sess.Lock()
		defer sess.Unlock()

		boardSize := sess.PlayerByRole(role).Board.Size
		for _, ship := range ships {
			for _, cell := range ship {
				if cell.X() < 0 || cell.X() >= boardSize || cell.Y() < 0 || cell.Y() >= boardSize {
					out = append(out, outbound{conn, errorMessage("ship coordinate out of bounds")})
					return
				}
			}
		}

		bothReady, err := sess.PlaceShips(role, ships)
		if err != nil {
			out = append(out, outbound{conn, placementError(err)})
			return
		}

		out = append(out, outbound{conn, shipsPlacedMessage()})
		if bothReady {
			for _, p := range []*session.Player{sess.Player1, sess.Player2} {
				if p.Connected() {
					out = append(out, outbound{p.Conn, bothPlayersReadyMessage()})
				}
			}
			if current := sess.CurrentPlayer(); current.Connected() {
				out = append(out, outbound{current.Conn, yourTurnMessage()})
			}
		}
	}()

	flush(out)
}

func (d *Dispatcher) handleShot(conn session.Conn, msg ClientMessage) {
	sess, role, bound := d.registry.Lookup(conn)
	if !bound {
		conn.Send(errorMessage("session not found"))
		return
	}
	if msg.X == nil || msg.Y == nil {
		conn.Send(errorMessage("missing coordinates x or y"))
		return
	}
	x, y := *msg.X, *msg.Y

	var out []outbound
	var record *session.MatchRecord
	func() {
		sess.Lock()
		defer sess.Unlock()

		if sess.State != session.StateInGame {
			out = append(out, outbound{conn, errorMessage("game has not started")})
			return
		}
		if sess.CurrentPlayer().Role != role {
			out = append(out, outbound{conn, errorMessage("not your turn")})
			return
		}

		// The opponent reference must be taken before processing the shot:
		// a miss advances the turn.
		target := sess.Opponent()
		shot := engine.Coord{x, y}
		if !target.Board.InBounds(shot) {
			out = append(out, outbound{conn, errorMessage("shot out of bounds")})
			return
		}
		if target.Board.HasShot(shot) {
			out = append(out, outbound{conn, errorMessage("cell already shot")})
			return
		}

		result, err := sess.ProcessShot(x, y)
		if err != nil {
			out = append(out, outbound{conn, errorMessage(err.Error())})
			return
		}

		// The shooter sees the target board without unhit positions; the
		// target sees their own board in full.
		out = append(out, outbound{conn, stateMessage(ModeMyShot, engine.MyShotView(target.Board))})
		if target.Connected() {
			out = append(out, outbound{target.Conn, stateMessage(ModeEnemyShot, engine.EnemyShotView(target.Board))})
		}

		if result == engine.Win {
			for _, p := range []*session.Player{sess.Player1, sess.Player2} {
				if p.Connected() {
					out = append(out, outbound{p.Conn, gameOverMessage(role, p.Stats.View())})
				}
			}
			record = &session.MatchRecord{
				RoomCode:     sess.RoomCode,
				Winner:       role,
				Player1Stats: sess.Player1.Stats.View(),
				Player2Stats: sess.Player2.Stats.View(),
				CreatedAt:    sess.CreatedAt,
				FinishedAt:   time.Now(),
			}
			return
		}

		if next := sess.CurrentPlayer(); next.Connected() {
			out = append(out, outbound{next.Conn, yourTurnMessage()})
		}
	}()

	flush(out)

	if record != nil {
		log.Printf("game over (room %s, winner %s)", record.RoomCode, record.Winner)
		if d.archive != nil {
			if err := d.archive.Save(*record); err != nil {
				log.Printf("failed to archive match %s: %v", record.RoomCode, err)
			}
		}
	}
}

// parseShips validates the raw ships payload: a non-empty array of ships,
// each a non-empty array of [x, y] pairs. Bounds are checked by the caller
// against the board; deeper placement rules are deliberately left to the
// client (see engine.ValidateShipPlacement).
func parseShips(raw json.RawMessage) ([][]engine.Coord, string) {
	if len(raw) == 0 {
		return nil, "missing field 'ships'"
	}

	var cells [][][]int
	if err := json.Unmarshal(raw, &cells); err != nil {
		return nil, "field 'ships' must be an array of coordinate arrays"
	}
	if len(cells) == 0 {
		return nil, "field 'ships' must not be empty"
	}

	ships := make([][]engine.Coord, 0, len(cells))
	for _, shipCells := range cells {
		if len(shipCells) == 0 {
			return nil, "ship must have at least one coordinate"
		}
		ship := make([]engine.Coord, 0, len(shipCells))
		for _, cell := range shipCells {
			if len(cell) != 2 {
				return nil, "coordinate must be an array of 2 elements"
			}
			ship = append(ship, engine.Coord{cell[0], cell[1]})
		}
		ships = append(ships, ship)
	}
	return ships, ""
}

// placementError maps session errors from PlaceShips to client wording.
func placementError(err error) ErrorMessage {
	switch {
	case errors.Is(err, session.ErrAlreadyPlaced):
		return errorMessage("ships already placed")
	case errors.Is(err, session.ErrWrongState):
		return errorMessage("invalid game state")
	default:
		return errorMessage(err.Error())
	}
}

// flush performs the queued sends. Called only after every lock is
// released; Send itself never blocks (the transport buffers outbound
// frames).
func flush(out []outbound) {
	for _, o := range out {
		o.to.Send(o.msg)
	}
}
