// Package session manages match lifecycle: the GameSession state machine,
// the room-code registry, and archival of finished matches.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"seabattle/game/engine"
)

// State is the phase of a match.
type State int

const (
	StateWaitingForPlayer State = iota
	StatePlacingShips
	StateInGame
	StateFinished
)

// String returns a readable name for the state.
func (s State) String() string {
	switch s {
	case StateWaitingForPlayer:
		return "WAITING_FOR_PLAYER"
	case StatePlacingShips:
		return "PLACING_SHIPS"
	case StateInGame:
		return "IN_GAME"
	case StateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Role identifies one of the two player slots.
type Role string

const (
	RolePlayer1 Role = "player1"
	RolePlayer2 Role = "player2"
)

// Conn is the handle a session keeps for a currently connected player.
// Send must not block; the websocket transport satisfies it with a buffered
// outbound channel. The session never owns the connection's lifetime:
// presence of a non-nil Conn is the sole signal of "currently connected".
type Conn interface {
	Send(v interface{})
}

// Player is one slot in a session. Conn becomes nil when the player's
// connection closes; the Player itself lives as long as the session.
type Player struct {
	ID          string
	Role        Role
	Conn        Conn
	Board       *engine.Board
	ShipsPlaced bool
	Stats       engine.Stats
}

// NewPlayer creates a player bound to the given connection with an empty
// board.
func NewPlayer(role Role, conn Conn, boardSize int) *Player {
	return &Player{
		ID:    uuid.NewString(),
		Role:  role,
		Conn:  conn,
		Board: engine.NewBoard(boardSize),
	}
}

// Connected reports whether the player currently has a live connection.
func (p *Player) Connected() bool {
	return p != nil && p.Conn != nil
}

var (
	// ErrWrongState is returned for gameplay messages that are invalid in
	// the session's current phase.
	ErrWrongState = errors.New("invalid game state")

	// ErrAlreadyPlaced is returned when a player sends PLACE_SHIPS twice.
	ErrAlreadyPlaced = errors.New("ships already placed")
)

// GameSession is one match between two players. Every field is guarded by
// the session's own mutex; callers acquire it via Lock/Unlock around any
// read or mutation and release it before performing sends.
type GameSession struct {
	mu sync.Mutex

	RoomCode     string
	Player1      *Player
	Player2      *Player
	State        State
	CurrentTurn  int // 1 or 2
	CreatedAt    time.Time
	LastActivity time.Time
}

// Lock acquires the session's exclusion lock.
func (s *GameSession) Lock() { s.mu.Lock() }

// Unlock releases the session's exclusion lock.
func (s *GameSession) Unlock() { s.mu.Unlock() }

// Touch refreshes the activity timestamp. Activity is driven by gameplay
// messages only, never by connection presence. Caller holds the lock.
func (s *GameSession) Touch() {
	s.LastActivity = time.Now()
}

// PlayerByRole resolves a role to its player slot. Caller holds the lock.
func (s *GameSession) PlayerByRole(role Role) *Player {
	if role == RolePlayer1 {
		return s.Player1
	}
	return s.Player2
}

// CurrentPlayer returns the player whose turn it is. Caller holds the lock.
func (s *GameSession) CurrentPlayer() *Player {
	if s.CurrentTurn == 1 {
		return s.Player1
	}
	return s.Player2
}

// Opponent returns the player who is not on turn. Callers that are about to
// process a shot must capture this before the shot, since a miss advances
// the turn. Caller holds the lock.
func (s *GameSession) Opponent() *Player {
	if s.CurrentTurn == 1 {
		return s.Player2
	}
	return s.Player1
}

// PlaceShips stores a fleet for the given role and reports whether this
// placement completed the placing phase. Caller holds the lock; the ships
// have already passed the dispatcher's format checks.
func (s *GameSession) PlaceShips(role Role, ships [][]engine.Coord) (bothReady bool, err error) {
	if s.State != StatePlacingShips {
		return false, ErrWrongState
	}
	player := s.PlayerByRole(role)
	if player.ShipsPlaced {
		return false, ErrAlreadyPlaced
	}
	if !engine.ValidateShipPlacement(ships) {
		return false, ErrWrongState
	}

	player.Board.Ships = player.Board.Ships[:0]
	for _, cells := range ships {
		player.Board.Ships = append(player.Board.Ships, engine.Ship{Cells: cells})
	}
	player.ShipsPlaced = true
	s.Touch()

	if s.Player1.ShipsPlaced && s.Player2 != nil && s.Player2.ShipsPlaced {
		s.State = StateInGame
		return true, nil
	}
	return false, nil
}

// ProcessShot applies a shot from the current player at (x, y).
//
// It records the shot on the opponent's board, updates the shooter's stats,
// advances the turn on a miss only, and moves the session to FINISHED on a
// win. Caller holds the lock, has verified the shot is in bounds and not a
// duplicate, and has captured Opponent() beforehand if it needs the target
// after the call.
func (s *GameSession) ProcessShot(x, y int) (engine.ShotResult, error) {
	if s.State != StateInGame {
		return engine.Miss, ErrWrongState
	}

	shooter := s.CurrentPlayer()
	target := s.Opponent()

	result := target.Board.ApplyShot(engine.Coord{x, y})

	shooter.Stats.Shots++
	switch result {
	case engine.Miss:
		shooter.Stats.Misses++
		if s.CurrentTurn == 1 {
			s.CurrentTurn = 2
		} else {
			s.CurrentTurn = 1
		}
	case engine.Hit:
		shooter.Stats.Hits++
	case engine.Sunk:
		shooter.Stats.Hits++
		shooter.Stats.SunkShips++
	case engine.Win:
		shooter.Stats.Hits++
		shooter.Stats.SunkShips++
		s.State = StateFinished
	}

	s.Touch()
	return result, nil
}

// Summary is a read-only snapshot of a session for the ops surfaces.
type Summary struct {
	RoomCode         string    `json:"room_code"`
	State            string    `json:"state"`
	CurrentTurn      int       `json:"current_turn"`
	Player1Connected bool      `json:"player1_connected"`
	Player2Joined    bool      `json:"player2_joined"`
	Player2Connected bool      `json:"player2_connected"`
	Player1Placed    bool      `json:"player1_placed"`
	Player2Placed    bool      `json:"player2_placed"`
	CreatedAt        time.Time `json:"created_at"`
	LastActivity     time.Time `json:"last_activity"`
}

// Snapshot returns a consistent summary of the session. It takes the
// session lock; do not call it while already holding the lock.
func (s *GameSession) Snapshot() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		RoomCode:         s.RoomCode,
		State:            s.State.String(),
		CurrentTurn:      s.CurrentTurn,
		Player1Connected: s.Player1.Connected(),
		Player1Placed:    s.Player1.ShipsPlaced,
		CreatedAt:        s.CreatedAt,
		LastActivity:     s.LastActivity,
	}
	if s.Player2 != nil {
		sum.Player2Joined = true
		sum.Player2Connected = s.Player2.Connected()
		sum.Player2Placed = s.Player2.ShipsPlaced
	}
	return sum
}
