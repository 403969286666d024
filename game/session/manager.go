package session

import (
	"crypto/rand"
	"errors"
	"sync"
	"time"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
)

// roomCodeLength is the length of generated room codes.
const roomCodeLength = 6

// roomCodeAlphabet avoids characters that are easy to confuse when a code
// is read aloud or retyped (no 0/O, 1/I).
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Manager is the registry of live sessions keyed by room code. The manager
// lock guards only the map; each session carries its own lock for match
// state. The manager lock may be held while taking a session lock (the
// expiry sweep does), never the other way around.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*GameSession
	boardSize int
}

// NewManager creates an empty session registry. Boards in new sessions use
// the given grid size.
func NewManager(boardSize int) *Manager {
	return &Manager{
		sessions:  make(map[string]*GameSession),
		boardSize: boardSize,
	}
}

// CreateSession starts a new match with the given connection as player1 and
// returns the session in WAITING_FOR_PLAYER state. The room code is unique
// among currently live sessions; generation retries on collision.
func (m *Manager) CreateSession(conn Conn) *GameSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	code := m.generateRoomCode()
	for _, exists := m.sessions[code]; exists; _, exists = m.sessions[code] {
		code = m.generateRoomCode()
	}

	now := time.Now()
	sess := &GameSession{
		RoomCode:     code,
		Player1:      NewPlayer(RolePlayer1, conn, m.boardSize),
		State:        StateWaitingForPlayer,
		CurrentTurn:  1,
		CreatedAt:    now,
		LastActivity: now,
	}
	m.sessions[code] = sess
	return sess
}

// GetSession looks up a live session by room code.
func (m *Manager) GetSession(code string) (*GameSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[code]
	return sess, ok
}

// JoinSession binds the connection as player2 of the named room and moves
// the session to PLACING_SHIPS. It fails with ErrRoomNotFound or ErrRoomFull
// without touching the session, so a rejected connection stays fresh and may
// retry.
func (m *Manager) JoinSession(code string, conn Conn) (*GameSession, error) {
	m.mu.RLock()
	sess, ok := m.sessions[code]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrRoomNotFound
	}

	sess.Lock()
	defer sess.Unlock()
	if sess.Player2 != nil {
		return nil, ErrRoomFull
	}
	sess.Player2 = NewPlayer(RolePlayer2, conn, m.boardSize)
	sess.State = StatePlacingShips
	sess.Touch()
	return sess, nil
}

// List returns every live session.
func (m *Manager) List() []*GameSession {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*GameSession, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}
	return result
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupExpiredSessions removes every session whose last activity is older
// than maxAge and returns the removed sessions so the caller can revoke any
// connection bindings that still point at them. Each session's own lock is
// taken to read its timestamp; expiry is purely time-based, a session with
// connected players is still eligible.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) []*GameSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	var removed []*GameSession

	for code, sess := range m.sessions {
		sess.Lock()
		expired := sess.LastActivity.Before(cutoff)
		sess.Unlock()
		if expired {
			delete(m.sessions, code)
			removed = append(removed, sess)
		}
	}
	return removed
}

// generateRoomCode draws a short code from the room-code alphabet.
func (m *Manager) generateRoomCode() string {
	buf := make([]byte, roomCodeLength)
	rand.Read(buf)
	for i, b := range buf {
		buf[i] = roomCodeAlphabet[int(b)%len(roomCodeAlphabet)]
	}
	return string(buf)
}
