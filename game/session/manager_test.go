package session

import (
	"errors"
	"testing"
	"time"
)

func TestCreateSessionUniqueCodes(t *testing.T) {
	m := NewManager(10)
	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		sess := m.CreateSession(nopConn{})
		if len(sess.RoomCode) != roomCodeLength {
			t.Fatalf("room code %q has length %d, want %d", sess.RoomCode, len(sess.RoomCode), roomCodeLength)
		}
		if seen[sess.RoomCode] {
			t.Fatalf("duplicate room code %q", sess.RoomCode)
		}
		seen[sess.RoomCode] = true

		for _, c := range sess.RoomCode {
			switch c {
			case '0', 'O', '1', 'I':
				t.Fatalf("room code %q contains ambiguous character %q", sess.RoomCode, c)
			}
		}
	}
	if m.Count() != 200 {
		t.Errorf("Count = %d, want 200", m.Count())
	}
}

func TestCreateSessionInitialState(t *testing.T) {
	m := NewManager(12)
	sess := m.CreateSession(nopConn{})

	if sess.State != StateWaitingForPlayer {
		t.Errorf("state = %v, want WAITING_FOR_PLAYER", sess.State)
	}
	if sess.CurrentTurn != 1 {
		t.Errorf("turn = %d, want 1", sess.CurrentTurn)
	}
	if sess.Player1 == nil || sess.Player1.Role != RolePlayer1 {
		t.Fatal("player1 slot not bound")
	}
	if sess.Player1.Board.Size != 12 {
		t.Errorf("board size = %d, want 12", sess.Player1.Board.Size)
	}
	if sess.Player2 != nil {
		t.Error("player2 already set on a fresh session")
	}
	if got, ok := m.GetSession(sess.RoomCode); !ok || got != sess {
		t.Error("GetSession did not return the created session")
	}
}

func TestJoinSessionUnknownRoom(t *testing.T) {
	m := NewManager(10)
	if _, err := m.JoinSession("NOSUCH", nopConn{}); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("JoinSession on unknown code = %v, want ErrRoomNotFound", err)
	}
}

func TestJoinSessionExclusivity(t *testing.T) {
	m := NewManager(10)
	sess := m.CreateSession(nopConn{})

	joined, err := m.JoinSession(sess.RoomCode, nopConn{})
	if err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	if joined != sess {
		t.Fatal("join returned a different session")
	}

	sess.Lock()
	player2 := sess.Player2
	state := sess.State
	sess.Unlock()
	if player2 == nil || player2.Role != RolePlayer2 {
		t.Fatal("player2 slot not bound after join")
	}
	if state != StatePlacingShips {
		t.Errorf("state after join = %v, want PLACING_SHIPS", state)
	}

	// A third connection is rejected and the session is untouched.
	if _, err := m.JoinSession(sess.RoomCode, nopConn{}); !errors.Is(err, ErrRoomFull) {
		t.Errorf("second join = %v, want ErrRoomFull", err)
	}
	sess.Lock()
	if sess.Player2 != player2 {
		t.Error("rejected join replaced player2")
	}
	sess.Unlock()
}

func TestCleanupExpiredSessions(t *testing.T) {
	m := NewManager(10)
	old := m.CreateSession(nopConn{})
	fresh := m.CreateSession(nopConn{})

	old.Lock()
	old.LastActivity = time.Now().Add(-time.Hour)
	old.Unlock()

	removed := m.CleanupExpiredSessions(30 * time.Minute)
	if len(removed) != 1 || removed[0] != old {
		t.Fatalf("removed %d sessions, want exactly the stale one", len(removed))
	}
	if _, ok := m.GetSession(old.RoomCode); ok {
		t.Error("expired session still resolvable")
	}
	if _, ok := m.GetSession(fresh.RoomCode); !ok {
		t.Error("fresh session was swept")
	}
	if m.Count() != 1 {
		t.Errorf("Count after sweep = %d, want 1", m.Count())
	}
}

func TestCleanupKeepsActiveSessions(t *testing.T) {
	m := NewManager(10)
	m.CreateSession(nopConn{})
	m.CreateSession(nopConn{})

	if removed := m.CleanupExpiredSessions(30 * time.Minute); len(removed) != 0 {
		t.Errorf("sweep removed %d fresh sessions", len(removed))
	}
	if m.Count() != 2 {
		t.Errorf("Count = %d, want 2", m.Count())
	}
}
