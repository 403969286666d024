package service

import (
	"encoding/json"

	"seabattle/game/engine"
	"seabattle/game/session"
)

// Client message types.
const (
	TypePing          = "PING"
	TypeCreateSession = "CREATE_SESSION"
	TypeJoinSession   = "JOIN_SESSION"
	TypePlaceShips    = "PLACE_SHIPS"
	TypeShot          = "SHOT"
)

// Server message types.
const (
	TypePong             = "PONG"
	TypeError            = "ERROR"
	TypeSessionCreated   = "SESSION_CREATED"
	TypeGameStart        = "GAME_START"
	TypeShipsPlaced      = "SHIPS_PLACED"
	TypeBothPlayersReady = "BOTH_PLAYERS_READY"
	TypeState            = "STATE"
	TypeGameOver         = "GAME_OVER"
	TypeYourTurn         = "YOUR_TURN"
)

// Board view modes for STATE messages.
const (
	ModeMyShot    = "MY_SHOT"
	ModeEnemyShot = "ENEMY_SHOT"
)

// ClientMessage is the flat envelope every inbound frame decodes into.
// Ships is kept raw so shape errors can be reported separately from JSON
// errors; X and Y are pointers so a missing coordinate is distinguishable
// from zero.
type ClientMessage struct {
	Type     string          `json:"type"`
	RoomCode string          `json:"roomCode"`
	Ships    json.RawMessage `json:"ships"`
	X        *int            `json:"x"`
	Y        *int            `json:"y"`
}

// ErrorMessage reports a protocol or state error to one connection.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// PongMessage answers a PING.
type PongMessage struct {
	Type string `json:"type"`
}

// SessionCreatedMessage carries the room code of a new session.
type SessionCreatedMessage struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
}

// GameStartMessage tells both players the match has begun and who fires
// first.
type GameStartMessage struct {
	Type      string       `json:"type"`
	FirstTurn session.Role `json:"firstTurn"`
}

// ShipsPlacedMessage acknowledges a player's fleet placement.
type ShipsPlacedMessage struct {
	Type string `json:"type"`
}

// BothPlayersReadyMessage announces that combat is about to start.
type BothPlayersReadyMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// StateMessage carries a board view after a shot. Mode tells the receiver
// which board it is looking at.
type StateMessage struct {
	Type string           `json:"type"`
	Mode string           `json:"mode"`
	Data engine.BoardView `json:"data"`
}

// GameOverMessage announces the winner; each player receives their own
// stats.
type GameOverMessage struct {
	Type   string           `json:"type"`
	Winner session.Role     `json:"winner"`
	Stats  engine.StatsView `json:"stats"`
}

// YourTurnMessage tells a player they may fire.
type YourTurnMessage struct {
	Type string `json:"type"`
}

func errorMessage(msg string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: msg}
}

func pongMessage() PongMessage {
	return PongMessage{Type: TypePong}
}

func sessionCreatedMessage(roomCode string) SessionCreatedMessage {
	return SessionCreatedMessage{Type: TypeSessionCreated, RoomCode: roomCode}
}

func gameStartMessage(firstTurn session.Role) GameStartMessage {
	return GameStartMessage{Type: TypeGameStart, FirstTurn: firstTurn}
}

func shipsPlacedMessage() ShipsPlacedMessage {
	return ShipsPlacedMessage{Type: TypeShipsPlaced}
}

func bothPlayersReadyMessage() BothPlayersReadyMessage {
	return BothPlayersReadyMessage{Type: TypeBothPlayersReady, Message: "all ships placed, battle begins"}
}

func stateMessage(mode string, view engine.BoardView) StateMessage {
	return StateMessage{Type: TypeState, Mode: mode, Data: view}
}

func gameOverMessage(winner session.Role, stats engine.StatsView) GameOverMessage {
	return GameOverMessage{Type: TypeGameOver, Winner: winner, Stats: stats}
}

func yourTurnMessage() YourTurnMessage {
	return YourTurnMessage{Type: TypeYourTurn}
}
