// Package engine implements the battleship game rules: boards, ships, shot
// resolution and the board views sent to clients. It holds no locks and no
// connection state; callers are responsible for synchronization.
package engine

// ValidateShipPlacement checks a fleet before it is stored on a board.
//
// The current policy is deliberately permissive: coordinate format and bounds
// are enforced by the dispatcher, while overlap, contiguity and fleet
// composition are left to the client. Stricter rules belong here if that
// decision is ever revisited.
func ValidateShipPlacement(ships [][]Coord) bool {
	return true
}

// ApplyShot records a shot against the board and classifies the outcome.
//
// The shot is appended to the board's history exactly once; callers must
// reject duplicate cells before calling. Hit means a ship cell was struck
// but the ship survives, Sunk means this shot finished the ship, and Win
// means it finished the last surviving ship.
func (b *Board) ApplyShot(c Coord) ShotResult {
	b.ShotsReceived = append(b.ShotsReceived, c)

	for _, ship := range b.Ships {
		if !ship.Contains(c) {
			continue
		}
		if !ship.IsSunk(b.ShotsReceived) {
			return Hit
		}
		if b.AllSunk() {
			return Win
		}
		return Sunk
	}
	return Miss
}

// ShipView is the per-ship payload of a STATE message. Cords is omitted in
// MY_SHOT mode so unhit enemy positions are never leaked to the shooter.
type ShipView struct {
	Cords       []Coord `json:"cords,omitempty"`
	HeatedCords []Coord `json:"heated_cords"`
	IsKilled    bool    `json:"isKilled"`
}

// BoardView is the data payload of a STATE message.
type BoardView struct {
	Ships        []ShipView `json:"ships"`
	ShootedCords []Coord    `json:"shooted_cords"`
}

// MyShotView renders the target board as seen by the shooter: hit cells and
// sunk flags only, never unhit ship positions.
func MyShotView(b *Board) BoardView {
	view := BoardView{
		Ships:        make([]ShipView, 0, len(b.Ships)),
		ShootedCords: append([]Coord(nil), b.ShotsReceived...),
	}
	for _, ship := range b.Ships {
		view.Ships = append(view.Ships, ShipView{
			HeatedCords: ship.HitCells(b.ShotsReceived),
			IsKilled:    ship.IsSunk(b.ShotsReceived),
		})
	}
	return view
}

// EnemyShotView renders a board as seen by its owner: full ship positions
// plus the shots received so far.
func EnemyShotView(b *Board) BoardView {
	view := BoardView{
		Ships:        make([]ShipView, 0, len(b.Ships)),
		ShootedCords: append([]Coord(nil), b.ShotsReceived...),
	}
	for _, ship := range b.Ships {
		view.Ships = append(view.Ships, ShipView{
			Cords:       append([]Coord(nil), ship.Cells...),
			HeatedCords: ship.HitCells(b.ShotsReceived),
			IsKilled:    ship.IsSunk(b.ShotsReceived),
		})
	}
	return view
}
