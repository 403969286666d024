package engine

// Coord is a single cell on the grid, serialized as a [x, y] pair to match
// the wire protocol.
type Coord [2]int

// X returns the column of the coordinate.
func (c Coord) X() int { return c[0] }

// Y returns the row of the coordinate.
func (c Coord) Y() int { return c[1] }

// Ship is an ordered list of occupied cells. A ship is sunk once every one
// of its cells has been shot.
type Ship struct {
	Cells []Coord `json:"cells"`
}

// Contains reports whether the ship occupies the given cell.
func (s Ship) Contains(c Coord) bool {
	for _, cell := range s.Cells {
		if cell == c {
			return true
		}
	}
	return false
}

// HitCells returns the ship cells present in the given shot history, in
// ship-cell order.
func (s Ship) HitCells(shots []Coord) []Coord {
	hits := make([]Coord, 0, len(s.Cells))
	for _, cell := range s.Cells {
		for _, shot := range shots {
			if cell == shot {
				hits = append(hits, cell)
				break
			}
		}
	}
	return hits
}

// IsSunk reports whether every cell of the ship appears in the shot history.
func (s Ship) IsSunk(shots []Coord) bool {
	return len(s.HitCells(shots)) == len(s.Cells)
}

// Board holds one player's grid: the ships placed on it and every shot it
// has received.
type Board struct {
	Size          int     `json:"size"`
	Ships         []Ship  `json:"ships"`
	ShotsReceived []Coord `json:"shots_received"`
}

// NewBoard creates an empty board of the given size.
func NewBoard(size int) *Board {
	return &Board{Size: size}
}

// InBounds reports whether the cell lies on the grid.
func (b *Board) InBounds(c Coord) bool {
	return c.X() >= 0 && c.X() < b.Size && c.Y() >= 0 && c.Y() < b.Size
}

// HasShot reports whether the cell has already been fired upon.
func (b *Board) HasShot(c Coord) bool {
	for _, shot := range b.ShotsReceived {
		if shot == c {
			return true
		}
	}
	return false
}

// AllSunk reports whether every ship on the board is sunk. A board with no
// ships is never considered sunk.
func (b *Board) AllSunk() bool {
	if len(b.Ships) == 0 {
		return false
	}
	for _, ship := range b.Ships {
		if !ship.IsSunk(b.ShotsReceived) {
			return false
		}
	}
	return true
}

// ShotResult classifies the outcome of a single shot.
type ShotResult int

const (
	Miss ShotResult = iota
	Hit
	Sunk
	Win
)

// String returns the wire name of the result.
func (r ShotResult) String() string {
	switch r {
	case Miss:
		return "MISS"
	case Hit:
		return "HIT"
	case Sunk:
		return "SUNK"
	case Win:
		return "WIN"
	default:
		return "UNKNOWN"
	}
}

// Stats accumulates one player's shooting record for the lifetime of a
// session.
type Stats struct {
	Shots     int `json:"shots"`
	Hits      int `json:"hits"`
	Misses    int `json:"misses"`
	SunkShips int `json:"sunkShips"`
}

// StatsView is the client-facing statistics payload, including derived
// accuracy.
type StatsView struct {
	Shots     int     `json:"shots"`
	Hits      int     `json:"hits"`
	Misses    int     `json:"misses"`
	Accuracy  float64 `json:"accuracy"`
	SunkShips int     `json:"sunkShips"`
}

// View returns the client-facing form of the stats.
func (s Stats) View() StatsView {
	v := StatsView{
		Shots:     s.Shots,
		Hits:      s.Hits,
		Misses:    s.Misses,
		SunkShips: s.SunkShips,
	}
	if s.Shots > 0 {
		v.Accuracy = float64(s.Hits) / float64(s.Shots)
	}
	return v
}
