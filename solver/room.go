package solver

import (
	"fmt"
	"slices"
)

// Coord addresses one grid cell, row-major from the front-left of the room.
type Coord struct {
	Row int `json:"r"`
	Col int `json:"c"`
}

type TileKind int

const (
	TileEmpty TileKind = iota
	TileSeat
	TileTeacher
	TileBlocked
)

// SeatID encodes a coordinate as a seat identifier: zero-padded row, "-",
// zero-padded column ("03-12"). Rows and columns of 100 or more do not fit
// the encoding and are not supported.
func SeatID(c Coord) string {
	return fmt.Sprintf("%02d-%02d", c.Row, c.Col)
}

// ParseSeatID inverts SeatID without a lookup table. Returns false for
// anything not matching the two-digit pattern.
func ParseSeatID(id string) (Coord, bool) {
	if len(id) != 5 || id[2] != '-' {
		return Coord{}, false
	}
	digits := func(s string) (int, bool) {
		n := 0
		for i := 0; i < len(s); i++ {
			if s[i] < '0' || s[i] > '9' {
				return 0, false
			}
			n = n*10 + int(s[i]-'0')
		}
		return n, true
	}
	row, ok := digits(id[:2])
	if !ok {
		return Coord{}, false
	}
	col, ok := digits(id[3:])
	if !ok {
		return Coord{}, false
	}
	return Coord{Row: row, Col: col}, true
}

// Room is a rectangular grid whose cells are each empty, a seat, a teacher
// tile or blocked. The three non-empty classifications are exclusive.
// CellSize is a display hint and has no effect on solving.
type Room struct {
	Rows     int
	Cols     int
	CellSize int

	seats   map[Coord]string
	teacher map[Coord]struct{}
	blocked map[Coord]struct{}
}

func NewRoom(rows, cols int) *Room {
	return &Room{
		Rows:     rows,
		Cols:     cols,
		CellSize: 40,
		seats:    map[Coord]string{},
		teacher:  map[Coord]struct{}{},
		blocked:  map[Coord]struct{}{},
	}
}

func (r *Room) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < r.Rows && c.Col >= 0 && c.Col < r.Cols
}

// Classify sets the tile at c to exactly kind, clearing any previous
// classification. Out-of-bounds coordinates and seats beyond the 99x99
// identifier range are ignored.
func (r *Room) Classify(c Coord, kind TileKind) {
	if !r.InBounds(c) {
		return
	}
	delete(r.seats, c)
	delete(r.teacher, c)
	delete(r.blocked, c)
	switch kind {
	case TileSeat:
		if c.Row < 100 && c.Col < 100 {
			r.seats[c] = SeatID(c)
		}
	case TileTeacher:
		r.teacher[c] = struct{}{}
	case TileBlocked:
		r.blocked[c] = struct{}{}
	}
}

func (r *Room) KindAt(c Coord) TileKind {
	if _, ok := r.seats[c]; ok {
		return TileSeat
	}
	if _, ok := r.teacher[c]; ok {
		return TileTeacher
	}
	if _, ok := r.blocked[c]; ok {
		return TileBlocked
	}
	return TileEmpty
}

// Resize changes the grid bounds and drops classified tiles that fall
// outside them. Surviving seats keep their stored identifiers.
func (r *Room) Resize(rows, cols int) {
	r.Rows = rows
	r.Cols = cols
	for c := range r.seats {
		if !r.InBounds(c) {
			delete(r.seats, c)
		}
	}
	for c := range r.teacher {
		if !r.InBounds(c) {
			delete(r.teacher, c)
		}
	}
	for c := range r.blocked {
		if !r.InBounds(c) {
			delete(r.blocked, c)
		}
	}
}

func (r *Room) NumSeats() int {
	return len(r.seats)
}

// SeatIDs returns all seat identifiers in row-major order. The identifier
// encoding makes lexicographic order row-major.
func (r *Room) SeatIDs() []string {
	ids := make([]string, 0, len(r.seats))
	for _, id := range r.seats {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (r *Room) HasSeat(id string) bool {
	_, ok := r.SeatCoord(id)
	return ok
}

// SeatCoord resolves a seat identifier to its coordinate, requiring that the
// tile is currently classified as a seat.
func (r *Room) SeatCoord(id string) (Coord, bool) {
	c, ok := ParseSeatID(id)
	if !ok {
		return Coord{}, false
	}
	if _, ok := r.seats[c]; !ok {
		return Coord{}, false
	}
	return c, true
}

func (r *Room) TeacherCoords() []Coord {
	coords := make([]Coord, 0, len(r.teacher))
	for c := range r.teacher {
		coords = append(coords, c)
	}
	slices.SortFunc(coords, func(a, b Coord) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Col - b.Col
	})
	return coords
}

// Metric selects the distance function used by distance-based rules.
type Metric string

const (
	Manhattan  Metric = "manhattan"
	Chebyshev  Metric = "chebyshev"
	Euclidean2 Metric = "euclidean2"
)

// Dist measures the distance between two coordinates. Euclidean2 is the
// squared euclidean distance; unknown metric names fall back to manhattan.
func (m Metric) Dist(a, b Coord) int {
	dr := absInt(a.Row - b.Row)
	dc := absInt(a.Col - b.Col)
	switch m {
	case Chebyshev:
		return max(dr, dc)
	case Euclidean2:
		return dr*dr + dc*dc
	default:
		return dr + dc
	}
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
