package solver

import "fmt"

// Fixed pins a pupil to one seat, named either by seat identifier or by
// coordinate. Exactly one form should be set; the coordinate form must point
// at a tile classified as a seat.
type Fixed struct {
	Seat string `json:"seat,omitempty"`
	R    *int   `json:"r,omitempty"`
	C    *int   `json:"c,omitempty"`
}

// resolve maps the constraint to a seat identifier in room.
func (f *Fixed) resolve(room *Room) (string, error) {
	if f.Seat != "" {
		if !room.HasSeat(f.Seat) {
			return "", fmt.Errorf("%w: seat %q", ErrBadFixed, f.Seat)
		}
		return f.Seat, nil
	}
	if f.R != nil && f.C != nil {
		c := Coord{Row: *f.R, Col: *f.C}
		if room.KindAt(c) != TileSeat {
			return "", fmt.Errorf("%w: tile %d,%d", ErrBadFixed, c.Row, c.Col)
		}
		return SeatID(c), nil
	}
	return "", fmt.Errorf("%w: empty constraint", ErrBadFixed)
}

type Pupil struct {
	ID    string   `json:"id"`
	Tags  []string `json:"tags,omitempty"`
	Fixed *Fixed   `json:"fixed,omitempty"`
}

func (p *Pupil) IsFixed() bool {
	return p.Fixed != nil
}

func (p *Pupil) Tagged() bool {
	return len(p.Tags) > 0
}

func (p *Pupil) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Assignment maps pupil identities to seat identifiers. A valid assignment
// is injective, covers every pupil, and honors every fixed constraint.
type Assignment map[string]string

func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Problem bundles the immutable inputs of one scoring or solving call. The
// solver never retains it across calls; callers must not mutate it while a
// call is in flight.
type Problem struct {
	Room   *Room
	Pupils []Pupil
	Rules  []Rule
}

func (p *Problem) validate() error {
	if len(p.Pupils) == 0 {
		return ErrNoPupils
	}
	seats := p.Room.NumSeats()
	if seats == 0 {
		return ErrNoSeats
	}
	if len(p.Pupils) > seats {
		return fmt.Errorf("%w: %d pupils, %d seats", ErrCapacity, len(p.Pupils), seats)
	}
	return nil
}

// pos returns the coordinate of a pupil's assigned seat, or false if the
// pupil is unplaced.
func (p *Problem) pos(a Assignment, pupilID string) (Coord, bool) {
	sid, ok := a[pupilID]
	if !ok {
		return Coord{}, false
	}
	return p.Room.SeatCoord(sid)
}
