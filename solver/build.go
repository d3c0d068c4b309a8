package solver

import (
	"fmt"
	"slices"
)

// BuildInitial constructs a starting assignment. Fixed pupils go to their
// declared seats; tagged pupils draw uniformly from the whole free pool so
// separation-style rules have room to work; untagged pupils fill front to
// back the way a classroom is normally seated.
func (p *Problem) BuildInitial(seed uint32) (Assignment, error) {
	return p.buildInitial(NewRand(seed))
}

func (p *Problem) buildInitial(rng *Rand) (Assignment, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	a := Assignment{}
	used := map[string]bool{}
	if err := p.placeFixed(a, used); err != nil {
		return nil, err
	}

	var tagged, untagged []string
	for i := range p.Pupils {
		pu := &p.Pupils[i]
		if pu.IsFixed() {
			continue
		}
		if pu.Tagged() {
			tagged = append(tagged, pu.ID)
		} else {
			untagged = append(untagged, pu.ID)
		}
	}

	free := p.freeSeats(used)
	if len(tagged)+len(untagged) > len(free) {
		return nil, fmt.Errorf("%w: %d movable pupils, %d free seats",
			ErrCapacity, len(tagged)+len(untagged), len(free))
	}

	rng.Shuffle(len(free), func(i, j int) {
		free[i], free[j] = free[j], free[i]
	})
	for i, id := range tagged {
		a[id] = free[i]
	}

	rest := free[len(tagged):]
	frontBiasedOrder(rest, rng)
	for i, id := range untagged {
		a[id] = rest[i]
	}
	return a, nil
}

// placeFixed resolves every fixed pupil, failing on dangling references and
// on two fixed pupils claiming one seat.
func (p *Problem) placeFixed(a Assignment, used map[string]bool) error {
	for i := range p.Pupils {
		pu := &p.Pupils[i]
		if !pu.IsFixed() {
			continue
		}
		sid, err := pu.Fixed.resolve(p.Room)
		if err != nil {
			return fmt.Errorf("pupil %q: %w", pu.ID, err)
		}
		if used[sid] {
			return fmt.Errorf("%w: seat %q, pupil %q", ErrFixedConflict, sid, pu.ID)
		}
		a[pu.ID] = sid
		used[sid] = true
	}
	return nil
}

// freeSeats lists unclaimed seats in row-major order.
func (p *Problem) freeSeats(used map[string]bool) []string {
	var free []string
	for _, sid := range p.Room.SeatIDs() {
		if !used[sid] {
			free = append(free, sid)
		}
	}
	return free
}

// frontBiasedOrder sorts seats row-major, then shuffles each contiguous
// same-row run in place. The row bias survives while the within-row order
// loses its mechanical left-to-right look. Continues the caller's stream.
func frontBiasedOrder(seats []string, rng *Rand) {
	// Seat identifiers sort lexicographically in row-major order.
	slices.Sort(seats)
	start := 0
	for i := 1; i <= len(seats); i++ {
		if i < len(seats) && seatRow(seats[i]) == seatRow(seats[start]) {
			continue
		}
		run := seats[start:i]
		rng.Shuffle(len(run), func(x, y int) {
			run[x], run[y] = run[y], run[x]
		})
		start = i
	}
}

func seatRow(id string) string {
	if len(id) < 2 {
		return id
	}
	return id[:2]
}
