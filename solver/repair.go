package solver

import "fmt"

// Repair reconciles a possibly-stale assignment with the current room and
// pupil set. Fixed pupils are re-resolved; movable pupils keep their prior
// seat when it still exists and is unclaimed, earlier pupils in list order
// winning ties; everyone else is reseated from a shuffled pool of unused
// seats. Repairing an already-valid assignment changes nothing, so solver
// progress survives edits that do not touch the occupied seats.
func (p *Problem) Repair(prior Assignment, seed uint32) (Assignment, error) {
	return p.repair(prior, NewRand(seed))
}

func (p *Problem) repair(prior Assignment, rng *Rand) (Assignment, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	a := Assignment{}
	used := map[string]bool{}
	if err := p.placeFixed(a, used); err != nil {
		return nil, err
	}

	for i := range p.Pupils {
		pu := &p.Pupils[i]
		if pu.IsFixed() {
			continue
		}
		sid, ok := prior[pu.ID]
		if !ok || used[sid] || !p.Room.HasSeat(sid) {
			continue
		}
		a[pu.ID] = sid
		used[sid] = true
	}

	unused := p.freeSeats(used)
	rng.Shuffle(len(unused), func(i, j int) {
		unused[i], unused[j] = unused[j], unused[i]
	})

	next := 0
	for i := range p.Pupils {
		pu := &p.Pupils[i]
		if _, ok := a[pu.ID]; ok {
			continue
		}
		if next >= len(unused) {
			return nil, fmt.Errorf("%w: no seat left for pupil %q", ErrCapacity, pu.ID)
		}
		a[pu.ID] = unused[next]
		next++
	}
	return a, nil
}
