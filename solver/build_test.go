package solver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func pupils(ids ...string) []Pupil {
	out := make([]Pupil, len(ids))
	for i, id := range ids {
		out[i] = Pupil{ID: id}
	}
	return out
}

func requireInjective(t *testing.T, a Assignment) {
	t.Helper()
	seen := map[string]string{}
	for pupil, seat := range a {
		if other, ok := seen[seat]; ok {
			t.Fatalf("seat %s assigned to both %s and %s", seat, other, pupil)
		}
		seen[seat] = pupil
	}
}

func TestBuildDeterministic(t *testing.T) {
	p := &Problem{Room: fullRoom(4, 4), Pupils: pupils("a", "b", "c", "d", "e")}
	a1, err := p.BuildInitial(42)
	require.NoError(t, err)
	a2, err := p.BuildInitial(42)
	require.NoError(t, err)
	require.Equal(t, a1, a2)

	a3, err := p.BuildInitial(43)
	require.NoError(t, err)
	require.NotEqual(t, a1, a3)
}

func TestBuildCoversAllPupilsInjectively(t *testing.T) {
	p := &Problem{
		Room: fullRoom(5, 5),
		Pupils: []Pupil{
			{ID: "a", Tags: []string{"loud"}},
			{ID: "b"},
			{ID: "c", Tags: []string{"loud", "tall"}},
			{ID: "d"}, {ID: "e"}, {ID: "f"},
		},
	}
	a, err := p.BuildInitial(7)
	require.NoError(t, err)
	require.Len(t, a, len(p.Pupils))
	requireInjective(t, a)
	for _, pu := range p.Pupils {
		require.True(t, p.Room.HasSeat(a[pu.ID]))
	}
}

func TestBuildPlacesFixedPupils(t *testing.T) {
	row, col := 2, 3
	p := &Problem{
		Room: fullRoom(4, 4),
		Pupils: []Pupil{
			{ID: "bySeat", Fixed: &Fixed{Seat: "01-01"}},
			{ID: "byCoord", Fixed: &Fixed{R: &row, C: &col}},
			{ID: "free"},
		},
	}
	a, err := p.BuildInitial(1)
	require.NoError(t, err)
	require.Equal(t, "01-01", a["bySeat"])
	require.Equal(t, "02-03", a["byCoord"])
}

func TestBuildCapacityError(t *testing.T) {
	room := NewRoom(1, 1)
	room.Classify(Coord{}, TileSeat)
	p := &Problem{Room: room, Pupils: pupils("a", "b")}
	_, err := p.BuildInitial(1)
	require.ErrorIs(t, err, ErrCapacity)
}

func TestBuildFixedToBlockedTile(t *testing.T) {
	room := fullRoom(3, 3)
	room.Classify(Coord{Row: 1, Col: 1}, TileBlocked)
	row, col := 1, 1
	p := &Problem{
		Room:   room,
		Pupils: []Pupil{{ID: "a", Fixed: &Fixed{R: &row, C: &col}}},
	}
	_, err := p.BuildInitial(1)
	require.ErrorIs(t, err, ErrBadFixed)
}

func TestBuildFixedToMissingSeat(t *testing.T) {
	p := &Problem{
		Room:   fullRoom(3, 3),
		Pupils: []Pupil{{ID: "a", Fixed: &Fixed{Seat: "07-07"}}},
	}
	_, err := p.BuildInitial(1)
	require.ErrorIs(t, err, ErrBadFixed)
}

func TestBuildFixedConflict(t *testing.T) {
	p := &Problem{
		Room: fullRoom(3, 3),
		Pupils: []Pupil{
			{ID: "a", Fixed: &Fixed{Seat: "00-00"}},
			{ID: "b", Fixed: &Fixed{Seat: "00-00"}},
		},
	}
	_, err := p.BuildInitial(1)
	require.ErrorIs(t, err, ErrFixedConflict)
}

func TestBuildValidation(t *testing.T) {
	p := &Problem{Room: fullRoom(2, 2)}
	_, err := p.BuildInitial(1)
	require.ErrorIs(t, err, ErrNoPupils)

	p = &Problem{Room: NewRoom(2, 2), Pupils: pupils("a")}
	_, err = p.BuildInitial(1)
	require.ErrorIs(t, err, ErrNoSeats)
}

func TestBuildUntaggedFillFrontRows(t *testing.T) {
	p := &Problem{Room: fullRoom(4, 4), Pupils: pupils("a", "b", "c", "d", "e", "f")}
	for seed := uint32(0); seed < 10; seed++ {
		a, err := p.BuildInitial(seed)
		require.NoError(t, err)

		used := map[string]bool{}
		maxUsedRow := 0
		for _, sid := range a {
			used[sid] = true
			c, ok := ParseSeatID(sid)
			require.True(t, ok)
			if c.Row > maxUsedRow {
				maxUsedRow = c.Row
			}
		}
		// with only untagged pupils, no empty seat may sit in front of an
		// occupied one in a strictly earlier row
		for _, sid := range p.Room.SeatIDs() {
			if used[sid] {
				continue
			}
			c, _ := ParseSeatID(sid)
			require.GreaterOrEqual(t, c.Row, maxUsedRow,
				"seed %d left seat %s empty behind row %d", seed, sid, maxUsedRow)
		}
	}
}
