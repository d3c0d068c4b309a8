package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullRoom builds a rows x cols room with every tile a seat.
func fullRoom(rows, cols int) *Room {
	r := NewRoom(rows, cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			r.Classify(Coord{Row: row, Col: col}, TileSeat)
		}
	}
	return r
}

func TestSeatIDCodec(t *testing.T) {
	require.Equal(t, "03-12", SeatID(Coord{Row: 3, Col: 12}))
	require.Equal(t, "00-00", SeatID(Coord{}))

	c, ok := ParseSeatID("03-12")
	require.True(t, ok)
	require.Equal(t, Coord{Row: 3, Col: 12}, c)

	for _, bad := range []string{"", "3-12", "03:12", "03-1x", "003-12", "0312", "0a-12"} {
		_, ok := ParseSeatID(bad)
		assert.False(t, ok, "expected %q to be rejected", bad)
	}
}

func TestClassifyExclusive(t *testing.T) {
	r := NewRoom(4, 4)
	c := Coord{Row: 1, Col: 2}

	r.Classify(c, TileSeat)
	require.Equal(t, TileSeat, r.KindAt(c))

	r.Classify(c, TileBlocked)
	require.Equal(t, TileBlocked, r.KindAt(c))
	require.Equal(t, 0, r.NumSeats())

	r.Classify(c, TileTeacher)
	require.Equal(t, TileTeacher, r.KindAt(c))

	r.Classify(c, TileEmpty)
	require.Equal(t, TileEmpty, r.KindAt(c))
}

func TestClassifyOutOfBoundsIgnored(t *testing.T) {
	r := NewRoom(2, 2)
	r.Classify(Coord{Row: 5, Col: 0}, TileSeat)
	r.Classify(Coord{Row: -1, Col: 0}, TileBlocked)
	require.Equal(t, 0, r.NumSeats())
	require.Equal(t, TileEmpty, r.KindAt(Coord{Row: 5, Col: 0}))
}

func TestResizePrunes(t *testing.T) {
	r := NewRoom(5, 5)
	r.Classify(Coord{Row: 0, Col: 0}, TileSeat)
	r.Classify(Coord{Row: 4, Col: 4}, TileSeat)
	r.Classify(Coord{Row: 4, Col: 0}, TileTeacher)
	r.Classify(Coord{Row: 0, Col: 4}, TileBlocked)

	r.Resize(3, 3)
	require.Equal(t, []string{"00-00"}, r.SeatIDs())
	require.Empty(t, r.TeacherCoords())
	require.Equal(t, TileEmpty, r.KindAt(Coord{Row: 0, Col: 4}))

	// surviving seat keeps its identifier
	c, ok := r.SeatCoord("00-00")
	require.True(t, ok)
	require.Equal(t, Coord{}, c)
}

func TestSeatCoordRequiresSeat(t *testing.T) {
	r := fullRoom(2, 2)
	_, ok := r.SeatCoord("01-01")
	require.True(t, ok)
	_, ok = r.SeatCoord("01-05")
	require.False(t, ok)
	_, ok = r.SeatCoord("garbage")
	require.False(t, ok)
}

func TestMetricDist(t *testing.T) {
	a := Coord{Row: 1, Col: 1}
	b := Coord{Row: 4, Col: 3}

	assert.Equal(t, 5, Manhattan.Dist(a, b))
	assert.Equal(t, 3, Chebyshev.Dist(a, b))
	assert.Equal(t, 13, Euclidean2.Dist(a, b))

	// unknown metric falls back to manhattan
	assert.Equal(t, 5, Metric("geodesic").Dist(a, b))
}
