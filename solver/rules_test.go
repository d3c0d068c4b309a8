package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairProblem(room *Room) *Problem {
	return &Problem{
		Room:   room,
		Pupils: []Pupil{{ID: "ann"}, {ID: "bo"}},
	}
}

func TestMinDistance(t *testing.T) {
	p := pairProblem(fullRoom(5, 5))
	r := &MinDistance{A: "ann", B: "bo", D: 4, Metric: Manhattan}

	a := Assignment{"ann": "00-00", "bo": "00-01"}
	assert.Equal(t, 3, r.Penalty(p, a))

	a = Assignment{"ann": "00-00", "bo": "04-04"}
	assert.Equal(t, 0, r.Penalty(p, a))

	// unplaced endpoint
	assert.Equal(t, 0, r.Penalty(p, Assignment{"ann": "00-00"}))
}

func TestMaxDistance(t *testing.T) {
	p := pairProblem(fullRoom(5, 5))
	r := &MaxDistance{A: "ann", B: "bo", D: 2, Metric: Chebyshev}

	a := Assignment{"ann": "00-00", "bo": "04-04"}
	assert.Equal(t, 2, r.Penalty(p, a))

	a = Assignment{"ann": "00-00", "bo": "01-02"}
	assert.Equal(t, 0, r.Penalty(p, a))
}

func TestNotAdjacent(t *testing.T) {
	p := pairProblem(fullRoom(4, 4))
	r := &NotAdjacent{A: "ann", B: "bo"}

	assert.Equal(t, 1, r.Penalty(p, Assignment{"ann": "01-01", "bo": "02-02"}))
	assert.Equal(t, 1, r.Penalty(p, Assignment{"ann": "01-01", "bo": "01-02"}))
	assert.Equal(t, 0, r.Penalty(p, Assignment{"ann": "01-01", "bo": "03-01"}))
}

func TestPreferFront(t *testing.T) {
	p := pairProblem(fullRoom(5, 5))
	r := &PreferFront{Pupil: "ann", K: 2}

	assert.Equal(t, 0, r.Penalty(p, Assignment{"ann": "01-00"}))
	assert.Equal(t, 1, r.Penalty(p, Assignment{"ann": "02-00"}))
	assert.Equal(t, 0, r.Penalty(p, Assignment{}))
}

func TestPreferAwayFromTeacher(t *testing.T) {
	room := fullRoom(5, 5)
	room.Classify(Coord{Row: 0, Col: 2}, TileTeacher)
	p := pairProblem(room)
	r := &PreferAwayFromTeacher{Pupil: "ann", MinD: 4, Metric: Manhattan}

	assert.Equal(t, 3, r.Penalty(p, Assignment{"ann": "01-02"}))
	assert.Equal(t, 0, r.Penalty(p, Assignment{"ann": "04-04"}))

	// no teacher tiles, no penalty
	noTeacher := pairProblem(fullRoom(5, 5))
	assert.Equal(t, 0, r.Penalty(noTeacher, Assignment{"ann": "00-02"}))
}

func TestMustBeInRows(t *testing.T) {
	p := pairProblem(fullRoom(5, 5))
	r := &MustBeInRows{Pupil: "ann", RMin: 1, RMax: 2}

	assert.Equal(t, 0, r.Penalty(p, Assignment{"ann": "02-00"}))
	assert.Equal(t, 1, r.Penalty(p, Assignment{"ann": "00-00"}))
	assert.Equal(t, 1, r.Penalty(p, Assignment{"ann": "04-00"}))
}

func TestMustBeInSeats(t *testing.T) {
	p := pairProblem(fullRoom(3, 3))
	r := &MustBeInSeats{Pupil: "ann", Seats: []string{"00-00", "01-01"}}

	assert.Equal(t, 0, r.Penalty(p, Assignment{"ann": "01-01"}))
	assert.Equal(t, 1, r.Penalty(p, Assignment{"ann": "02-02"}))
	assert.Equal(t, 0, r.Penalty(p, Assignment{}))
}

func TestTagSeparationPairwiseSum(t *testing.T) {
	p := &Problem{
		Room: fullRoom(4, 4),
		Pupils: []Pupil{
			{ID: "p1", Tags: []string{"x"}},
			{ID: "p2", Tags: []string{"x"}},
			{ID: "p3", Tags: []string{"x"}},
			{ID: "p4"},
		},
	}
	r := &TagSeparation{Tag: "x", MinD: 4, Metric: Manhattan}

	// pairwise manhattan distances 1, 1, 2; shortfalls 3 + 3 + 2
	a := Assignment{"p1": "00-00", "p2": "00-01", "p3": "01-00", "p4": "03-03"}
	assert.Equal(t, 8, r.Penalty(p, a))
}

func TestUnknownRuleIsNoOp(t *testing.T) {
	p := pairProblem(fullRoom(3, 3))
	r := &UnknownRule{Type: "futureThing"}
	assert.Equal(t, 0, r.Penalty(p, Assignment{"ann": "00-00"}))
}

func TestScoreHardDominance(t *testing.T) {
	room := fullRoom(5, 5)
	p := &Problem{
		Room:   room,
		Pupils: []Pupil{{ID: "ann"}, {ID: "bo"}},
		Rules: []Rule{
			&MinDistance{ruleBase: ruleBase{Hard: true}, A: "ann", B: "bo", D: 3, Metric: Manhattan},
			&PreferFront{ruleBase: ruleBase{Weight: 50}, Pupil: "ann", K: 1},
			&PreferFront{ruleBase: ruleBase{Weight: 50}, Pupil: "bo", K: 1},
		},
	}

	// hard rule broken, soft rules satisfied
	hardBroken := p.Score(Assignment{"ann": "00-00", "bo": "00-01"})
	require.Equal(t, 1, hardBroken.HardBreaks)
	require.Equal(t, 2*hardScale, hardBroken.Total)

	// soft rules broken, hard rule satisfied
	softBroken := p.Score(Assignment{"ann": "04-00", "bo": "04-04"})
	require.Equal(t, 0, softBroken.HardBreaks)
	require.Equal(t, 100, softBroken.Total)

	require.Greater(t, hardBroken.Total, softBroken.Total)
}

func TestScoreCountsRuleObjectsNotMagnitude(t *testing.T) {
	p := &Problem{
		Room:   fullRoom(9, 9),
		Pupils: []Pupil{{ID: "ann"}, {ID: "bo"}},
		Rules: []Rule{
			&MinDistance{ruleBase: ruleBase{Hard: true}, A: "ann", B: "bo", D: 9, Metric: Manhattan},
		},
	}
	// badly broken: shortfall of 8, still one violated rule
	s := p.Score(Assignment{"ann": "00-00", "bo": "00-01"})
	require.Equal(t, 1, s.HardBreaks)
	require.Equal(t, 8*hardScale, s.Total)
}

func TestSoftWeightDefaultsToOne(t *testing.T) {
	var b ruleBase
	require.Equal(t, 1, b.SoftWeight())
	b.Weight = 7
	require.Equal(t, 7, b.SoftWeight())
}
