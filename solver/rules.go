package solver

// hardScale makes any broken hard rule outweigh every realistic combination
// of soft penalties. Soft weights and grid distances are small integers, so
// the gap holds; keep it holding if this constant ever changes.
const hardScale = 1_000_000

// Rule maps an assignment, given the static room and pupil context, to a
// non-negative raw penalty. Hard rules are scaled by hardScale; soft rules
// by their weight.
type Rule interface {
	RuleName() string
	IsHard() bool
	SoftWeight() int
	Penalty(p *Problem, a Assignment) int
}

type ruleBase struct {
	Name   string `json:"name,omitempty"`
	Hard   bool   `json:"hard,omitempty"`
	Weight int    `json:"weight,omitempty"`
}

func (b ruleBase) RuleName() string { return b.Name }
func (b ruleBase) IsHard() bool     { return b.Hard }

func (b ruleBase) SoftWeight() int {
	if b.Weight > 0 {
		return b.Weight
	}
	return 1
}

// MinDistance penalizes pupils A and B sitting closer than D.
type MinDistance struct {
	ruleBase
	A      string `json:"a"`
	B      string `json:"b"`
	D      int    `json:"d"`
	Metric Metric `json:"metric,omitempty"`
}

func (r *MinDistance) Penalty(p *Problem, a Assignment) int {
	ca, oka := p.pos(a, r.A)
	cb, okb := p.pos(a, r.B)
	if !oka || !okb {
		return 0
	}
	return max(0, r.D-r.Metric.Dist(ca, cb))
}

// MaxDistance penalizes pupils A and B sitting farther apart than D.
type MaxDistance struct {
	ruleBase
	A      string `json:"a"`
	B      string `json:"b"`
	D      int    `json:"d"`
	Metric Metric `json:"metric,omitempty"`
}

func (r *MaxDistance) Penalty(p *Problem, a Assignment) int {
	ca, oka := p.pos(a, r.A)
	cb, okb := p.pos(a, r.B)
	if !oka || !okb {
		return 0
	}
	return max(0, r.Metric.Dist(ca, cb)-r.D)
}

// NotAdjacent penalizes pupils A and B in touching cells, diagonals
// included.
type NotAdjacent struct {
	ruleBase
	A string `json:"a"`
	B string `json:"b"`
}

func (r *NotAdjacent) Penalty(p *Problem, a Assignment) int {
	ca, oka := p.pos(a, r.A)
	cb, okb := p.pos(a, r.B)
	if !oka || !okb {
		return 0
	}
	if Chebyshev.Dist(ca, cb) >= 2 {
		return 0
	}
	return 1
}

// PreferFront penalizes a pupil seated at row K or beyond.
type PreferFront struct {
	ruleBase
	Pupil string `json:"pupil"`
	K     int    `json:"k"`
}

func (r *PreferFront) Penalty(p *Problem, a Assignment) int {
	c, ok := p.pos(a, r.Pupil)
	if !ok || c.Row < r.K {
		return 0
	}
	return 1
}

// PreferAwayFromTeacher penalizes a pupil closer than MinD to the nearest
// teacher tile. No teacher tiles means no penalty.
type PreferAwayFromTeacher struct {
	ruleBase
	Pupil  string `json:"pupil"`
	MinD   int    `json:"minD"`
	Metric Metric `json:"metric,omitempty"`
}

func (r *PreferAwayFromTeacher) Penalty(p *Problem, a Assignment) int {
	c, ok := p.pos(a, r.Pupil)
	if !ok {
		return 0
	}
	teachers := p.Room.TeacherCoords()
	if len(teachers) == 0 {
		return 0
	}
	nearest := r.Metric.Dist(c, teachers[0])
	for _, t := range teachers[1:] {
		if d := r.Metric.Dist(c, t); d < nearest {
			nearest = d
		}
	}
	return max(0, r.MinD-nearest)
}

// MustBeInRows penalizes a pupil seated outside rows [RMin, RMax].
type MustBeInRows struct {
	ruleBase
	Pupil string `json:"pupil"`
	RMin  int    `json:"rMin"`
	RMax  int    `json:"rMax"`
}

func (r *MustBeInRows) Penalty(p *Problem, a Assignment) int {
	c, ok := p.pos(a, r.Pupil)
	if !ok || (c.Row >= r.RMin && c.Row <= r.RMax) {
		return 0
	}
	return 1
}

// MustBeInSeats penalizes a pupil seated outside an allowed seat set.
type MustBeInSeats struct {
	ruleBase
	Pupil string   `json:"pupil"`
	Seats []string `json:"seats"`
}

func (r *MustBeInSeats) Penalty(p *Problem, a Assignment) int {
	sid, ok := a[r.Pupil]
	if !ok {
		return 0
	}
	for _, allowed := range r.Seats {
		if allowed == sid {
			return 0
		}
	}
	return 1
}

// TagSeparation penalizes every pair of placed pupils sharing Tag that sit
// closer than MinD, summing the per-pair shortfalls.
type TagSeparation struct {
	ruleBase
	Tag    string `json:"tag"`
	MinD   int    `json:"minD"`
	Metric Metric `json:"metric,omitempty"`
}

func (r *TagSeparation) Penalty(p *Problem, a Assignment) int {
	var coords []Coord
	for i := range p.Pupils {
		if !p.Pupils[i].HasTag(r.Tag) {
			continue
		}
		if c, ok := p.pos(a, p.Pupils[i].ID); ok {
			coords = append(coords, c)
		}
	}
	total := 0
	for i := 0; i < len(coords); i++ {
		for j := i + 1; j < len(coords); j++ {
			total += max(0, r.MinD-r.Metric.Dist(coords[i], coords[j]))
		}
	}
	return total
}

// UnknownRule is any rule variant this version does not recognize. It
// contributes nothing and round-trips its original payload untouched, so
// documents from newer schema revisions survive an edit cycle here.
type UnknownRule struct {
	ruleBase
	Type string
	raw  []byte
}

func (r *UnknownRule) Penalty(*Problem, Assignment) int { return 0 }
