package solver

// Score reports the weighted penalty total and, separately, how many hard
// rule objects are violated. HardBreaks is a count of broken rules, not a
// magnitude: a single hard rule broken badly still counts as one.
type Score struct {
	Total      int `json:"total"`
	HardBreaks int `json:"hardBreaks"`
}

// Score evaluates an assignment against every rule. Unplaced pupils and
// unknown rule variants contribute nothing.
func (p *Problem) Score(a Assignment) Score {
	var s Score
	for _, r := range p.Rules {
		raw := r.Penalty(p, a)
		if raw <= 0 {
			continue
		}
		if r.IsHard() {
			s.Total += raw * hardScale
			s.HardBreaks++
		} else {
			s.Total += raw * r.SoftWeight()
		}
	}
	return s
}
