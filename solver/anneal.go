package solver

import "math"

type SolveParams struct {
	Restarts int
	Iters    int
	T0       float64
	T1       float64
}

var DefaultSolveParams = SolveParams{
	Restarts: 20,
	Iters:    10000,
	T0:       5.0,
	T1:       0.01,
}

// Progress is handed to the caller's callback after every restart and
// periodically within one. It reports the best result so far and has no
// effect on the search; hosts with an event loop use it as their yield
// point.
type Progress struct {
	Restart int
	Best    Score
}

type ProgressFunc func(Progress)

const (
	tempEpsilon   = 1e-9
	progressEvery = 500
)

// Solve runs independent annealing restarts, each from a fresh initial
// assignment, and keeps the best result. Restart streams are seeded from a
// master generator, so the whole run is reproducible from seed alone. A
// zero-penalty assignment ends the run early.
func (p *Problem) Solve(params SolveParams, seed uint32, progress ProgressFunc) (Assignment, Score, error) {
	if err := p.validate(); err != nil {
		return nil, Score{}, err
	}

	master := NewRand(seed)
	var best Assignment
	bestScore := Score{Total: math.MaxInt}

	// mid-restart reports must still describe the best of the whole run
	var inner ProgressFunc
	if progress != nil {
		inner = func(pr Progress) {
			if bestScore.Total < pr.Best.Total {
				pr.Best = bestScore
			}
			progress(pr)
		}
	}

	for restart := range params.Restarts {
		rng := NewRand(master.Uint32())
		initial, err := p.buildInitial(rng)
		if err != nil {
			return nil, Score{}, err
		}
		a, sc := p.annealPass(initial, params.Iters, params.T0, params.T1, rng, restart, inner)
		if sc.Total < bestScore.Total {
			best = a
			bestScore = sc
		}
		if progress != nil {
			progress(Progress{Restart: restart, Best: bestScore})
		}
		if bestScore.Total == 0 {
			break
		}
	}
	return best, bestScore, nil
}

// QuickImprove refines an externally supplied assignment in place of a full
// multi-restart run: the assignment is repaired first, then put through a
// single temperature sweep with the same move and acceptance machinery.
func (p *Problem) QuickImprove(prior Assignment, iters int, t0, t1 float64, seed uint32, progress ProgressFunc) (Assignment, Score, error) {
	if err := p.validate(); err != nil {
		return nil, Score{}, err
	}

	rng := NewRand(seed)
	start, err := p.repair(prior, rng)
	if err != nil {
		return nil, Score{}, err
	}
	a, sc := p.annealPass(start, iters, t0, t1, rng, 0, progress)
	if progress != nil {
		progress(Progress{Restart: 0, Best: sc})
	}
	return a, sc, nil
}

// annealPass is one simulated-annealing sweep. The only move is swapping
// the seats of two distinct movable pupils; fixed pupils never move.
// Worsening moves are accepted with probability exp(-delta/T) while T
// decays geometrically from t0 to t1.
func (p *Problem) annealPass(start Assignment, iters int, t0, t1 float64, rng *Rand, restart int, progress ProgressFunc) (Assignment, Score) {
	cur := start.Clone()
	curScore := p.Score(cur)
	best := cur.Clone()
	bestScore := curScore

	var movable []string
	for i := range p.Pupils {
		if !p.Pupils[i].IsFixed() {
			movable = append(movable, p.Pupils[i].ID)
		}
	}
	if len(movable) < 2 || iters <= 0 {
		return best, bestScore
	}

	ratio := 1.0
	if iters > 1 {
		ratio = math.Pow(t1/t0, 1/float64(iters-1))
	}
	t := t0

	for step := 0; step < iters && bestScore.Total > 0; step++ {
		i := rng.Intn(len(movable))
		j := rng.Intn(len(movable) - 1)
		if j >= i {
			j++
		}
		pa, pb := movable[i], movable[j]

		cur[pa], cur[pb] = cur[pb], cur[pa]
		newScore := p.Score(cur)
		delta := newScore.Total - curScore.Total

		if delta <= 0 || rng.Float64() < math.Exp(-float64(delta)/math.Max(tempEpsilon, t)) {
			curScore = newScore
			if curScore.Total < bestScore.Total {
				best = cur.Clone()
				bestScore = curScore
			}
		} else {
			cur[pa], cur[pb] = cur[pb], cur[pa]
		}

		if progress != nil && (step+1)%progressEvery == 0 {
			progress(Progress{Restart: restart, Best: bestScore})
		}
		t *= ratio
	}
	return best, bestScore
}
