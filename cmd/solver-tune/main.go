package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"seatplan/solver"
)

// Builds a synthetic classroom and sweeps annealing parameters over it,
// printing score distribution and timing per configuration.

func makeProblem(rows, cols, numPupils, numTagged, numRules int, ruleSeed uint32) (*solver.Problem, error) {
	room := solver.NewRoom(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			room.Classify(solver.Coord{Row: r, Col: c}, solver.TileSeat)
		}
	}
	// teacher desk front center
	room.Classify(solver.Coord{Row: 0, Col: cols / 2}, solver.TileTeacher)

	if numPupils > room.NumSeats() {
		return nil, fmt.Errorf("%d pupils do not fit %d seats", numPupils, room.NumSeats())
	}

	pupils := make([]solver.Pupil, numPupils)
	for i := range pupils {
		pupils[i] = solver.Pupil{ID: fmt.Sprintf("p%03d", i)}
	}
	rng := solver.NewRand(ruleSeed)
	for i := 0; i < numTagged && i < numPupils; i++ {
		pupils[rng.Intn(numPupils)].Tags = []string{"chatty"}
	}

	rules := []solver.Rule{
		&solver.TagSeparation{Tag: "chatty", MinD: 3, Metric: solver.Manhattan},
	}
	for len(rules) < numRules {
		a := pupils[rng.Intn(numPupils)].ID
		b := pupils[rng.Intn(numPupils)].ID
		if a == b {
			continue
		}
		switch rng.Intn(3) {
		case 0:
			rules = append(rules, &solver.NotAdjacent{A: a, B: b})
		case 1:
			rules = append(rules, &solver.MinDistance{A: a, B: b, D: 2 + rng.Intn(4), Metric: solver.Manhattan})
		default:
			rules = append(rules, &solver.PreferFront{Pupil: a, K: 1 + rng.Intn(max(1, rows-1))})
		}
	}

	return &solver.Problem{Room: room, Pupils: pupils, Rules: rules}, nil
}

type runResult struct {
	score   solver.Score
	elapsed time.Duration
}

func printStats(label string, results []runResult) {
	if len(results) == 0 {
		fmt.Printf("--- %s ---\n  no results\n\n", label)
		return
	}

	var totalTime time.Duration
	clean := 0
	scores := map[int]int{}
	best := results[0].score.Total
	for _, r := range results {
		totalTime += r.elapsed
		scores[r.score.Total]++
		if r.score.HardBreaks == 0 {
			clean++
		}
		if r.score.Total < best {
			best = r.score.Total
		}
	}

	fmt.Printf("--- %s ---\n", label)
	fmt.Printf("  avg time: %v\n", totalTime/time.Duration(len(results)))
	fmt.Printf("  hard-clean runs: %d/%d (%.0f%%)\n", clean, len(results),
		float64(clean)/float64(len(results))*100)
	fmt.Printf("  best total: %d\n", best)
	fmt.Printf("  score distribution:\n")
	for total, count := range scores {
		fmt.Printf("    total %d: %d/%d runs\n", total, count, len(results))
	}
	fmt.Println()
}

func main() {
	rows := flag.Int("rows", 5, "room rows")
	cols := flag.Int("cols", 6, "room columns")
	numPupils := flag.Int("pupils", 24, "number of pupils")
	numTagged := flag.Int("tagged", 5, "pupils tagged for separation")
	numRules := flag.Int("rules", 8, "total rules to generate")
	ruleSeed := flag.Uint("rule-seed", 1, "instance generation seed")
	runs := flag.Int("runs", 20, "solver runs per parameter set")
	restartList := flag.String("restarts", "5,20", "comma-separated restart counts")
	iterList := flag.String("iters", "2000,10000", "comma-separated iteration counts")
	t0 := flag.Float64("t0", 5.0, "initial temperature")
	t1 := flag.Float64("t1", 0.01, "final temperature")
	flag.Parse()

	prob, err := makeProblem(*rows, *cols, *numPupils, *numTagged, *numRules, uint32(*ruleSeed))
	if err != nil {
		fmt.Fprintf(os.Stderr, "building instance: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Pupils: %d, Seats: %d, Rules: %d\n", len(prob.Pupils), prob.Room.NumSeats(), len(prob.Rules))
	fmt.Printf("Runs per config: %d\n\n", *runs)

	for _, restarts := range parseIntList(*restartList) {
		for _, iters := range parseIntList(*iterList) {
			params := solver.SolveParams{Restarts: restarts, Iters: iters, T0: *t0, T1: *t1}
			var results []runResult
			for run := 0; run < *runs; run++ {
				start := time.Now()
				_, score, err := prob.Solve(params, uint32(run*31337+7), nil)
				if err != nil {
					fmt.Fprintf(os.Stderr, "solve: %v\n", err)
					os.Exit(1)
				}
				results = append(results, runResult{score, time.Since(start)})
			}
			label := fmt.Sprintf("restarts=%d iters=%d t0=%.1f t1=%.3f", restarts, iters, *t0, *t1)
			printStats(label, results)
		}
	}
}

func parseIntList(s string) []int {
	parts := strings.Split(s, ",")
	var result []int
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err == nil {
			result = append(result, v)
		}
	}
	return result
}
