package solver

// Rand is a small seeded generator with a guaranteed-stable output stream.
// Builder, repair and annealing results must be reproducible from a seed
// alone, across runs and platforms, so math/rand (whose sequences may change
// between Go releases) is not used here.
type Rand struct {
	state uint32
}

func NewRand(seed uint32) *Rand {
	return &Rand{state: seed}
}

func (r *Rand) next() uint32 {
	r.state += 0x6d2b79f5
	z := r.state
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	return z ^ (z >> 14)
}

// Uint32 returns the next raw draw. Used to derive per-restart seeds from a
// master stream.
func (r *Rand) Uint32() uint32 {
	return r.next()
}

// Float64 returns the next draw scaled into [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.next()) / (1 << 32)
}

// Intn returns a draw in [0, n). Panics if n <= 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		panic("solver: Intn with non-positive n")
	}
	return int(r.Float64() * float64(n))
}

// Shuffle permutes n elements with a Fisher-Yates pass.
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		swap(i, j)
	}
}
