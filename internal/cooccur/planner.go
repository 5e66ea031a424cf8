package cooccur

import "math"

// eulerMascheroni is γ, used to approximate Σ_{w=1..N} min(N, N/w) ≈ N·(ln N + γ),
// the dominant term in the dense table's cell count when |V| ≈ N (spec.md §4.2).
const eulerMascheroni = 0.1544313298

// defaultMemoryLimitGB is the documented default for the accumulator
// (spec.md §6: "4.0 per the tool's help ... treat the documented 4.0 as
// canonical").
const defaultMemoryLimitGB = 4.0

// fixedPointTolerance is the convergence threshold for the N solve.
const fixedPointTolerance = 1e-3

// Plan is the result of memory planning: the frequency-product cutoff and
// the overflow buffer capacity.
type Plan struct {
	MaxProduct     int64
	OverflowLength int64
}

// planMemory computes Plan from the soft memory limit B (gigabytes) and the
// on-disk record size s, following spec.md §4.2:
//
//	R = 0.85 · B · 2^30 / s
//	solve N·(ln N + γ) = R by fixed-point iteration N ← R / (ln N + γ), N₀ = 10^5
//	M = N, overflow_length = R / 6
// PlanMemory is the exported entry point cmd/cooccur calls to derive a Plan
// from the user's --memory-limit flag and the on-disk record size.
func PlanMemory(memoryLimitGB float64, recordSize int) Plan {
	return planMemory(memoryLimitGB, recordSize)
}

func planMemory(memoryLimitGB float64, recordSize int) Plan {
	recordCeiling := 0.85 * memoryLimitGB * (1 << 30) / float64(recordSize)

	n := 1e5

	for {
		next := recordCeiling / (math.Log(n) + eulerMascheroni)
		delta := next - n
		n = next

		if math.Abs(delta) < fixedPointTolerance {
			break
		}
	}

	return Plan{
		MaxProduct:     int64(n),
		OverflowLength: int64(recordCeiling / 6),
	}
}
