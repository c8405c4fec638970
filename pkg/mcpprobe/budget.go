package mcpprobe

import "time"

const (
	// minTotalBudget is the floor applied to every requested total before
	// splitting, no matter how small the caller's request was.
	minTotalBudget = 500 * time.Millisecond
	// minPhaseBudget is the floor applied to each individual phase slice.
	minPhaseBudget = 250 * time.Millisecond
)

// splitBudget divides a total time budget into parts sequential phase budgets.
// The total is floored at 500ms and each part at 250ms; when neither floor
// binds, the slices sum to the clamped total exactly, with the integer
// division remainder absorbed by the first slice. The result is fully
// deterministic.
func splitBudget(total time.Duration, parts int) []time.Duration {
	if parts < 1 {
		parts = 1
	}
	clamped := total
	if clamped < minTotalBudget {
		clamped = minTotalBudget
	}
	if floor := time.Duration(parts) * minPhaseBudget; clamped < floor {
		clamped = floor
	}
	clamped = clamped.Truncate(time.Millisecond)

	base := (clamped / time.Duration(parts)).Truncate(time.Millisecond)
	out := make([]time.Duration, parts)
	for i := range out {
		out[i] = base
	}
	out[0] += clamped - base*time.Duration(parts)
	return out
}

// firstAttemptShare is the fraction of the outer budget handed to the first
// of two transport candidates. The asymmetric 60/40 split is an empirically
// tuned constant: a wrong first transport tends to fail fast, while the
// working one needs most of the budget for its own inner phases.
const firstAttemptShare = 0.6

// attemptBudgets allocates the outer per-candidate budgets for a probe or
// discovery run. A single candidate receives the whole budget; two candidates
// split it 60/40 in attempt order, each slice still subject to the phase
// floor.
func attemptBudgets(total time.Duration, attempts int) []time.Duration {
	if total < minTotalBudget {
		total = minTotalBudget
	}
	switch attempts {
	case 1:
		return []time.Duration{total}
	case 2:
		first := time.Duration(float64(total) * firstAttemptShare).Truncate(time.Millisecond)
		second := total - first
		if first < minPhaseBudget {
			first = minPhaseBudget
		}
		if second < minPhaseBudget {
			second = minPhaseBudget
		}
		return []time.Duration{first, second}
	default:
		return splitBudget(total, attempts)
	}
}

// clampTimeout confines a caller-supplied per-target timeout to a sane range.
func clampTimeout(d, ceiling time.Duration) time.Duration {
	if d < minTotalBudget {
		return minTotalBudget
	}
	if d > ceiling {
		return ceiling
	}
	return d
}
