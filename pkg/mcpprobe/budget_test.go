package mcpprobe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitBudget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		total time.Duration
		parts int
		want  []time.Duration
	}{
		{
			name:  "even split",
			total: 2 * time.Second,
			parts: 2,
			want:  []time.Duration{time.Second, time.Second},
		},
		{
			name:  "remainder absorbed by first",
			total: 2500 * time.Millisecond,
			parts: 3,
			want:  []time.Duration{834 * time.Millisecond, 833 * time.Millisecond, 833 * time.Millisecond},
		},
		{
			name:  "total floored at 500ms",
			total: 100 * time.Millisecond,
			parts: 2,
			want:  []time.Duration{250 * time.Millisecond, 250 * time.Millisecond},
		},
		{
			name:  "per-part floor binds",
			total: 600 * time.Millisecond,
			parts: 3,
			want:  []time.Duration{250 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond},
		},
		{
			name:  "single part",
			total: 750 * time.Millisecond,
			parts: 1,
			want:  []time.Duration{750 * time.Millisecond},
		},
		{
			name:  "zero parts treated as one",
			total: time.Second,
			parts: 0,
			want:  []time.Duration{time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, splitBudget(tt.total, tt.parts))
		})
	}
}

func TestSplitBudgetProperties(t *testing.T) {
	t.Parallel()

	for _, total := range []time.Duration{500 * time.Millisecond, 777 * time.Millisecond, 3 * time.Second, 60 * time.Second} {
		for parts := 1; parts <= 4; parts++ {
			got := splitBudget(total, parts)
			require.Len(t, got, parts)

			var sum time.Duration
			for _, slice := range got {
				assert.GreaterOrEqual(t, slice, minPhaseBudget)
				sum += slice
			}
			if total >= time.Duration(parts)*minPhaseBudget {
				assert.Equal(t, total, sum, "split(%s, %d) must sum exactly", total, parts)
			}

			// Determinism.
			assert.Equal(t, got, splitBudget(total, parts))
		}
	}
}

func TestAttemptBudgets(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []time.Duration{2 * time.Second}, attemptBudgets(2*time.Second, 1))

	// Two candidates split 60/40 in attempt order.
	assert.Equal(t,
		[]time.Duration{1200 * time.Millisecond, 800 * time.Millisecond},
		attemptBudgets(2*time.Second, 2))

	// The second slice never drops below the phase floor.
	assert.Equal(t,
		[]time.Duration{360 * time.Millisecond, 250 * time.Millisecond},
		attemptBudgets(600*time.Millisecond, 2))

	// Tiny totals are floored before splitting.
	assert.Equal(t,
		[]time.Duration{300 * time.Millisecond, 250 * time.Millisecond},
		attemptBudgets(0, 2))
}

func TestClampTimeout(t *testing.T) {
	t.Parallel()

	assert.Equal(t, minTotalBudget, clampTimeout(0, maxProbeTimeout))
	assert.Equal(t, minTotalBudget, clampTimeout(100*time.Millisecond, maxProbeTimeout))
	assert.Equal(t, 5*time.Second, clampTimeout(5*time.Second, maxProbeTimeout))
	assert.Equal(t, maxProbeTimeout, clampTimeout(time.Hour, maxProbeTimeout))
	assert.Equal(t, maxDiscoverTimeout, clampTimeout(time.Hour, maxDiscoverTimeout))
}
