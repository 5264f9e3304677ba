package load

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skiffworks/skiff/pkg/protocol"
)

func TestHintsNormalLoad(t *testing.T) {
	assert.Empty(t, Hints(50.0, 500))
}

func TestHintsHighCPU(t *testing.T) {
	assert.Equal(t, []protocol.LoadHint{
		protocol.HintThrottleTransfers,
		protocol.HintGenerateThumbnailsLocally,
	}, Hints(85.0, 500))
}

func TestHintsCriticalCPU(t *testing.T) {
	assert.Equal(t, []protocol.LoadHint{
		protocol.HintThrottleTransfers,
		protocol.HintGenerateThumbnailsLocally,
		protocol.HintSearchLocally,
		protocol.HintRecovering,
	}, Hints(96.0, 500))
}

func TestHintsLowRAM(t *testing.T) {
	assert.Equal(t, []protocol.LoadHint{
		protocol.HintSearchLocally,
	}, Hints(50.0, 80))
}

func TestHintsCriticalRAM(t *testing.T) {
	// Critically low memory keeps the low-memory hint. Tiers accumulate.
	assert.Equal(t, []protocol.LoadHint{
		protocol.HintThrottleTransfers,
		protocol.HintSearchLocally,
		protocol.HintRecovering,
	}, Hints(50.0, 40))
}

func TestHintsCriticalEverything(t *testing.T) {
	// Overlapping tiers must not produce duplicates, and the order is fixed.
	assert.Equal(t, []protocol.LoadHint{
		protocol.HintThrottleTransfers,
		protocol.HintGenerateThumbnailsLocally,
		protocol.HintSearchLocally,
		protocol.HintRecovering,
	}, Hints(96.0, 40))
}

func TestHintsBoundaries(t *testing.T) {
	tests := []struct {
		name string
		cpu  float64
		ram  uint64
		want []protocol.LoadHint
	}{
		{"just below high cpu", 79.9, 500, nil},
		{"exactly high cpu", 80.0, 500, []protocol.LoadHint{
			protocol.HintThrottleTransfers,
			protocol.HintGenerateThumbnailsLocally,
		}},
		{"exactly critical cpu", 95.0, 500, []protocol.LoadHint{
			protocol.HintThrottleTransfers,
			protocol.HintGenerateThumbnailsLocally,
			protocol.HintSearchLocally,
			protocol.HintRecovering,
		}},
		{"just above low ram", 50.0, 101, nil},
		{"exactly low ram", 50.0, 100, []protocol.LoadHint{
			protocol.HintSearchLocally,
		}},
		{"exactly critical ram", 50.0, 50, []protocol.LoadHint{
			protocol.HintThrottleTransfers,
			protocol.HintSearchLocally,
			protocol.HintRecovering,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hints(tt.cpu, tt.ram)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestHintsMonotonic checks that worsening either axis never removes a hint:
// raising CPU at fixed RAM, or lowering RAM at fixed CPU, only grows the set.
func TestHintsMonotonic(t *testing.T) {
	cpus := []float64{0, 50, 79.9, 80, 85, 94.9, 95, 96, 100}
	rams := []uint64{1000, 500, 101, 100, 75, 51, 50, 40, 0}

	contains := func(hints []protocol.LoadHint, h protocol.LoadHint) bool {
		for _, got := range hints {
			if got == h {
				return true
			}
		}
		return false
	}

	isSuperset := func(sup, sub []protocol.LoadHint) bool {
		for _, h := range sub {
			if !contains(sup, h) {
				return false
			}
		}
		return true
	}

	for _, ram := range rams {
		prev := Hints(cpus[0], ram)
		for _, cpu := range cpus[1:] {
			cur := Hints(cpu, ram)
			assert.True(t, isSuperset(cur, prev),
				"hints shrank raising cpu to %.1f at ram %d: %v -> %v", cpu, ram, prev, cur)
			prev = cur
		}
	}

	for _, cpu := range cpus {
		prev := Hints(cpu, rams[0])
		for _, ram := range rams[1:] {
			cur := Hints(cpu, ram)
			assert.True(t, isSuperset(cur, prev),
				"hints shrank lowering ram to %d at cpu %.1f: %v -> %v", ram, cpu, prev, cur)
			prev = cur
		}
	}
}
