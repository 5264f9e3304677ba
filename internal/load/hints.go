// Package load samples system CPU and memory on a ticker, derives adaptive
// hints for connected clients, and publishes the result through the server
// state. Hint derivation is a pure function of the sampled values.
package load

import (
	"github.com/skiffworks/skiff/pkg/protocol"
)

// Thresholds for adaptive hints.
const (
	// CPUHighThreshold marks elevated CPU load, in percent.
	CPUHighThreshold = 80.0

	// CPUCriticalThreshold marks critical CPU load, in percent.
	CPUCriticalThreshold = 95.0

	// RAMLowMB marks low free memory, in megabytes.
	RAMLowMB = 100

	// RAMCriticalMB marks critically low free memory, in megabytes.
	RAMCriticalMB = 50
)

// Hints derives the advisory hint set for the given CPU and memory readings.
// Severity tiers are cumulative: crossing a harsher threshold never drops a
// hint the milder tier emitted. The result is duplicate-free and ordered
// throttle_transfers, generate_thumbnails_locally, search_locally, recovering.
func Hints(cpuPercent float64, ramFreeMB uint64) []protocol.LoadHint {
	var throttle, thumbnails, search, recovering bool

	if cpuPercent >= CPUHighThreshold {
		throttle = true
		thumbnails = true
	}
	if cpuPercent >= CPUCriticalThreshold {
		search = true
		recovering = true
	}

	if ramFreeMB <= RAMLowMB {
		search = true
	}
	if ramFreeMB <= RAMCriticalMB {
		throttle = true
		recovering = true
	}

	hints := make([]protocol.LoadHint, 0, 4)
	if throttle {
		hints = append(hints, protocol.HintThrottleTransfers)
	}
	if thumbnails {
		hints = append(hints, protocol.HintGenerateThumbnailsLocally)
	}
	if search {
		hints = append(hints, protocol.HintSearchLocally)
	}
	if recovering {
		hints = append(hints, protocol.HintRecovering)
	}
	return hints
}
