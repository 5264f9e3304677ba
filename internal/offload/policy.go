// Package offload decides which connected client, if any, may take over a
// heavy task. The policy is a pure predicate over reported capabilities; the
// server falls back to doing the work itself when no client qualifies.
package offload

import (
	"github.com/skiffworks/skiff/pkg/protocol"
)

// MinCandidateRAMMB is the free memory a client must report to be considered.
const MinCandidateRAMMB = 500

// MinTaskCPUCores is the core count required when no GPU compensates.
const MinTaskCPUCores = 4

// Qualifies reports whether a client with the given capabilities may run the
// task. Clients on battery or short on memory never qualify; beyond that the
// task kind decides which capability flags matter.
func Qualifies(caps *protocol.ClientCapabilities, task protocol.OffloadTask) bool {
	if caps == nil {
		return false
	}

	if !caps.OnACPower || caps.RAMFreeMB < MinCandidateRAMMB {
		return false
	}

	switch task.Kind {
	case protocol.TaskThumbnail:
		return caps.CanGenerateThumbnails && (caps.HasGPU || caps.CPUCores >= MinTaskCPUCores)
	case protocol.TaskSearch:
		return caps.CanSearchLocally && caps.CPUCores >= MinTaskCPUCores
	default:
		return false
	}
}
