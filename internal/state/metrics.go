package state

// Metrics receives coordination-state observations. Implementations must
// tolerate nil receivers; a nil Metrics records nothing.
type Metrics interface {
	// SetActiveSessions records the current number of registered sessions.
	SetActiveSessions(n int)

	// SetActiveTransfers records the current number of in-flight transfers.
	SetActiveTransfers(n int)

	// IncBroadcastDropped counts a broadcast dropped on a full session queue.
	IncBroadcastDropped()

	// ObserveBackendOp records a backend call's duration and outcome.
	ObserveBackendOp(op string, seconds float64, success bool)
}
