package service

import "time"

// EngineState is the sync engine's state machine position.
type EngineState int32

const (
	StateIdle EngineState = iota
	StateSyncing
)

func (s EngineState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSyncing:
		return "syncing"
	default:
		return "unknown"
	}
}

// TriggerReason names the event that started a cycle.
type TriggerReason string

const (
	ReasonManual       TriggerReason = "manual"
	ReasonPeriodic     TriggerReason = "periodic"
	ReasonConnectivity TriggerReason = "connectivity-restored"
)

// CycleOutcome is the result class of one Trigger call.
type CycleOutcome string

const (
	OutcomeSuccess CycleOutcome = "success"
	OutcomeFailure CycleOutcome = "failure"
	OutcomeSkipped CycleOutcome = "skipped"
)

// SkipReason explains a skipped cycle.
type SkipReason string

const (
	SkipOffline SkipReason = "offline"
	SkipBusy    SkipReason = "already-syncing"
)

// CycleResult describes one Trigger call.
type CycleResult struct {
	Reason  TriggerReason
	Outcome CycleOutcome
	Skip    SkipReason

	// Drained is the number of items in the snapshot; Sent how many of them
	// the server accepted before the cycle ended.
	Drained   int
	Sent      int
	HighWater int64
	// Cleared is the number of outbox rows removed after a full success.
	Cleared int64
	// Acknowledged reports whether the /sync acknowledgement was accepted.
	Acknowledged bool

	StartedAt  time.Time
	FinishedAt time.Time

	// Err is the cycle error for failed cycles, also returned by Trigger.
	Err error
}

// Skipped reports whether the cycle did not run.
func (r CycleResult) Skipped() bool {
	return r.Outcome == OutcomeSkipped
}

// StateChange is delivered to subscribers on every state transition and on
// every skipped trigger (with From == To).
type StateChange struct {
	From   EngineState
	To     EngineState
	Reason TriggerReason
	// Result is set when a cycle ends or is skipped.
	Result *CycleResult
	At     time.Time
}
