package ports

import "time"

// Outcome labels for update/tick observations.
const (
	OutcomeAccepted         = "accepted"
	OutcomeRateLimited      = "rate_limited"
	OutcomeRejectedShutdown = "rejected_shutdown"
	OutcomeFailed           = "failed"
)

type ClientMetrics interface {
	RecordUpdate(outcome string, peerDuration time.Duration)
	RecordTick(outcome string, peerDuration time.Duration)
	RecordShutdown()
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) RecordUpdate(string, time.Duration) {}

func (NopMetrics) RecordTick(string, time.Duration) {}

func (NopMetrics) RecordShutdown() {}
