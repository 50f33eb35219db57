package loopback

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"presencegate/internal/core/domain"
	"presencegate/internal/core/ports"
)

// Peer is an in-process stand-in for the native presence SDK. It accepts
// everything, remembers the last submitted activity, and counts every
// capability call. Useful for dry runs, examples, and tests that need a peer
// outside the services package.
type Peer struct {
	logger *zap.SugaredLogger

	mu             sync.Mutex
	initialized    bool
	applicationID  string
	lastActivity   domain.Activity
	hasActivity    bool
	submitCount    int
	tickCount      int
	terminateCount int
}

func New(logger *zap.SugaredLogger) *Peer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Peer{logger: logger}
}

func (p *Peer) Initialize(_ context.Context, applicationID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.initialized = true
	p.applicationID = applicationID
	p.logger.Infow("loopback peer initialized",
		"application_id", applicationID,
	)
	return nil
}

func (p *Peer) SubmitUpdate(_ context.Context, activity domain.Activity) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return ports.ErrNotInitialized
	}

	p.lastActivity = activity
	p.hasActivity = true
	p.submitCount++
	p.logger.Infow("loopback presence updated",
		"details", activity.Details,
		"state", activity.State,
		"kind", activity.Kind.String(),
		"buttons", len(activity.Buttons),
		"empty", activity.IsEmpty(),
	)
	return nil
}

func (p *Peer) ProcessEvents(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return ports.ErrNotInitialized
	}

	p.tickCount++
	return nil
}

func (p *Peer) Terminate(_ context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.initialized = false
	p.terminateCount++
	p.logger.Infow("loopback peer terminated")
}

// Initialized reports whether the peer currently holds a connection.
func (p *Peer) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// LastActivity returns the most recently accepted activity.
func (p *Peer) LastActivity() (domain.Activity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastActivity, p.hasActivity
}

func (p *Peer) SubmitCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitCount
}

func (p *Peer) TickCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tickCount
}

func (p *Peer) TerminateCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminateCount
}
