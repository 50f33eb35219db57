package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"presencegate/internal/core/domain"
	"presencegate/internal/core/ports"
	apperrors "presencegate/pkg/errors"
	"presencegate/pkg/ratelimit"
)

type peerOp int

const (
	opInitialize peerOp = iota
	opSubmitUpdate
	opProcessEvents
)

// PresenceClient owns a single peer connection and governs every call to it:
// a three-state lifecycle, a cooldown limiter for presence updates, and one
// exclusive discipline around the non-reentrant native peer.
//
// Locking: stateMu guards the lifecycle state; peerMu serializes every peer
// call end-to-end. UpdatePresence and Tick take peerMu first and stateMu only
// for the gate check inside it; Shutdown never holds both locks at once.
type PresenceClient struct {
	applicationID string
	instanceID    domain.InstanceID
	peer          ports.Peer
	limiter       *ratelimit.Limiter
	logger        *zap.SugaredLogger
	metrics       ports.ClientMetrics

	stateMu sync.Mutex
	state   domain.ClientState

	peerMu sync.Mutex
}

// NewPresenceClient connects to the presence host and returns a usable
// client. An empty applicationID fails before the peer is ever contacted.
// Peer initialization failure yields no instance and releases the peer
// (terminate is invoked best-effort) so nothing half-connected is left
// behind. A nil logger logs nowhere; nil metrics discard observations.
func NewPresenceClient(
	ctx context.Context,
	applicationID string,
	peer ports.Peer,
	limiter *ratelimit.Limiter,
	logger *zap.SugaredLogger,
	metrics ports.ClientMetrics,
) (*PresenceClient, error) {
	if applicationID == "" {
		return nil, apperrors.Wrap(domain.ErrEmptyApplicationID,
			apperrors.ErrCodeInvalidIdentifier, "application id must not be empty")
	}
	if peer == nil {
		panic("services: peer must not be nil")
	}
	if limiter == nil {
		panic("services: limiter must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}

	c := &PresenceClient{
		applicationID: applicationID,
		instanceID:    domain.InstanceID(uuid.New().String()),
		peer:          peer,
		limiter:       limiter,
		logger:        logger,
		metrics:       metrics,
		state:         domain.StateCreated,
	}

	c.peerMu.Lock()
	if err := c.peer.Initialize(ctx, applicationID); err != nil {
		c.peer.Terminate(ctx)
		c.peerMu.Unlock()
		return nil, c.mapPeerError(opInitialize, err)
	}
	c.peerMu.Unlock()

	c.stateMu.Lock()
	c.state = domain.StateInitialized
	c.stateMu.Unlock()

	c.logger.Debugw("presence client initialized",
		"application_id", c.applicationID,
		"instance_id", c.instanceID,
		"min_update_interval", c.limiter.MinInterval(),
	)

	return c, nil
}

// UpdatePresence submits a presence to the peer. Local gates run first: a
// shut-down client rejects the call, and a rate-limited attempt returns the
// exact remaining wait without ever contacting the peer. An acceptance is
// not refunded when the peer then fails the submit.
func (c *PresenceClient) UpdatePresence(ctx context.Context, presence domain.Presence) error {
	c.peerMu.Lock()
	defer c.peerMu.Unlock()

	if err := c.gate(); err != nil {
		c.metrics.RecordUpdate(ports.OutcomeRejectedShutdown, 0)
		return apperrors.Wrap(err, apperrors.ErrCodeUpdateFailed, "client has been shut down")
	}

	var rlErr *ratelimit.Error
	if err := c.limiter.Record(); errors.As(err, &rlErr) {
		c.metrics.RecordUpdate(ports.OutcomeRateLimited, 0)
		c.logger.Debugw("presence update rate limited",
			"retry_after", rlErr.RetryAfter,
		)
		perr := apperrors.NewRateLimited(rlErr.RetryAfter)
		perr.Cause = rlErr
		return perr
	}

	activity := presence.Activity()

	start := time.Now()
	err := c.peer.SubmitUpdate(ctx, activity)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.RecordUpdate(ports.OutcomeFailed, elapsed)
		c.logger.Warnw("presence update failed",
			"instance_id", c.instanceID,
			"error", err,
		)
		return c.mapPeerError(opSubmitUpdate, err)
	}

	c.metrics.RecordUpdate(ports.OutcomeAccepted, elapsed)
	c.logger.Debugw("presence update submitted",
		"details", activity.Details,
		"state", activity.State,
		"kind", presence.Kind().String(),
	)
	return nil
}

// ClearPresence blanks the display. Subject to the same lifecycle and rate
// gates as any other update.
func (c *PresenceClient) ClearPresence(ctx context.Context) error {
	return c.UpdatePresence(ctx, domain.ClearPresence())
}

// Tick lets the peer process queued inbound events. Safe to call at any
// cadence; ticks are never rate limited.
func (c *PresenceClient) Tick(ctx context.Context) error {
	c.peerMu.Lock()
	defer c.peerMu.Unlock()

	if err := c.gate(); err != nil {
		c.metrics.RecordTick(ports.OutcomeRejectedShutdown, 0)
		return apperrors.Wrap(err, apperrors.ErrCodeTickFailed, "client has been shut down")
	}

	start := time.Now()
	err := c.peer.ProcessEvents(ctx)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.RecordTick(ports.OutcomeFailed, elapsed)
		c.logger.Warnw("event processing failed",
			"instance_id", c.instanceID,
			"error", err,
		)
		return c.mapPeerError(opProcessEvents, err)
	}

	c.metrics.RecordTick(ports.OutcomeAccepted, elapsed)
	return nil
}

// Shutdown is idempotent: the first call flips the lifecycle and terminates
// the peer exactly once; every later call observes the flipped state and
// returns immediately. A shutdown racing an in-flight update or tick waits
// for that peer call to finish, so the peer never sees terminate interleaved
// with another call. The racing update either completes fully before
// terminate or fails the shutdown gate.
func (c *PresenceClient) Shutdown(ctx context.Context) {
	c.stateMu.Lock()
	if c.state == domain.StateShutdown {
		c.stateMu.Unlock()
		return
	}
	c.state = domain.StateShutdown
	c.stateMu.Unlock()

	c.peerMu.Lock()
	c.peer.Terminate(ctx)
	c.peerMu.Unlock()

	c.metrics.RecordShutdown()
	c.logger.Infow("presence client shut down",
		"application_id", c.applicationID,
		"instance_id", c.instanceID,
	)
}

func (c *PresenceClient) State() domain.ClientState {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

func (c *PresenceClient) ApplicationID() string {
	return c.applicationID
}

func (c *PresenceClient) InstanceID() domain.InstanceID {
	return c.instanceID
}

// CooldownRemaining reports how long until the next update would be
// accepted; zero when one is allowed right now.
func (c *PresenceClient) CooldownRemaining() time.Duration {
	return c.limiter.UntilNext()
}

func (c *PresenceClient) MinUpdateInterval() time.Duration {
	return c.limiter.MinInterval()
}

// gate returns the shutdown sentinel when the client is no longer usable.
// Callers hold peerMu, so a passed gate means the peer call that follows
// finishes before any racing shutdown can reach terminate.
func (c *PresenceClient) gate() error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.state == domain.StateShutdown {
		return domain.ErrClientShutdown
	}
	return nil
}

// mapPeerError translates peer-level failures into the client taxonomy. The
// mapping is enumerated here once, keyed on the structured peer codes, not
// scattered per call site.
func (c *PresenceClient) mapPeerError(op peerOp, err error) *apperrors.PresenceError {
	switch op {
	case opInitialize:
		switch {
		case errors.Is(err, ports.ErrUnavailable):
			return apperrors.Wrap(err, apperrors.ErrCodePeerUnavailable, "presence host not reachable")
		case errors.Is(err, ports.ErrRejectedApplicationID):
			return apperrors.Wrap(err, apperrors.ErrCodeInvalidIdentifier, "application id rejected by peer")
		default:
			return apperrors.Wrap(err, apperrors.ErrCodeInitializationFailed, "peer initialization failed")
		}
	case opSubmitUpdate:
		if errors.Is(err, ports.ErrUnavailable) {
			return apperrors.Wrap(err, apperrors.ErrCodePeerUnavailable, "presence host not reachable")
		}
		return apperrors.Wrap(err, apperrors.ErrCodeUpdateFailed, "presence update failed")
	default:
		return apperrors.Wrap(err, apperrors.ErrCodeTickFailed, "event processing failed")
	}
}
