package ports

import (
	"context"
	"time"

	"presencegate/internal/core/domain"
)

type PresenceService interface {
	UpdatePresence(ctx context.Context, presence domain.Presence) error
	ClearPresence(ctx context.Context) error
	Tick(ctx context.Context) error
	Shutdown(ctx context.Context)
	State() domain.ClientState
	ApplicationID() string
	InstanceID() domain.InstanceID
	CooldownRemaining() time.Duration
	MinUpdateInterval() time.Duration
}
