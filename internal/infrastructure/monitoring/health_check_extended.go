package monitoring

import (
	"context"
	"fmt"
	"time"

	"presencegate/internal/core/domain"
	"presencegate/internal/core/ports"
)

// AddClientCheck reports healthy while the presence client is initialized.
func (h *HealthChecker) AddClientCheck(svc ports.PresenceService, timeout time.Duration) {
	h.AddCheck("client", func(ctx context.Context) (bool, error) {
		if state := svc.State(); state != domain.StateInitialized {
			return false, fmt.Errorf("client state is %s", state)
		}
		return true, nil
	}, timeout)
}
