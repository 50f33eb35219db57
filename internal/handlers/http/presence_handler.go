package http

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"presencegate/internal/core/domain"
	"presencegate/internal/core/ports"
	"presencegate/internal/infrastructure/monitoring"
	"presencegate/pkg/utils"
	"presencegate/pkg/validation"

	"github.com/gin-gonic/gin"
)

type PresenceHandler struct {
	service ports.PresenceService
	health  *monitoring.HealthChecker
}

func NewPresenceHandler(
	service ports.PresenceService,
	health *monitoring.HealthChecker,
) *PresenceHandler {
	return &PresenceHandler{
		service: service,
		health:  health,
	}
}

func (h *PresenceHandler) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Health)

	api := router.Group("/api/v1")
	{
		api.GET("/status", h.GetStatus)
		api.POST("/presence", h.UpdatePresence)
		api.POST("/presence/clear", h.ClearPresence)
		api.POST("/tick", h.Tick)
	}
}

type buttonRequest struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type updatePresenceRequest struct {
	Details     string          `json:"details"`
	State       string          `json:"state"`
	Name        string          `json:"name"`
	Kind        string          `json:"kind"`
	ShowElapsed bool            `json:"show_elapsed"`
	StartedAt   string          `json:"started_at"`
	EndsAt      string          `json:"ends_at"`
	LargeImage  string          `json:"large_image_key"`
	LargeText   string          `json:"large_text"`
	SmallImage  string          `json:"small_image_key"`
	SmallText   string          `json:"small_text"`
	Buttons     []buttonRequest `json:"buttons"`
}

// toPresence builds the immutable domain value from the wire request.
// Overlong labels and surplus buttons are clamped by the domain, only
// malformed timestamps, kinds and button URLs are rejected here.
func (r updatePresenceRequest) toPresence(now time.Time) (domain.Presence, error) {
	kind, err := domain.ParseActivityKind(r.Kind)
	if err != nil {
		return domain.Presence{}, err
	}

	opts := []domain.PresenceOption{
		domain.WithDetails(utils.SanitizeString(r.Details)),
		domain.WithState(utils.SanitizeString(r.State)),
		domain.WithKind(kind),
		domain.WithAssets(domain.Assets{
			LargeImageKey: r.LargeImage,
			LargeText:     r.LargeText,
			SmallImageKey: r.SmallImage,
			SmallText:     r.SmallText,
		}),
	}

	if name := utils.SanitizeString(r.Name); name != "" {
		opts = append(opts, domain.WithName(name))
	}

	switch {
	case r.StartedAt != "":
		ts, err := utils.ParseTimestamp(r.StartedAt)
		if err != nil {
			return domain.Presence{}, fmt.Errorf("invalid started_at: %w", err)
		}
		opts = append(opts, domain.WithElapsedSince(ts))
	case r.ShowElapsed:
		opts = append(opts, domain.WithElapsedSince(now))
	}

	if r.EndsAt != "" {
		ts, err := utils.ParseTimestamp(r.EndsAt)
		if err != nil {
			return domain.Presence{}, fmt.Errorf("invalid ends_at: %w", err)
		}
		opts = append(opts, domain.WithRemainingUntil(ts))
	}

	if len(r.Buttons) > 0 {
		buttons := make([]domain.Button, 0, len(r.Buttons))
		for _, b := range r.Buttons {
			if err := validation.ValidateButtonURL(b.URL); err != nil {
				return domain.Presence{}, err
			}
			u, err := url.Parse(b.URL)
			if err != nil {
				return domain.Presence{}, fmt.Errorf("invalid button url: %w", err)
			}
			buttons = append(buttons, domain.Button{Label: b.Label, URL: u})
		}
		opts = append(opts, domain.WithButtons(buttons...))
	}

	return domain.NewPresence(opts...), nil
}

func (h *PresenceHandler) UpdatePresence(c *gin.Context) {
	var req updatePresenceRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	presence, err := req.toPresence(time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.UpdatePresence(c.Request.Context(), presence); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "updated",
		"activity": presence.Activity(),
	})
}

func (h *PresenceHandler) ClearPresence(c *gin.Context) {
	if err := h.service.ClearPresence(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "cleared",
	})
}

func (h *PresenceHandler) Tick(c *gin.Context) {
	if err := h.service.Tick(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "processed",
	})
}

func (h *PresenceHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"application_id":              h.service.ApplicationID(),
		"instance_id":                 h.service.InstanceID(),
		"state":                       h.service.State().String(),
		"cooldown_seconds":            h.service.CooldownRemaining().Seconds(),
		"min_update_interval_seconds": h.service.MinUpdateInterval().Seconds(),
	})
}

func (h *PresenceHandler) Health(c *gin.Context) {
	status := h.health.CheckAll(c.Request.Context())

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
