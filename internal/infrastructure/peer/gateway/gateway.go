package gateway

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"presencegate/internal/core/domain"
	"presencegate/internal/core/ports"
)

// defaultActivityName is shown by the host when a presence carries no name
// override. The gateway refuses activities without a name.
const defaultActivityName = "presencegate"

type Config struct {
	Token  string
	Status string
}

// Peer drives presence through a Discord gateway session. It implements
// ports.Peer; the session itself is owned by discordgo, which pumps events
// on its own goroutines. Gateway presences cannot carry link buttons, so
// activity buttons are dropped here.
type Peer struct {
	cfg    Config
	logger *zap.SugaredLogger

	session       *discordgo.Session
	applicationID string
}

func New(cfg Config, logger *zap.SugaredLogger) *Peer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Peer{cfg: cfg, logger: logger}
}

func (p *Peer) Initialize(_ context.Context, applicationID string) error {
	if p.cfg.Token == "" {
		return fmt.Errorf("gateway token not configured: %w", ports.ErrUnavailable)
	}

	session, err := discordgo.New("Bot " + p.cfg.Token)
	if err != nil {
		return fmt.Errorf("create gateway session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsNone

	if err := session.Open(); err != nil {
		return fmt.Errorf("open gateway session: %w", ports.ErrUnavailable)
	}

	p.session = session
	p.applicationID = applicationID
	p.logger.Infow("gateway peer initialized",
		"application_id", applicationID,
	)
	return nil
}

func (p *Peer) SubmitUpdate(_ context.Context, activity domain.Activity) error {
	if p.session == nil {
		return ports.ErrNotInitialized
	}

	if err := p.session.UpdateStatusComplex(p.statusData(activity)); err != nil {
		return fmt.Errorf("update gateway status: %w", err)
	}
	p.logger.Debugw("gateway presence updated",
		"details", activity.Details,
		"kind", activity.Kind.String(),
		"empty", activity.IsEmpty(),
	)
	return nil
}

func (p *Peer) ProcessEvents(_ context.Context) error {
	if p.session == nil {
		return ports.ErrNotInitialized
	}

	// discordgo processes inbound events on its own goroutines; all that is
	// left to verify here is that the session is still alive.
	if !p.session.DataReady {
		return fmt.Errorf("gateway session not ready: %w", ports.ErrUnavailable)
	}
	p.logger.Debugw("gateway session alive",
		"heartbeat_latency", p.session.HeartbeatLatency(),
	)
	return nil
}

func (p *Peer) Terminate(_ context.Context) {
	if p.session == nil {
		return
	}
	if err := p.session.Close(); err != nil {
		p.logger.Warnw("gateway session close failed",
			"error", err,
		)
	}
	p.session = nil
	p.logger.Infow("gateway peer terminated")
}

// statusData maps the peer-facing activity onto the gateway status payload.
// An empty activity clears the presence by sending no activities at all.
func (p *Peer) statusData(activity domain.Activity) discordgo.UpdateStatusData {
	data := discordgo.UpdateStatusData{
		Status:     p.status(),
		Activities: []*discordgo.Activity{},
	}
	if activity.IsEmpty() {
		return data
	}

	name := activity.Name
	if name == "" {
		name = defaultActivityName
	}

	ga := &discordgo.Activity{
		Name: name,
		// ActivityKind shares the gateway's numeric codes.
		Type:          discordgo.ActivityType(activity.Kind),
		State:         activity.State,
		Details:       activity.Details,
		ApplicationID: p.applicationID,
		Assets: discordgo.Assets{
			LargeImageID: activity.LargeImageKey,
			LargeText:    activity.LargeText,
			SmallImageID: activity.SmallImageKey,
			SmallText:    activity.SmallText,
		},
	}
	if activity.StartTimestamp != nil {
		ga.Timestamps.StartTimestamp = *activity.StartTimestamp
	}
	if activity.EndTimestamp != nil {
		ga.Timestamps.EndTimestamp = *activity.EndTimestamp
	}

	data.Activities = append(data.Activities, ga)
	return data
}

func (p *Peer) status() string {
	if p.cfg.Status != "" {
		return p.cfg.Status
	}
	return string(discordgo.StatusOnline)
}
