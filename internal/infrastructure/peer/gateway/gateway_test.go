package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap/zaptest"

	"presencegate/internal/core/domain"
	"presencegate/internal/core/ports"
)

func TestPeer_SubmitBeforeInitialize(t *testing.T) {
	peer := New(Config{}, zaptest.NewLogger(t).Sugar())

	if err := peer.SubmitUpdate(context.Background(), domain.Activity{Details: "x"}); !errors.Is(err, ports.ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
	if err := peer.ProcessEvents(context.Background()); !errors.Is(err, ports.ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}

func TestPeer_InitializeWithoutToken(t *testing.T) {
	peer := New(Config{}, zaptest.NewLogger(t).Sugar())

	err := peer.Initialize(context.Background(), "123456789012345678")
	if !errors.Is(err, ports.ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable for missing token, got %v", err)
	}
}

func TestPeer_TerminateWithoutSession(t *testing.T) {
	peer := New(Config{}, zaptest.NewLogger(t).Sugar())
	peer.Terminate(context.Background())
}

func TestPeer_StatusData_FullActivity(t *testing.T) {
	peer := New(Config{Status: "idle"}, zaptest.NewLogger(t).Sugar())
	peer.applicationID = "123456789012345678"

	start := int64(1_700_000_000)
	data := peer.statusData(domain.Activity{
		Details:        "In a match",
		State:          "Ranked",
		Name:           "Example Game",
		Kind:           domain.ActivityCompeting,
		StartTimestamp: &start,
		LargeImageKey:  "map_large",
		LargeText:      "The map",
		SmallImageKey:  "rank_small",
		SmallText:      "The rank",
	})

	if data.Status != "idle" {
		t.Errorf("Status = %v, want idle", data.Status)
	}
	if len(data.Activities) != 1 {
		t.Fatalf("Expected 1 activity, got %d", len(data.Activities))
	}
	ga := data.Activities[0]
	if ga.Name != "Example Game" || ga.Details != "In a match" || ga.State != "Ranked" {
		t.Errorf("Text fields not mapped: %+v", ga)
	}
	if ga.Type != discordgo.ActivityTypeCompeting {
		t.Errorf("Type = %v, want competing", ga.Type)
	}
	if ga.ApplicationID != "123456789012345678" {
		t.Errorf("ApplicationID = %v, want the configured id", ga.ApplicationID)
	}
	if ga.Timestamps.StartTimestamp != start || ga.Timestamps.EndTimestamp != 0 {
		t.Errorf("Timestamps = %+v, want start only", ga.Timestamps)
	}
	if ga.Assets.LargeImageID != "map_large" || ga.Assets.LargeText != "The map" ||
		ga.Assets.SmallImageID != "rank_small" || ga.Assets.SmallText != "The rank" {
		t.Errorf("Assets not mapped: %+v", ga.Assets)
	}
}

func TestPeer_StatusData_ClearActivity(t *testing.T) {
	peer := New(Config{}, zaptest.NewLogger(t).Sugar())

	data := peer.statusData(domain.Activity{})
	if len(data.Activities) != 0 {
		t.Errorf("Expected no activities for a clear presence, got %d", len(data.Activities))
	}
	if data.Status != string(discordgo.StatusOnline) {
		t.Errorf("Status = %v, want online default", data.Status)
	}
}

func TestPeer_StatusData_NameFallback(t *testing.T) {
	peer := New(Config{}, zaptest.NewLogger(t).Sugar())

	data := peer.statusData(domain.Activity{Details: "x"})
	if len(data.Activities) != 1 {
		t.Fatalf("Expected 1 activity, got %d", len(data.Activities))
	}
	if data.Activities[0].Name != defaultActivityName {
		t.Errorf("Name = %v, want fallback %v", data.Activities[0].Name, defaultActivityName)
	}
}

func TestPeer_StatusData_EndTimestamp(t *testing.T) {
	peer := New(Config{}, zaptest.NewLogger(t).Sugar())

	end := int64(1_700_003_600)
	data := peer.statusData(domain.Activity{Details: "x", EndTimestamp: &end})
	ga := data.Activities[0]
	if ga.Timestamps.EndTimestamp != end || ga.Timestamps.StartTimestamp != 0 {
		t.Errorf("Timestamps = %+v, want end only", ga.Timestamps)
	}
}

func TestPeer_StatusData_KindCodes(t *testing.T) {
	peer := New(Config{}, zaptest.NewLogger(t).Sugar())

	tests := []struct {
		kind domain.ActivityKind
		want discordgo.ActivityType
	}{
		{domain.ActivityPlaying, discordgo.ActivityTypeGame},
		{domain.ActivityListening, discordgo.ActivityTypeListening},
		{domain.ActivityWatching, discordgo.ActivityTypeWatching},
		{domain.ActivityCompeting, discordgo.ActivityTypeCompeting},
	}

	for _, tt := range tests {
		data := peer.statusData(domain.Activity{Details: "x", Kind: tt.kind})
		if got := data.Activities[0].Type; got != tt.want {
			t.Errorf("Kind %v mapped to %v, want %v", tt.kind, got, tt.want)
		}
	}
}
