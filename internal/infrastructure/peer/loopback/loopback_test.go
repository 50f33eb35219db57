package loopback

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"presencegate/internal/core/domain"
	"presencegate/internal/core/ports"
)

func TestPeer_SubmitBeforeInitialize(t *testing.T) {
	peer := New(zaptest.NewLogger(t).Sugar())

	err := peer.SubmitUpdate(context.Background(), domain.Activity{Details: "x"})
	if !errors.Is(err, ports.ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
	if err := peer.ProcessEvents(context.Background()); !errors.Is(err, ports.ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}

func TestPeer_RecordsActivity(t *testing.T) {
	peer := New(zaptest.NewLogger(t).Sugar())
	ctx := context.Background()

	if err := peer.Initialize(ctx, "123456789012345678"); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if !peer.Initialized() {
		t.Error("Expected peer to report initialized")
	}

	if err := peer.SubmitUpdate(ctx, domain.Activity{Details: "In a match"}); err != nil {
		t.Fatalf("SubmitUpdate() failed: %v", err)
	}
	got, ok := peer.LastActivity()
	if !ok || got.Details != "In a match" {
		t.Errorf("Expected recorded activity, got %+v (ok=%v)", got, ok)
	}
	if peer.SubmitCount() != 1 {
		t.Errorf("SubmitCount() = %d, want 1", peer.SubmitCount())
	}

	if err := peer.ProcessEvents(ctx); err != nil {
		t.Fatalf("ProcessEvents() failed: %v", err)
	}
	if peer.TickCount() != 1 {
		t.Errorf("TickCount() = %d, want 1", peer.TickCount())
	}
}

func TestPeer_TerminateClosesConnection(t *testing.T) {
	peer := New(zaptest.NewLogger(t).Sugar())
	ctx := context.Background()

	if err := peer.Initialize(ctx, "123456789012345678"); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	peer.Terminate(ctx)

	if peer.Initialized() {
		t.Error("Expected peer to report not initialized after terminate")
	}
	if peer.TerminateCount() != 1 {
		t.Errorf("TerminateCount() = %d, want 1", peer.TerminateCount())
	}

	// Calls after terminate are refused the same way as before initialize.
	if err := peer.SubmitUpdate(ctx, domain.Activity{Details: "x"}); !errors.Is(err, ports.ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized after terminate, got %v", err)
	}
}

func TestPeer_TerminateWithoutInitialize(t *testing.T) {
	peer := New(zaptest.NewLogger(t).Sugar())

	// Best-effort cleanup must be safe on a never-connected peer.
	peer.Terminate(context.Background())
	if peer.TerminateCount() != 1 {
		t.Errorf("TerminateCount() = %d, want 1", peer.TerminateCount())
	}
}
