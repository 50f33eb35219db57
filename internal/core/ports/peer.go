package ports

import (
	"context"
	"errors"

	"presencegate/internal/core/domain"
)

// Peer-level failure codes. Implementations wrap these; callers classify
// failures with errors.Is, never by matching diagnostic text.
var (
	ErrUnavailable           = errors.New("presence host unavailable")
	ErrRejectedApplicationID = errors.New("application id rejected by peer")
	ErrNotInitialized        = errors.New("peer not initialized")
)

// Peer is the capability set of the native presence SDK. The SDK is
// non-reentrant and unsafe to call from more than one goroutine at a time;
// implementations may assume the caller serializes every call. A call may
// block for the duration of the underlying native operation and, once
// issued, runs to completion; ctx carries request metadata, it does not
// cancel the native call.
type Peer interface {
	Initialize(ctx context.Context, applicationID string) error
	SubmitUpdate(ctx context.Context, activity domain.Activity) error
	ProcessEvents(ctx context.Context) error
	// Terminate releases the peer connection, best effort. No result.
	Terminate(ctx context.Context)
}
