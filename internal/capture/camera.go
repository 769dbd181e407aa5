package capture

import (
	"context"
	"errors"
)

// FacingMode selects which device camera to open.
type FacingMode string

const (
	FacingUser        FacingMode = "user"
	FacingEnvironment FacingMode = "environment"
)

var (
	// ErrCameraUnavailable means the runtime environment has no capture
	// capability. Non-fatal: the caller disables the feature.
	ErrCameraUnavailable = errors.New("camera unavailable")

	// ErrStreamClosed is returned by Snapshot after Close.
	ErrStreamClosed = errors.New("capture stream closed")
)

// Stream is an acquired camera stream. Callers own the stream and must
// Close it on every exit path; Close is idempotent.
type Stream interface {
	// Snapshot grabs the current frame as an encoded still image.
	Snapshot() ([]byte, error)
	Close() error
}

// Camera acquires a device capture stream. Implementations report
// ErrCameraUnavailable instead of panicking when the environment
// cannot capture.
type Camera interface {
	Open(ctx context.Context, mode FacingMode) (Stream, error)
}
