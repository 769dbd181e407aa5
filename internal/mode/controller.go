package mode

import (
	"context"
	"errors"
	"sync"

	"buyfly/internal/capture"
	"buyfly/internal/store"

	"go.uber.org/zap"
)

// Mode is one of the six mutually exclusive view modes.
type Mode string

const (
	ModeWhosNear  Mode = "whosNear"
	ModeSource    Mode = "source"
	ModeSnapStack Mode = "snapStack"
	ModeDewey     Mode = "dewey"
	ModeShipping  Mode = "shipping"
	ModeSettings  Mode = "settings"
)

var validModes = map[Mode]bool{
	ModeWhosNear:  true,
	ModeSource:    true,
	ModeSnapStack: true,
	ModeDewey:     true,
	ModeShipping:  true,
	ModeSettings:  true,
}

// ErrUnknownMode rejects navigation to a mode that does not exist.
var ErrUnknownMode = errors.New("unknown mode")

// Controller owns the current view mode and the camera stream
// lifetime. Transitions are user-triggered only; entering a capture
// mode acquires the stream and leaving one releases it on every exit
// path. The initial mode is whosNear.
type Controller struct {
	mu sync.Mutex

	current    Mode
	camera     capture.Camera
	stream     capture.Stream
	store      *store.Store
	logger     *zap.Logger
	selectedID string

	// pendingChoice is the explicit sub-state presented when the snap
	// stack is entered with queued items but no selection: the user
	// must resume the queue or discard it.
	pendingChoice bool
}

func NewController(camera capture.Camera, st *store.Store, logger *zap.Logger) *Controller {
	return &Controller{
		current: ModeWhosNear,
		camera:  camera,
		store:   st,
		logger:  logger,
	}
}

// Current returns the active mode.
func (c *Controller) Current() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Stream returns the acquired camera stream, or nil outside capture
// modes (or when the camera is unavailable).
func (c *Controller) Stream() capture.Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream
}

// PendingChoice reports whether the resume-or-discard sub-state is
// active.
func (c *Controller) PendingChoice() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingChoice
}

// SelectedID returns the pending item the user is working on.
func (c *Controller) SelectedID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedID
}

// Enter navigates to a mode. The transition always happens; a camera
// acquisition failure in a capture mode is reported so the UI can show
// a notice, with the capture feature disabled for that visit.
func (c *Controller) Enter(ctx context.Context, m Mode) error {
	if !validModes[m] {
		return ErrUnknownMode
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Leaving a capture mode always releases the stream, even with a
	// scoring request still in flight; its late result is discarded
	// downstream.
	c.releaseLocked()
	c.pendingChoice = false
	c.current = m

	if m != ModeSource && m != ModeSnapStack {
		return nil
	}

	if m == ModeSnapStack && c.selectedID == "" {
		pending, err := c.store.ListPending(ctx)
		if err != nil {
			return err
		}
		if len(pending) > 0 {
			c.pendingChoice = true
		}
	}

	stream, err := c.camera.Open(ctx, capture.FacingEnvironment)
	if errors.Is(err, capture.ErrCameraUnavailable) {
		c.logger.Warn("Camera unavailable, capture disabled", zap.String("mode", string(m)))
		return err
	}
	if err != nil {
		return err
	}
	c.stream = stream
	return nil
}

// Resume resolves the pending-choice sub-state by continuing with an
// existing queued item.
func (c *Controller) Resume(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedID = id
	c.pendingChoice = false
}

// Discard resolves the pending-choice sub-state by dropping the queue
// and starting fresh.
func (c *Controller) Discard(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.ClearPending(ctx); err != nil {
		return err
	}
	c.selectedID = ""
	c.pendingChoice = false
	return nil
}

// Select marks the pending item the user is working on.
func (c *Controller) Select(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedID = id
}

// Shutdown releases any held capture resources.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseLocked()
}

func (c *Controller) releaseLocked() {
	if c.stream == nil {
		return
	}
	if err := c.stream.Close(); err != nil {
		c.logger.Warn("Failed to release camera stream", zap.Error(err))
	}
	c.stream = nil
}
