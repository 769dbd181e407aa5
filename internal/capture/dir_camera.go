package capture

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var frameExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// DirCamera serves frames from a directory of image files in lexical
// order, standing in for the device camera. An empty or missing
// directory means there is nothing to capture from.
type DirCamera struct {
	dir    string
	logger *zap.Logger
}

func NewDirCamera(dir string, logger *zap.Logger) *DirCamera {
	return &DirCamera{dir: dir, logger: logger}
}

func (c *DirCamera) Open(ctx context.Context, mode FacingMode) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.dir == "" {
		return nil, ErrCameraUnavailable
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		c.logger.Debug("frame source not readable", zap.String("dir", c.dir), zap.Error(err))
		return nil, ErrCameraUnavailable
	}

	var frames []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if frameExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			frames = append(frames, filepath.Join(c.dir, e.Name()))
		}
	}
	if len(frames) == 0 {
		return nil, ErrCameraUnavailable
	}
	sort.Strings(frames)

	c.logger.Debug("camera stream opened",
		zap.String("facing_mode", string(mode)),
		zap.Int("frames", len(frames)),
	)
	return &dirStream{frames: frames}, nil
}

type dirStream struct {
	mu     sync.Mutex
	frames []string
	next   int
	closed bool
}

// Snapshot returns the next frame, wrapping around like a live feed.
func (s *dirStream) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStreamClosed
	}

	raw, err := os.ReadFile(s.frames[s.next])
	if err != nil {
		return nil, err
	}
	s.next = (s.next + 1) % len(s.frames)
	return raw, nil
}

func (s *dirStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
