package capture

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// FailureArtifact is the fixed filename diagnostics are written under.
const FailureArtifact = "error.png"

// Shooter is the one page capability the sink needs. *rod.Page satisfies it.
type Shooter interface {
	Screenshot(fullPage bool, req *proto.PageCaptureScreenshot) ([]byte, error)
}

// Artifact records one screenshot written to disk. Step is filled in by the
// sequencer with the index of the step that produced it.
type Artifact struct {
	Name string
	Path string
	Size int64
	Step int
}

// Observer is notified after each successful capture with the PNG bytes
// that were written.
type Observer func(art Artifact, data []byte)

// Sink writes screenshot artifacts into one directory. Filenames are
// caller-chosen and collisions overwrite: repeated runs replace prior
// evidence instead of accumulating it.
type Sink struct {
	dir      string
	log      *zap.Logger
	observer Observer
}

func NewSink(dir string, log *zap.Logger) *Sink {
	return &Sink{dir: dir, log: log.Named("sink")}
}

// OnCapture registers an observer for successful captures.
func (s *Sink) OnCapture(fn Observer) {
	s.observer = fn
}

// Dir returns the artifact directory.
func (s *Sink) Dir() string {
	return s.dir
}

// Capture takes a viewport screenshot and writes it under name, overwriting
// any previous file at that path.
func (s *Sink) Capture(sh Shooter, name string) (Artifact, error) {
	data, err := sh.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return Artifact{}, fmt.Errorf("screenshot %s: %w", name, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("artifact dir %s: %w", s.dir, err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Artifact{}, fmt.Errorf("write %s: %w", path, err)
	}

	art := Artifact{Name: name, Path: path, Size: int64(len(data))}
	s.log.Info("artifact written",
		zap.String("path", path),
		zap.Int64("bytes", art.Size))
	if s.observer != nil {
		s.observer(art, data)
	}
	return art, nil
}

// RecordFailure logs the cause and writes a best-effort diagnostic shot to
// the fixed failure filename. It never returns an error: a failed diagnostic
// must not mask the failure that triggered it.
func (s *Sink) RecordFailure(sh Shooter, cause error) {
	s.log.Error("scenario step failed", zap.Error(cause))

	if _, err := s.Capture(sh, FailureArtifact); err != nil {
		s.log.Warn("diagnostic capture failed", zap.Error(err))
	}
}
