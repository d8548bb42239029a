package browser

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configures the browser session.
type Options struct {
	Bin      string // browser binary; empty means auto-detect
	Headless bool
	Width    int
	Height   int
}

// Session owns one browser process and one page for the duration of a
// scenario run. It is never shared between scenarios, and Close releases
// everything on every exit path.
type Session struct {
	id       string
	log      *zap.Logger
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page

	closeOnce sync.Once
	closeErr  error
	closed    bool
}

// NewSession launches a browser and opens a blank page at the configured
// viewport. On any partial failure it tears down what it already started.
func NewSession(opts Options, log *zap.Logger) (*Session, error) {
	if opts.Width == 0 {
		opts.Width = 1280
	}
	if opts.Height == 0 {
		opts.Height = 720
	}

	bin := opts.Bin
	if bin == "" {
		path, ok := launcher.LookPath()
		if !ok {
			return nil, errors.New("no chrome or chromium binary found; set KAVERIFY_BROWSER")
		}
		bin = path
	}

	l := launcher.New().Bin(bin).Headless(opts.Headless)
	wsURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	pg, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("open page: %w", err)
	}

	if err := pg.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            opts.Height,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}); err != nil {
		_ = pg.Close()
		_ = b.Close()
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	s := &Session{
		id:       uuid.NewString(),
		log:      log.Named("session"),
		launcher: l,
		browser:  b,
		page:     pg,
	}
	s.log.Info("session started",
		zap.String("session", s.id),
		zap.String("bin", bin),
		zap.Bool("headless", opts.Headless),
		zap.Int("width", opts.Width),
		zap.Int("height", opts.Height))
	return s, nil
}

// ID returns the session's correlation id.
func (s *Session) ID() string {
	return s.id
}

// Page returns the page handle. It is valid only until Close.
func (s *Session) Page() *rod.Page {
	return s.page
}

// Closed reports whether teardown has run.
func (s *Session) Closed() bool {
	return s.closed
}

// Close releases the page, the browser, and the launcher process, in that
// order. It is idempotent; later calls return the first result. The first
// teardown error is kept, the rest are logged.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed = true

		if s.page != nil {
			if err := s.page.Close(); err != nil {
				s.log.Warn("page close", zap.String("session", s.id), zap.Error(err))
				s.closeErr = fmt.Errorf("close page: %w", err)
			}
		}
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				s.log.Warn("browser close", zap.String("session", s.id), zap.Error(err))
				if s.closeErr == nil {
					s.closeErr = fmt.Errorf("close browser: %w", err)
				}
			}
		}
		if s.launcher != nil {
			s.launcher.Kill()
			s.launcher.Cleanup()
		}

		s.log.Info("session closed", zap.String("session", s.id))
	})
	return s.closeErr
}

// Run hands the page to fn and guarantees Close afterward on every exit
// path. A panic escaping fn is recovered into the returned error.
func (s *Session) Run(fn func(pg *rod.Page) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scenario panicked: %v\n%s", r, debug.Stack())
		}
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(s.page)
}

// WithSession acquires a session, runs fn against its page, and tears the
// session down unconditionally.
func WithSession(opts Options, log *zap.Logger, fn func(pg *rod.Page) error) error {
	s, err := NewSession(opts, log)
	if err != nil {
		return err
	}
	return s.Run(fn)
}
