package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/launchdarkly/axe-contract-tests/logging"
)

const blankPage = "about:blank"

// Config describes how to reach a browser.
type Config struct {
	// ControlURL is the DevTools WebSocket URL of a running browser. If empty, a local
	// headless Chrome is started with rod's launcher and stopped again by Close.
	ControlURL string

	// Bin is the browser executable to launch. If empty, rod looks one up or downloads one.
	Bin string

	// Headful shows the browser window when a browser is launched.
	Headful bool

	Logger logging.Logger
}

// Session is a connection to a browser with one page that audits run in.
type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	document *Document
	logger   logging.Logger

	closeOnce sync.Once
	closeErr  error
}

// Open connects to the browser described by cfg and opens a blank page.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	logger := logging.OrNull(cfg.Logger)
	s := &Session{logger: logger}

	controlURL := cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Context(ctx).Headless(!cfg.Headful)
		if cfg.Bin != "" {
			l = l.Bin(cfg.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("could not launch browser: %w", err)
		}
		s.launcher = l
		controlURL = u
		logger.Printf("Launched browser at %s", controlURL)
	} else {
		logger.Printf("Connecting to browser at %s", controlURL)
	}

	b := rod.New().Context(ctx).ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		s.stopLauncher()
		return nil, fmt.Errorf("could not connect to browser: %w", err)
	}
	// ctx governs only the connection attempt
	s.browser = b.Context(context.Background())

	page, err := s.browser.Page(proto.TargetCreateTarget{URL: blankPage})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("could not open page: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("could not load page: %w", err)
	}
	s.page = page
	s.document = &Document{page: page}
	return s, nil
}

// Page returns the page that audits run in.
func (s *Session) Page() *rod.Page {
	return s.page
}

// Document returns the page's document.
func (s *Session) Document() *Document {
	return s.document
}

// Close closes the page. If this Session launched the browser, the browser is stopped as well;
// a browser reached through Config.ControlURL is left running. Only the first call has an effect.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.page != nil {
			if err := s.page.Close(); err != nil {
				errs = append(errs, fmt.Errorf("could not close page: %w", err))
			}
		}
		if s.browser != nil && s.launcher != nil {
			if err := s.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("could not close browser: %w", err))
			}
		}
		s.stopLauncher()
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

func (s *Session) stopLauncher() {
	if s.launcher == nil {
		return
	}
	s.launcher.Kill()
	s.launcher.Cleanup()
	s.logger.Printf("Stopped browser")
}
