package axe

import (
	"context"
	"os"
	"sync"

	"github.com/launchdarkly/axe-contract-tests/browser"
)

// Environment variables read by Default.
const (
	EnvBrowserURL = "AXE_BROWSER_URL"
	EnvAxeSource  = "AXE_SOURCE"
)

var (
	defaultLock    sync.Mutex
	defaultSession *browser.Session
	defaultAuditor *Auditor
)

// Default returns a shared Auditor with an empty configuration that runs axe-core in a browser
// page. The browser is started, or reached at $AXE_BROWSER_URL, on first use; axe-core is
// loaded from $AXE_SOURCE or browser.DefaultAxeSource. A failed start is retried on the next
// call.
func Default(ctx context.Context) (*Auditor, error) {
	defaultLock.Lock()
	defer defaultLock.Unlock()
	if defaultAuditor != nil {
		return defaultAuditor, nil
	}

	session, err := browser.Open(ctx, browser.Config{ControlURL: os.Getenv(EnvBrowserURL)})
	if err != nil {
		return nil, err
	}
	e, err := browser.NewEngine(ctx, session, os.Getenv(EnvAxeSource))
	if err != nil {
		_ = session.Close()
		return nil, err
	}
	a, err := Configure(e, Config{})
	if err != nil {
		_ = session.Close()
		return nil, err
	}
	defaultSession, defaultAuditor = session, a
	return a, nil
}

// CloseDefault shuts down the browser used by Default, if one was started.
func CloseDefault() error {
	defaultLock.Lock()
	defer defaultLock.Unlock()
	if defaultSession == nil {
		return nil
	}
	err := defaultSession.Close()
	defaultSession, defaultAuditor = nil, nil
	return err
}
