package framework

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/launchdarkly/axe-contract-tests/axe"
	"github.com/launchdarkly/axe-contract-tests/browser"
	"github.com/launchdarkly/axe-contract-tests/dom"
	"github.com/launchdarkly/axe-contract-tests/engine"
	"github.com/launchdarkly/axe-contract-tests/logging"
)

const defaultStartupTimeout = time.Second * 30

// HarnessConfig describes the browser and engine that tests run against.
type HarnessConfig struct {
	// BrowserURL is the DevTools URL of a running browser; if empty, one is launched.
	BrowserURL string
	// AxeSource is a URL or file path for axe-core; if empty, browser.DefaultAxeSource is used.
	AxeSource string
	// Config is the base configuration that each suite's configuration is layered over.
	Config axe.Config
	// StartupTimeout bounds launching the browser and loading axe-core.
	StartupTimeout time.Duration
}

// TestHarness holds the audit engine and the document that every test mounts into.
type TestHarness struct {
	engine  engine.Engine
	mounter *dom.Mounter
	config  axe.Config
	session *browser.Session
	logger  logging.Logger
}

// NewTestHarness starts or connects to a browser, loads axe-core into it, and reports progress
// to startupOutput.
func NewTestHarness(config HarnessConfig, debugLogger logging.Logger, startupOutput io.Writer) (*TestHarness, error) {
	debugLogger = logging.OrNull(debugLogger)
	timeout := config.StartupTimeout
	if timeout <= 0 {
		timeout = defaultStartupTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if config.BrowserURL == "" {
		fmt.Fprintln(startupOutput, "Launching browser")
	} else {
		fmt.Fprintf(startupOutput, "Connecting to browser at %s\n", config.BrowserURL)
	}
	session, err := browser.Open(ctx, browser.Config{ControlURL: config.BrowserURL, Logger: debugLogger})
	if err != nil {
		return nil, err
	}
	e, err := browser.NewEngine(ctx, session, config.AxeSource)
	if err != nil {
		_ = session.Close()
		return nil, err
	}
	fmt.Fprintln(startupOutput, "Loaded axe-core")

	h := NewTestHarnessWithEngine(e, e.Document(), config.Config, debugLogger)
	h.session = session
	return h, nil
}

// NewTestHarnessWithEngine creates a TestHarness for an engine that is already running.
func NewTestHarnessWithEngine(e engine.Engine, doc dom.Document, config axe.Config, debugLogger logging.Logger) *TestHarness {
	return &TestHarness{
		engine:  e,
		mounter: dom.NewMounter(doc),
		config:  config,
		logger:  logging.OrNull(debugLogger),
	}
}

// Auditor returns an Auditor whose configuration is the harness configuration with suiteConfig
// layered over it. The engine is reconfigured, so auditors from earlier calls should no longer
// be used.
func (h *TestHarness) Auditor(suiteConfig axe.Config, logger logging.Logger) (*axe.Auditor, error) {
	cfg, err := axe.MergeConfig(h.config, suiteConfig)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = h.logger
	}
	return axe.Configure(h.engine, cfg, axe.WithMounter(h.mounter), axe.WithLogger(logger))
}

// Close shuts down the browser, if the harness started one.
func (h *TestHarness) Close() error {
	if h.session == nil {
		return nil
	}
	return h.session.Close()
}
