// Package enginetest provides a scriptable Engine for tests of code that runs audits.
package enginetest

import (
	"context"
	"sync"

	"github.com/launchdarkly/axe-contract-tests/dom"
	"github.com/launchdarkly/axe-contract-tests/engine"
	"github.com/launchdarkly/axe-contract-tests/results"
)

// RunFunc computes the outcome of one audit. It is called while the target is mounted, so it
// can inspect the document.
type RunFunc func(root dom.Element, options map[string]interface{}) (*results.Result, error)

// Call records the arguments of one Run.
type Call struct {
	Root    dom.Element
	Options map[string]interface{}
	// BodyHTML is the content of the document body at the time of the call, if the stub was
	// given a document to observe.
	BodyHTML string
}

// Stub is an Engine whose Run outcome is computed by a RunFunc. By default it reports an
// empty, clean result synchronously.
type Stub struct {
	// OnRun computes the outcome. If nil, a clean result is reported.
	OnRun RunFunc

	// Async makes Run return immediately and report the outcome from another goroutine.
	Async bool

	// Hold, if non-nil, delays the callback until the channel is closed or receives a value.
	Hold <-chan struct{}

	// Observe, if non-nil, has its body markup recorded in each Call.
	Observe dom.Document

	// ConfigureErr is returned from Configure.
	ConfigureErr error

	lock       sync.Mutex
	configured []engine.Spec
	calls      []Call
	wg         sync.WaitGroup
}

// Clean returns a RunFunc that reports a result with no violations.
func Clean() RunFunc {
	return Reporting()
}

// Reporting returns a RunFunc that reports the given violations.
func Reporting(violations ...results.Violation) RunFunc {
	return func(dom.Element, map[string]interface{}) (*results.Result, error) {
		return &results.Result{
			TestEngine: results.TestEngine{Name: "enginetest"},
			Violations: append([]results.Violation{}, violations...),
		}, nil
	}
}

// Failing returns a RunFunc that reports err.
func Failing(err error) RunFunc {
	return func(dom.Element, map[string]interface{}) (*results.Result, error) {
		return nil, err
	}
}

func (s *Stub) Configure(spec engine.Spec) error {
	s.lock.Lock()
	s.configured = append(s.configured, spec)
	s.lock.Unlock()
	return s.ConfigureErr
}

func (s *Stub) Run(ctx context.Context, root dom.Element, options map[string]interface{}, done engine.Callback) {
	call := Call{Root: root, Options: options}
	if s.Observe != nil {
		call.BodyHTML, _ = s.Observe.BodyHTML()
	}
	s.lock.Lock()
	s.calls = append(s.calls, call)
	s.lock.Unlock()

	finish := func() {
		if s.Hold != nil {
			<-s.Hold
		}
		run := s.OnRun
		if run == nil {
			run = Clean()
		}
		done(run(root, options))
	}
	if !s.Async {
		finish()
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		finish()
	}()
}

// Wait blocks until every asynchronous Run has reported its outcome.
func (s *Stub) Wait() {
	s.wg.Wait()
}

// Calls returns the Run calls made so far.
func (s *Stub) Calls() []Call {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Call(nil), s.calls...)
}

// Configured returns the specs passed to Configure so far.
func (s *Stub) Configured() []engine.Spec {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]engine.Spec(nil), s.configured...)
}
