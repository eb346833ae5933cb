// Package engine defines the boundary between this module and the accessibility audit engine.
//
// An Engine has two operations: a one-time Configure call that sets process-wide rules and
// checks, and a callback-style Run. Invoke adapts Run to a Future so that the rest of the
// module does not need to know whether an engine reports its outcome synchronously or from
// another goroutine.
package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/launchdarkly/axe-contract-tests/dom"
	"github.com/launchdarkly/axe-contract-tests/results"
)

// ErrNoResult is reported when an engine signals completion without a result or an error.
var ErrNoResult = errors.New("audit engine completed without a result")

// Spec is the engine's global configuration, such as custom rules, checks, locale, or branding.
// Its keys are interpreted only by the engine.
type Spec map[string]interface{}

// Callback receives the outcome of one Run. Exactly one of result and err should be non-nil.
type Callback func(result *results.Result, err error)

// Engine is an accessibility audit engine.
type Engine interface {
	// Configure applies global configuration. It is called once, before any Run.
	Configure(spec Spec) error

	// Run audits the subtree rooted at root and reports the outcome through done, either before
	// returning or later from another goroutine. The options are the per-run options, whose keys
	// are interpreted only by the engine.
	Run(ctx context.Context, root dom.Element, options map[string]interface{}, done Callback)
}

// Future is the pending outcome of one Run.
type Future struct {
	done   chan struct{}
	once   sync.Once
	result *results.Result
	err    error
}

// Invoke calls e.Run exactly once and returns a Future for its outcome. If the engine calls
// back more than once, only the first outcome is kept.
func Invoke(ctx context.Context, e Engine, root dom.Element, options map[string]interface{}) *Future {
	f := &Future{done: make(chan struct{})}
	e.Run(ctx, root, options, f.settle)
	return f
}

func (f *Future) settle(result *results.Result, err error) {
	f.once.Do(func() {
		if err == nil && result == nil {
			err = ErrNoResult
		}
		if err != nil {
			result = nil
		}
		f.result, f.err = result, err
		close(f.done)
	})
}

// Done returns a channel that is closed once the outcome is known.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the engine has reported an outcome and returns it. There is no timeout:
// an engine that never calls back blocks Await forever.
func (f *Future) Await() (*results.Result, error) {
	<-f.done
	return f.result, f.err
}
