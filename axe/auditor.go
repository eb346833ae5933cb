// Package axe runs accessibility audits: it merges configured and per-call options, mounts the
// target into a document, invokes the audit engine, and restores the document before returning
// the result.
//
// Results are checked with the comparators in the matchers package.
package axe

import (
	"context"
	"errors"
	"fmt"

	"github.com/launchdarkly/axe-contract-tests/dom"
	"github.com/launchdarkly/axe-contract-tests/engine"
	"github.com/launchdarkly/axe-contract-tests/logging"
	"github.com/launchdarkly/axe-contract-tests/results"
)

// EngineError wraps an error reported by the audit engine. The document has already been
// restored when it is returned.
type EngineError struct {
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("audit engine failed: %s", e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// DocumentProvider is implemented by engines that can only audit one particular document, such
// as an engine bound to a browser page. Configure uses that document unless another one is given.
type DocumentProvider interface {
	Document() dom.Document
}

// Auditor runs audits with a fixed engine, document, and default options. It is safe to use
// from multiple goroutines; audits of markup on the same document are serialized.
type Auditor struct {
	engine   engine.Engine
	mounter  *dom.Mounter
	defaults Options
	logger   logging.Logger
}

type auditorOptions struct {
	mounter *dom.Mounter
	logger  logging.Logger
}

// Option customizes Configure.
type Option func(*auditorOptions)

// WithDocument makes the Auditor mount targets into doc.
func WithDocument(doc dom.Document) Option {
	return func(o *auditorOptions) { o.mounter = dom.NewMounter(doc) }
}

// WithMounter makes the Auditor share a Mounter, and therefore its serialization of markup
// mounts, with other Auditors.
func WithMounter(m *dom.Mounter) Option {
	return func(o *auditorOptions) { o.mounter = m }
}

// WithLogger sets a debug logger.
func WithLogger(l logging.Logger) Option {
	return func(o *auditorOptions) { o.logger = l }
}

// Configure applies cfg.GlobalOptions to the engine and returns an Auditor that uses the rest
// of cfg as its default run options.
//
// If no document is given, the engine's own document is used when it has one, and otherwise a
// new dom.MemoryDocument.
func Configure(e engine.Engine, cfg Config, opts ...Option) (*Auditor, error) {
	if e == nil {
		return nil, errors.New("no audit engine was provided")
	}
	var o auditorOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.mounter == nil {
		if p, ok := e.(DocumentProvider); ok {
			o.mounter = dom.NewMounter(p.Document())
		} else {
			o.mounter = dom.NewMounter(dom.NewMemoryDocument())
		}
	}

	cfg.ImpactLevels = append([]results.Impact(nil), cfg.ImpactLevels...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	defaults, err := cfg.runnerDefaults()
	if err != nil {
		return nil, err
	}
	// validate the impact filter now rather than on every audit
	if _, err := Effective(defaults); err != nil {
		return nil, err
	}

	spec := cfg.GlobalOptions
	if spec == nil {
		spec = engine.Spec{}
	}
	if err := e.Configure(spec); err != nil {
		return nil, fmt.Errorf("could not configure audit engine: %w", err)
	}

	return &Auditor{
		engine:   e,
		mounter:  o.mounter,
		defaults: defaults,
		logger:   logging.OrNull(o.logger),
	}, nil
}

// Document returns the document that targets are mounted into.
func (a *Auditor) Document() dom.Document {
	return a.mounter.Document()
}

// Effective returns the configuration an audit with the given additional options would use.
func (a *Auditor) Effective(additional ...Options) (EffectiveConfig, error) {
	return Effective(append([]Options{a.defaults}, additional...)...)
}

// Audit mounts target, runs the engine on it with the default options merged with additional,
// and restores the document.
//
// The document is always restored before Audit returns, whether the engine succeeded or not.
// Engine failures are returned as *EngineError and are never retried. ctx only bounds the wait
// for another markup audit on the same document to finish; once the engine has been called,
// Audit waits for it to report back.
func (a *Auditor) Audit(ctx context.Context, target dom.Target, additional ...Options) (*results.Result, error) {
	eff, err := a.Effective(additional...)
	if err != nil {
		return nil, err
	}

	root, restore, err := a.mounter.Mount(ctx, target)
	if err != nil {
		return nil, err
	}
	a.logger.Printf("Mounted %s; running audit", target)

	// restore is once-guarded; the deferred call only matters if the engine panics
	defer func() { _ = restore() }()
	result, runErr := engine.Invoke(ctx, a.engine, root, eff.Options).Await()
	restoreErr := restore()
	a.logger.Printf("Audit settled (error: %v); document restored (error: %v)", runErr, restoreErr)

	if runErr != nil {
		return nil, errors.Join(&EngineError{Err: runErr}, restoreErr)
	}
	if restoreErr != nil {
		return nil, restoreErr
	}

	ret := result.WithImpactLevels(eff.ImpactLevels)
	return &ret, nil
}

// AuditMarkup is shorthand for Audit with a dom.MarkupTarget.
func (a *Auditor) AuditMarkup(ctx context.Context, markup string, additional ...Options) (*results.Result, error) {
	return a.Audit(ctx, dom.MarkupTarget(markup), additional...)
}

// AuditElement is shorthand for Audit with a dom.ElementTarget.
func (a *Auditor) AuditElement(ctx context.Context, el dom.Element, additional ...Options) (*results.Result, error) {
	return a.Audit(ctx, dom.ElementTarget(el), additional...)
}
