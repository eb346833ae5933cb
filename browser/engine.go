package browser

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-rod/rod"

	"github.com/launchdarkly/axe-contract-tests/dom"
	"github.com/launchdarkly/axe-contract-tests/engine"
	"github.com/launchdarkly/axe-contract-tests/logging"
	"github.com/launchdarkly/axe-contract-tests/results"
)

// DefaultAxeSource is where axe-core is loaded from when no other source is configured.
const DefaultAxeSource = "https://cdn.jsdelivr.net/npm/axe-core@4.8.4/axe.min.js"

const (
	configureScript = `spec => { axe.reset(); axe.configure(spec) }`
	runScript       = `(root, options) => axe.run(root, options).then(r => JSON.stringify(r))`
	loadedScript    = `() => typeof window.axe === 'object'`
)

// Engine runs axe-core in a browser page. It implements engine.Engine, and its Document is
// the page's document, so an auditor configured with it mounts targets into the page.
type Engine struct {
	document *Document
	logger   logging.Logger
}

// NewEngine loads axe-core into the session's page. source is either a URL or the path of a
// local copy of axe.min.js; if empty, DefaultAxeSource is used.
func NewEngine(ctx context.Context, s *Session, source string) (*Engine, error) {
	e := &Engine{document: s.Document(), logger: s.logger}
	if err := e.load(ctx, source); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) load(ctx context.Context, source string) error {
	if source == "" {
		source = DefaultAxeSource
	}
	page := e.document.page.Context(ctx)
	var err error
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		err = page.AddScriptTag(source, "")
	} else {
		var content []byte
		if content, err = os.ReadFile(source); err != nil {
			return fmt.Errorf("could not read axe-core source: %w", err)
		}
		err = page.AddScriptTag("", string(content))
	}
	if err != nil {
		return fmt.Errorf("could not load axe-core from %s: %w", source, err)
	}
	res, err := page.Eval(loadedScript)
	if err != nil {
		return fmt.Errorf("could not check for axe-core: %w", err)
	}
	if !res.Value.Bool() {
		return fmt.Errorf("%s did not define axe", source)
	}
	e.logger.Printf("Loaded axe-core from %s", source)
	return nil
}

// Document returns the page's document.
func (e *Engine) Document() dom.Document {
	return e.document
}

// Configure replaces any global configuration applied by an earlier call.
func (e *Engine) Configure(spec engine.Spec) error {
	if spec == nil {
		spec = engine.Spec{}
	}
	if _, err := e.document.page.Eval(configureScript, map[string]interface{}(spec)); err != nil {
		return fmt.Errorf("axe.configure failed: %w", err)
	}
	return nil
}

// Run runs axe.run on root and reports the decoded result. It calls done before returning.
func (e *Engine) Run(ctx context.Context, root dom.Element, options map[string]interface{}, done engine.Callback) {
	done(e.run(ctx, root, options))
}

func (e *Engine) run(ctx context.Context, root dom.Element, options map[string]interface{}) (*results.Result, error) {
	el, ok := root.(*Element)
	if !ok || el.page != e.document.page {
		return nil, ErrForeignElement
	}
	target, err := el.resolve()
	if err != nil {
		return nil, err
	}
	if options == nil {
		options = map[string]interface{}{}
	}
	res, err := e.document.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           runScript,
		JSArgs:       []interface{}{target.Object, options},
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return nil, fmt.Errorf("axe.run failed: %w", err)
	}
	return results.Parse([]byte(res.Value.Str()))
}
