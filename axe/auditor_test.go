package axe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/launchdarkly/axe-contract-tests/dom"
	"github.com/launchdarkly/axe-contract-tests/engine"
	"github.com/launchdarkly/axe-contract-tests/engine/enginetest"
	"github.com/launchdarkly/axe-contract-tests/logging"
	"github.com/launchdarkly/axe-contract-tests/report"
	"github.com/launchdarkly/axe-contract-tests/results"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const appBody = `<main id="app">the app</main>`

var imageAlt = results.Violation{
	ID:      "image-alt",
	Impact:  results.ImpactCritical,
	Help:    "Images must have alternate text",
	HelpURL: "https://dequeuniversity.com/rules/axe/4.8/image-alt",
	Nodes: []results.Node{{
		Target:         []string{"#x > img"},
		HTML:           "<img>",
		FailureSummary: "Fix any of the following:\n  Element does not have an alt attribute",
	}},
}

func newDocument(t *testing.T) *dom.MemoryDocument {
	d := dom.NewMemoryDocument()
	require.NoError(t, d.SetBodyHTML(appBody))
	return d
}

func bodyHTML(t *testing.T, d dom.Document) string {
	s, err := d.BodyHTML()
	require.NoError(t, err)
	return s
}

func TestConfigureCallsEngineConfigureOnce(t *testing.T) {
	stub := &enginetest.Stub{}
	spec := engine.Spec{"locale": map[string]interface{}{"lang": "de"}}

	a, err := Configure(stub, Config{GlobalOptions: spec}, WithDocument(newDocument(t)))
	require.NoError(t, err)
	_, err = a.AuditMarkup(context.Background(), "<p>one</p>")
	require.NoError(t, err)
	_, err = a.AuditMarkup(context.Background(), "<p>two</p>")
	require.NoError(t, err)

	assert.Equal(t, []engine.Spec{spec}, stub.Configured())
}

func TestConfigurePassesEmptySpecWhenNoneIsGiven(t *testing.T) {
	stub := &enginetest.Stub{}
	_, err := Configure(stub, Config{})
	require.NoError(t, err)
	assert.Equal(t, []engine.Spec{{}}, stub.Configured())
}

func TestConfigureFails(t *testing.T) {
	_, err := Configure(nil, Config{})
	assert.Error(t, err)

	stub := &enginetest.Stub{ConfigureErr: errors.New("bad rule")}
	_, err = Configure(stub, Config{})
	assert.ErrorContains(t, err, "bad rule")

	_, err = Configure(&enginetest.Stub{}, Config{RunnerOptions: Options{"impactLevels": []interface{}{"loud"}}})
	assert.Error(t, err)
}

func TestConfigureUsesEngineDocument(t *testing.T) {
	doc := newDocument(t)
	e := &documentEngine{Stub: &enginetest.Stub{}, doc: doc}
	a, err := Configure(e, Config{})
	require.NoError(t, err)
	assert.Same(t, doc, a.Document())
}

type documentEngine struct {
	*enginetest.Stub
	doc dom.Document
}

func (d *documentEngine) Document() dom.Document { return d.doc }

func TestAuditMarkupMountsRunsAndRestores(t *testing.T) {
	doc := newDocument(t)
	stub := &enginetest.Stub{OnRun: enginetest.Reporting(imageAlt), Observe: doc}
	a, err := Configure(stub, Config{}, WithDocument(doc), WithLogger(logging.NullLogger()))
	require.NoError(t, err)

	result, err := a.AuditMarkup(context.Background(), "<div id='x'><img></div>")
	require.NoError(t, err)

	calls := stub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, `<div id="x"><img/></div>`, calls[0].BodyHTML)
	assert.Equal(t, appBody, bodyHTML(t, doc))

	require.Len(t, result.Violations, 1)
	text := report.Format(result.Violations, 0)
	assert.Contains(t, text, "image-alt")
	assert.Contains(t, text, imageAlt.HelpURL)
}

func TestAuditAttachedElementDoesNotTouchBody(t *testing.T) {
	doc := newDocument(t)
	stub := &enginetest.Stub{Observe: doc}
	a, err := Configure(stub, Config{}, WithDocument(doc))
	require.NoError(t, err)
	el := doc.ElementByID("app")

	_, err = a.AuditElement(context.Background(), el)
	require.NoError(t, err)

	calls := stub.Calls()
	require.Len(t, calls, 1)
	assert.Same(t, el, calls[0].Root)
	assert.Equal(t, appBody, calls[0].BodyHTML)
}

func TestAuditRestoresWhenEngineFails(t *testing.T) {
	doc := newDocument(t)
	cause := errors.New("axe is already running")
	stub := &enginetest.Stub{OnRun: enginetest.Failing(cause), Async: true}
	a, err := Configure(stub, Config{}, WithDocument(doc))
	require.NoError(t, err)

	result, err := a.AuditMarkup(context.Background(), "<img>")
	assert.Nil(t, result)
	var engineErr *EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, appBody, bodyHTML(t, doc))
	stub.Wait()
}

func TestAuditRejectsInvalidInputWithoutCallingEngine(t *testing.T) {
	doc := newDocument(t)
	stub := &enginetest.Stub{}
	a, err := Configure(stub, Config{}, WithDocument(doc))
	require.NoError(t, err)

	_, err = a.AuditMarkup(context.Background(), "just words")
	assert.ErrorIs(t, err, dom.ErrInvalidInput)
	_, err = a.Audit(context.Background(), dom.Target{})
	assert.ErrorIs(t, err, dom.ErrInvalidInput)

	assert.Empty(t, stub.Calls())
	assert.Equal(t, appBody, bodyHTML(t, doc))
}

func TestAuditMergesOptionsAndRecordsImpactLevels(t *testing.T) {
	stub := &enginetest.Stub{OnRun: enginetest.Reporting(imageAlt)}
	cfg := Config{
		ImpactLevels:  []results.Impact{results.ImpactCritical},
		RunnerOptions: DisableRules("region"),
	}
	a, err := Configure(stub, cfg)
	require.NoError(t, err)

	result, err := a.AuditMarkup(context.Background(), "<img>",
		Options{"rules": map[string]interface{}{"list": map[string]interface{}{"enabled": false}}},
		WithImpactLevels(results.ImpactSerious))
	require.NoError(t, err)

	calls := stub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]interface{}{
		"rules": map[string]interface{}{
			"region": map[string]interface{}{"enabled": false},
			"list":   map[string]interface{}{"enabled": false},
		},
	}, calls[0].Options)

	levels, err := result.ImpactLevels()
	require.NoError(t, err)
	assert.Equal(t, []results.Impact{results.ImpactSerious}, levels)
}

func TestAuditKeepsMissingViolations(t *testing.T) {
	stub := &enginetest.Stub{OnRun: func(dom.Element, map[string]interface{}) (*results.Result, error) {
		return &results.Result{}, nil
	}}
	a, err := Configure(stub, Config{})
	require.NoError(t, err)

	result, err := a.AuditMarkup(context.Background(), "<img>")
	require.NoError(t, err)
	assert.False(t, result.HasViolations())
}

func TestConcurrentMarkupAuditsAreSerialized(t *testing.T) {
	doc := newDocument(t)
	hold := make(chan struct{})
	stub := &enginetest.Stub{Async: true, Hold: hold, Observe: doc}
	a, err := Configure(stub, Config{}, WithDocument(doc))
	require.NoError(t, err)

	firstDone := make(chan error, 1)
	go func() {
		_, err := a.AuditMarkup(context.Background(), "<p>first</p>")
		firstDone <- err
	}()
	require.Eventually(t, func() bool { return len(stub.Calls()) == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = a.AuditMarkup(ctx, "<p>second</p>")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, stub.Calls(), 1)

	close(hold)
	require.NoError(t, <-firstDone)

	_, err = a.AuditMarkup(context.Background(), "<p>third</p>")
	require.NoError(t, err)
	calls := stub.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "<p>third</p>", calls[1].BodyHTML)
	assert.Equal(t, appBody, bodyHTML(t, doc))
	stub.Wait()
}

func TestConfigurePassesPlainNestedMapsToEngine(t *testing.T) {
	cfg, err := ParseConfig([]byte("globalOptions:\n  branding:\n    application: storefront\n"))
	require.NoError(t, err)
	stub := &enginetest.Stub{}
	_, err = Configure(stub, cfg)
	require.NoError(t, err)

	configured := stub.Configured()
	require.Len(t, configured, 1)
	branding, ok := configured[0]["branding"].(map[string]interface{})
	require.True(t, ok, "branding has type %T", configured[0]["branding"])
	assert.Equal(t, "storefront", branding["application"])

	stub = &enginetest.Stub{}
	_, err = Configure(stub, Config{GlobalOptions: engine.Spec{"locale": engine.Spec{"lang": "de"}}})
	require.NoError(t, err)
	assert.Equal(t, engine.Spec{"locale": map[string]interface{}{"lang": "de"}}, stub.Configured()[0])
}

func TestAuditRestoresWhenEnginePanics(t *testing.T) {
	doc := newDocument(t)
	stub := &enginetest.Stub{OnRun: func(dom.Element, map[string]interface{}) (*results.Result, error) {
		panic("engine blew up")
	}}
	a, err := Configure(stub, Config{}, WithDocument(doc))
	require.NoError(t, err)

	assert.PanicsWithValue(t, "engine blew up", func() {
		_, _ = a.AuditMarkup(context.Background(), "<img>")
	})
	assert.Equal(t, appBody, bodyHTML(t, doc))

	stub.OnRun = enginetest.Clean()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	result, err := a.AuditMarkup(ctx, "<p>next</p>")
	require.NoError(t, err)
	assert.False(t, result.HasViolations())
	assert.Equal(t, appBody, bodyHTML(t, doc))
}
