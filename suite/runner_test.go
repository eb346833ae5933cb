package suite

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/launchdarkly/axe-contract-tests/axe"
	"github.com/launchdarkly/axe-contract-tests/dom"
	"github.com/launchdarkly/axe-contract-tests/engine"
	"github.com/launchdarkly/axe-contract-tests/engine/enginetest"
	"github.com/launchdarkly/axe-contract-tests/framework"
	"github.com/launchdarkly/axe-contract-tests/logging"
	"github.com/launchdarkly/axe-contract-tests/results"
)

// markupRules reports image-alt (critical) for each <img> and label (serious) for each <input>.
func markupRules(root dom.Element, _ map[string]interface{}) (*results.Result, error) {
	html, err := root.OuterHTML()
	if err != nil {
		return nil, err
	}
	violations := []results.Violation{}
	if strings.Contains(html, "<img") {
		violations = append(violations, results.Violation{ID: "image-alt", Impact: results.ImpactCritical,
			Help: "Images must have alternate text", Nodes: []results.Node{{Target: []string{"img"}, HTML: "<img>"}}})
	}
	if strings.Contains(html, "<input") {
		violations = append(violations, results.Violation{ID: "label", Impact: results.ImpactSerious,
			Help: "Form elements must have labels", Nodes: []results.Node{{Target: []string{"input"}, HTML: "<input>"}}})
	}
	return &results.Result{Violations: violations}, nil
}

type recordingTestLogger struct {
	started  []string
	errors   map[string][]string
	failed   []string
	skipped  map[string]string
	finished []string
}

func newRecordingTestLogger() *recordingTestLogger {
	return &recordingTestLogger{errors: map[string][]string{}, skipped: map[string]string{}}
}

func (r *recordingTestLogger) TestStarted(id framework.TestID) {
	r.started = append(r.started, id.String())
}

func (r *recordingTestLogger) TestError(id framework.TestID, err error) {
	r.errors[id.String()] = append(r.errors[id.String()], err.Error())
}

func (r *recordingTestLogger) TestFinished(id framework.TestID, failed bool, _ logging.CapturedOutput) {
	r.finished = append(r.finished, id.String())
	if failed {
		r.failed = append(r.failed, id.String())
	}
}

func (r *recordingTestLogger) TestSkipped(id framework.TestID, reason string) {
	r.skipped[id.String()] = reason
}

func newHarness(stub *enginetest.Stub, base axe.Config) (*framework.TestHarness, *dom.MemoryDocument) {
	doc := dom.NewMemoryDocument()
	return framework.NewTestHarnessWithEngine(stub, doc, base, nil), doc
}

func TestRunnerPassesAndFailsCases(t *testing.T) {
	stub := &enginetest.Stub{OnRun: markupRules}
	h, doc := newHarness(stub, axe.Config{})
	require.NoError(t, doc.SetBodyHTML("<main>host page</main>"))

	suites := []Suite{{
		Name: "widgets",
		Cases: []Case{
			{Name: "clean", HTML: "<p>hello</p>"},
			{Name: "image", HTML: "<img src='a.png'>"},
			{Name: "within limit", HTML: "<img><input>", MaxViolations: ldvalue.NewOptionalInt(2)},
			{Name: "expected", HTML: "<img><input>", ExpectViolations: []string{"label", "image-alt"}},
			{Name: "wrong expectation", HTML: "<img>", ExpectViolations: []string{"label"}},
			{Name: "later", HTML: "<p></p>", Skip: "not ready"},
		},
	}}
	logger := newRecordingTestLogger()
	res := Runner{Harness: h}.Run(suites, nil, logger)

	assert.False(t, res.OK())
	var failures []string
	for _, f := range res.Failures {
		failures = append(failures, f.TestID.String())
	}
	assert.Equal(t, []string{"widgets/image", "widgets/wrong expectation"}, failures)
	assert.Equal(t, "not ready", logger.skipped["widgets/later"])

	require.NotEmpty(t, logger.errors["widgets/image"])
	assert.Contains(t, logger.errors["widgets/image"][0], "1 violations found.")
	assert.Contains(t, logger.errors["widgets/image"][0], "Images must have alternate text (image-alt)")

	body, err := doc.BodyHTML()
	require.NoError(t, err)
	assert.Equal(t, "<main>host page</main>", body)
}

func TestRunnerAppliesImpactLevels(t *testing.T) {
	stub := &enginetest.Stub{OnRun: markupRules}
	h, _ := newHarness(stub, axe.Config{ImpactLevels: []results.Impact{results.ImpactCritical}})

	suites := []Suite{{
		Name: "forms",
		Cases: []Case{
			{Name: "serious only", HTML: "<input>"},
			{Name: "serious counted", HTML: "<input>", ImpactLevels: []results.Impact{results.ImpactSerious}},
		},
	}}
	res := Runner{Harness: h}.Run(suites, nil, nil)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, "forms/serious counted", res.Failures[0].TestID.String())
}

func TestRunnerHonorsFilter(t *testing.T) {
	stub := &enginetest.Stub{OnRun: markupRules}
	h, _ := newHarness(stub, axe.Config{})

	var filters framework.RegexFilters
	require.NoError(t, filters.MustNotMatch.Set("broken"))
	suites := []Suite{{Name: "s", Cases: []Case{{Name: "broken", HTML: "<img>"}, {Name: "fine", HTML: "<p></p>"}}}}
	logger := newRecordingTestLogger()
	res := Runner{Harness: h}.Run(suites, filters.AsFilter, logger)

	assert.True(t, res.OK())
	assert.Equal(t, "excluded by filter parameters", logger.skipped["s/broken"])
	assert.Len(t, stub.Calls(), 1)
}

func TestRunnerConfiguresEngineForEachSuite(t *testing.T) {
	stub := &enginetest.Stub{}
	base := axe.Config{GlobalOptions: engine.Spec{"locale": "en"}}
	h, _ := newHarness(stub, base)

	suites := []Suite{
		{Name: "one", Config: axe.Config{GlobalOptions: engine.Spec{"branding": "a"}}, Cases: []Case{{Name: "c", HTML: "<p></p>"}}},
		{Name: "two", Cases: []Case{{Name: "c", HTML: "<p></p>"}}},
	}
	res := Runner{Harness: h}.Run(suites, nil, nil)

	assert.True(t, res.OK())
	assert.Equal(t, []engine.Spec{
		{"locale": "en", "branding": "a"},
		{"locale": "en"},
	}, stub.Configured())
}

func TestRunnerReportsEngineErrors(t *testing.T) {
	stub := &enginetest.Stub{OnRun: enginetest.Failing(errors.New("axe exploded"))}
	h, _ := newHarness(stub, axe.Config{})
	logger := newRecordingTestLogger()

	res := Runner{Harness: h}.Run([]Suite{{Name: "s", Cases: []Case{{Name: "c", HTML: "<p></p>"}}}}, nil, logger)

	require.Len(t, res.Failures, 1)
	require.NotEmpty(t, logger.errors["s/c"])
	assert.Contains(t, logger.errors["s/c"][0], "axe exploded")
}

func TestRunnerReportsConfigurationErrors(t *testing.T) {
	stub := &enginetest.Stub{ConfigureErr: errors.New("unknown check")}
	h, _ := newHarness(stub, axe.Config{})

	res := Runner{Harness: h}.Run([]Suite{{Name: "s", Cases: []Case{{Name: "c", HTML: "<p></p>"}}}}, nil, nil)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, "s", res.Failures[0].TestID.String())
	assert.Empty(t, stub.Calls())
}
