package suite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/launchdarkly/axe-contract-tests/axe"
	"github.com/launchdarkly/axe-contract-tests/results"
)

const checkoutSuite = `
name: checkout
config:
  impactLevels: [serious, Critical]
  rules:
    region: {enabled: false}
cases:
  - name: payment form
    file: fixtures/payment.html
  - name: banner
    html: <div><img src="banner.png"></div>
    maxViolations: 1
    impactLevels: [minor]
  - html: <img src="logo.png">
    expectViolations: [image-alt]
    options:
      runOnly: {type: tag, values: [wcag2a]}
`

func writeFile(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadSuite(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fixtures", "payment.html"), `<form><input name="card"></form>`)
	writeFile(t, filepath.Join(dir, "checkout.yaml"), checkoutSuite)

	s, err := Load(filepath.Join(dir, "checkout.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "checkout", s.Name)
	assert.Equal(t, []results.Impact{results.ImpactSerious, results.ImpactCritical}, s.Config.ImpactLevels)
	assert.Equal(t, axe.Options{"rules": map[string]interface{}{"region": map[string]interface{}{"enabled": false}}},
		s.Config.RunnerOptions)
	require.Len(t, s.Cases, 3)

	assert.Equal(t, `<form><input name="card"></form>`, s.Cases[0].HTML)
	assert.Equal(t, ldvalue.NewOptionalInt(1), s.Cases[1].MaxViolations)
	assert.False(t, s.Cases[0].MaxViolations.IsDefined())
	assert.Equal(t, axe.Options{"runOnly": map[string]interface{}{"type": "tag", "values": []interface{}{"wcag2a"}}},
		s.Cases[2].Options)
	assert.Equal(t, "case 3", s.Cases[2].Name)
	assert.Equal(t, []string{"image-alt"}, s.Cases[2].ExpectViolations)
}

func TestCaseAuditOptions(t *testing.T) {
	c := Case{Options: axe.Options{"iframes": false}, ImpactLevels: []results.Impact{results.ImpactMinor}}
	eff, err := axe.Effective(c.AuditOptions()...)
	require.NoError(t, err)
	assert.Equal(t, axe.Options{"iframes": false}, eff.Options)
	assert.Equal(t, []results.Impact{results.ImpactMinor}, eff.ImpactLevels)
}

func TestSuiteNameDefaultsToFileName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "landing.yml"), "cases:\n  - html: <p>hi</p>\n")

	s, err := Load(filepath.Join(dir, "landing.yml"))
	require.NoError(t, err)
	assert.Equal(t, "landing", s.Name)
}

func TestLoadAllReadsDirectoriesInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.yaml"), "name: second\ncases: [{html: <p>b</p>}]\n")
	writeFile(t, filepath.Join(dir, "a.yml"), "name: first\ncases: [{html: <p>a</p>}]\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a suite")
	extra := filepath.Join(t.TempDir(), "extra.yaml")
	writeFile(t, extra, "name: third\ncases: [{html: <p>c</p>}]\n")

	suites, err := LoadAll(dir, extra)
	require.NoError(t, err)
	var names []string
	for _, s := range suites {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"first", "second", "third"}, names)
}

func TestLoadAllWithNoSuites(t *testing.T) {
	_, err := LoadAll(t.TempDir())
	assert.Error(t, err)

	_, err = LoadAll(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestParseRejectsInvalidSuites(t *testing.T) {
	for name, content := range map[string]string{
		"malformed":      "cases: [",
		"no markup":      "cases: [{name: empty}]",
		"both sources":   "cases: [{html: <p></p>, file: x.html}]",
		"missing file":   "cases: [{file: nowhere.html}]",
		"duplicate name": "cases: [{name: a, html: <p></p>}, {name: a, html: <b></b>}]",
		"bad impact":     "cases: [{html: <p></p>, impactLevels: [dire]}]",
		"bad config":     "config: {impactLevels: [dire]}\ncases: [{html: <p></p>}]",
		"two checks":     "cases: [{html: <p></p>, maxViolations: 1, expectViolations: [list]}]",
		"negative limit": "cases: [{html: <p></p>, maxViolations: -1}]",
		"word limit":     "cases: [{html: <p></p>, maxViolations: few}]",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(content), t.TempDir())
			assert.Error(t, err)
		})
	}
}
