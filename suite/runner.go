package suite

import (
	"context"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdarkly/axe-contract-tests/dom"
	"github.com/launchdarkly/axe-contract-tests/framework"
	"github.com/launchdarkly/axe-contract-tests/matchers"
	"github.com/launchdarkly/axe-contract-tests/report"
	"github.com/launchdarkly/axe-contract-tests/results"
)

// Runner runs suites against a harness.
type Runner struct {
	Harness *framework.TestHarness
	// Style is used for failure reports.
	Style report.Style
}

// Run runs every case of every suite as a test named "<suite>/<case>".
func (r Runner) Run(suites []Suite, filter framework.Filter, testLogger framework.TestLogger) framework.Results {
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		for _, s := range suites {
			s := s
			c.Run(s.Name, func(c *framework.Context) {
				r.runSuite(c, s)
			})
		}
	})
}

func (r Runner) runSuite(c *framework.Context, s Suite) {
	if s.Path != "" {
		c.Debug("Suite loaded from %s", s.Path)
	}
	auditor, err := r.Harness.Auditor(s.Config, c.DebugLogger())
	require.NoError(c, err, "could not configure auditor")

	for _, tc := range s.Cases {
		tc := tc
		c.Run(tc.Name, func(c *framework.Context) {
			if tc.Skip != "" {
				c.SkipWithReason(tc.Skip)
			}
			c.Debug("Auditing markup: %s", tc.HTML)
			result, err := auditor.Audit(context.Background(), dom.MarkupTarget(tc.HTML), tc.AuditOptions()...)
			require.NoError(c, err)
			r.check(c, tc, result)
		})
	}
}

func (r Runner) check(c *framework.Context, tc Case, result *results.Result) {
	if len(tc.ExpectViolations) > 0 {
		require.True(c, result.HasViolations(), "audit result has no violations list")
		levels, err := result.ImpactLevels()
		require.NoError(c, err)
		var found []string
		for _, v := range results.FilterByImpact(result.Violations, levels) {
			found = append(found, v.ID)
		}
		assert.ElementsMatch(c, tc.ExpectViolations, found, "violated rules")
		return
	}

	name, args := matchers.NameNoViolations, []interface{}(nil)
	if tc.MaxViolations.IsDefined() {
		name, args = matchers.NameLessThanXViolations, []interface{}{tc.MaxViolations}
	}
	factory, _ := matchers.Lookup(name)
	outcome, err := factory(matchers.WithStyle(r.Style)).Compare(result, args...)
	require.NoError(c, err)
	if !outcome.Pass {
		c.Errorf("%s", outcome.Message)
		c.FailNow()
	}
}
