package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/launchdarkly/axe-contract-tests/logging"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
}

// Context is the state of one test. It implements require.TestingT, so testify assertions and
// the assertions in the matchers package can be used with it; FailNow and Skip end the test
// by panicking, and the panic is recovered by Run.
type Context struct {
	env         *environment
	id          TestID
	debugLogger logging.CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
}

// Run runs a root test action, which normally calls Context.Run for each test, and returns
// the results of every test.
func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		if r := recover(); r != nil {
			if c.skipped {
				return
			}
			c.failed = true
			var addError error
			if _, ok := r.(*Context); ok {
				if len(c.errors) == 0 {
					addError = errors.New("test failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				c.errors = append(c.errors, addError)
				c.env.testLogger.TestError(c.id, addError)
			}
		}
		if c.id.Path == nil {
			return
		}
		result := TestResult{TestID: c.id, Errors: c.errors, Skipped: c.skipped}
		c.env.results.Tests = append(c.env.results.Tests, result)
		if c.failed {
			c.env.results.Failures = append(c.env.results.Failures, result)
		}
	}()

	action(c)
}

// ID returns the identifier of the current test.
func (c *Context) ID() TestID {
	return c.id
}

// Run runs a subtest, unless the filter excludes it.
func (c *Context) Run(name string, action func(*Context)) {
	id := c.id.Plus(name)

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.env.testLogger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.run(action)
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
	}
}

// Failed reports whether the test has failed so far.
func (c *Context) Failed() bool {
	return c.failed
}

func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, reformatError(err))
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Debug adds a message to the test's debug output, which is shown depending on the
// TestLogger's settings.
func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

// DebugLogger returns a Logger that writes to the test's debug output.
func (c *Context) DebugLogger() logging.Logger {
	return &c.debugLogger
}

// reformatError drops the stack trace block that testify puts in front of assertion failures,
// since the test ID already says where the failure happened.
func reformatError(err error) error {
	s := err.Error()
	if !strings.Contains(s, "Error Trace:") {
		return err
	}
	var kept []string
	inTrace := false
	for _, line := range strings.Split(s, "\n") {
		label := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(label, "Error Trace:"):
			inTrace = true
			continue
		case strings.HasPrefix(label, "Test:"):
			continue
		case strings.HasPrefix(label, "Error:"), strings.HasPrefix(label, "Messages:"):
			inTrace = false
		}
		if !inTrace {
			kept = append(kept, strings.TrimLeft(line, "\t"))
		}
	}
	return errors.New(strings.Join(kept, "\n"))
}
