package matchers

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tHelper interface {
	Helper()
}

// AssertNoViolations fails the test, and returns false, if actual has violations. The failure
// message is the violation report.
func AssertNoViolations(t assert.TestingT, actual interface{}, msgAndArgs ...interface{}) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	return assertMatch(t, NoViolations(), actual, nil, msgAndArgs)
}

// AssertLessThanXViolations fails the test, and returns false, if actual has more than allowed
// violations.
func AssertLessThanXViolations(t assert.TestingT, actual interface{}, allowed int, msgAndArgs ...interface{}) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	return assertMatch(t, LessThanXViolations(), actual, []interface{}{allowed}, msgAndArgs)
}

// RequireNoViolations is like AssertNoViolations but stops the test on failure.
func RequireNoViolations(t require.TestingT, actual interface{}, msgAndArgs ...interface{}) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	if !AssertNoViolations(t, actual, msgAndArgs...) {
		t.FailNow()
	}
}

// RequireLessThanXViolations is like AssertLessThanXViolations but stops the test on failure.
func RequireLessThanXViolations(t require.TestingT, actual interface{}, allowed int, msgAndArgs ...interface{}) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	if !AssertLessThanXViolations(t, actual, allowed, msgAndArgs...) {
		t.FailNow()
	}
}

func assertMatch(t assert.TestingT, m Matcher, actual interface{}, expected []interface{}, msgAndArgs []interface{}) bool {
	result, err := m.Compare(actual, expected...)
	if err != nil {
		return assert.Fail(t, err.Error(), msgAndArgs...)
	}
	if !result.Pass {
		return assert.Fail(t, result.Message, msgAndArgs...)
	}
	return true
}
