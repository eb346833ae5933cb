// Package matchers checks audit results the way a test framework's custom matchers do: a named
// comparator takes the actual value, plus any expected arguments, and returns whether it passed
// along with a human-readable report.
//
// The comparators can be registered with any host runner through Factories, or used directly
// from Go tests through the testify-style helpers such as AssertNoViolations.
package matchers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/launchdarkly/axe-contract-tests/report"
	"github.com/launchdarkly/axe-contract-tests/results"
)

// Registered comparator names.
const (
	NameNoViolations        = "toHaveNoViolations"
	NameLessThanXViolations = "toHaveLessThanXViolations"
)

// ErrMalformedResult is matched by MalformedResultError.
var ErrMalformedResult = errors.New("malformed audit result")

// MalformedResultError is returned by a comparator whose actual value is not an audit result
// with a violations list. A clean result has an empty list; a missing list means the engine
// did not produce a result at all.
type MalformedResultError struct {
	// Reason is set when the value could not be interpreted as a result.
	Reason string
}

func (e *MalformedResultError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("no violations found in axe results object (%s)", e.Reason)
	}
	return "no violations found in axe results object"
}

func (e *MalformedResultError) Is(target error) bool {
	return target == ErrMalformedResult
}

// MatcherResult is the outcome of one comparison.
type MatcherResult struct {
	Pass    bool
	Message string
}

// Matcher is a comparator. actual is an audit result in any form accepted by AsResult.
type Matcher interface {
	Compare(actual interface{}, expected ...interface{}) (MatcherResult, error)
}

// Option customizes a comparator.
type Option func(*settings)

type settings struct {
	style report.Style
}

// WithStyle sets how failure reports are rendered. The default is report.StylePlain.
func WithStyle(style report.Style) Option {
	return func(s *settings) { s.style = style }
}

func makeSettings(opts []Option) settings {
	var s settings
	for _, o := range opts {
		o(&s)
	}
	return s
}

// AsResult interprets a comparator's actual value. It accepts *results.Result, results.Result,
// and the JSON of an axe result as []byte or json.RawMessage. The result must have a
// violations list.
func AsResult(actual interface{}) (*results.Result, error) {
	var r *results.Result
	switch v := actual.(type) {
	case *results.Result:
		r = v
	case results.Result:
		r = &v
	case json.RawMessage:
		return AsResult([]byte(v))
	case []byte:
		parsed, err := results.Parse(v)
		if err != nil {
			return nil, &MalformedResultError{Reason: err.Error()}
		}
		r = parsed
	default:
		return nil, &MalformedResultError{Reason: fmt.Sprintf("unsupported type %T", actual)}
	}
	if !r.HasViolations() {
		return nil, &MalformedResultError{}
	}
	return r, nil
}

// countedViolations applies the impact filter recorded on the result.
func countedViolations(r *results.Result) ([]results.Violation, error) {
	levels, err := r.ImpactLevels()
	if err != nil {
		return nil, &MalformedResultError{Reason: err.Error()}
	}
	return results.FilterByImpact(r.Violations, levels), nil
}

// NoViolationsMatcher passes if a result has no violations at the impact levels it was
// audited for.
type NoViolationsMatcher struct {
	settings settings
}

// NoViolations returns the no-violations comparator.
func NoViolations(opts ...Option) NoViolationsMatcher {
	return NoViolationsMatcher{settings: makeSettings(opts)}
}

// Compare takes no expected arguments.
func (m NoViolationsMatcher) Compare(actual interface{}, expected ...interface{}) (MatcherResult, error) {
	if len(expected) != 0 {
		return MatcherResult{}, fmt.Errorf("%s takes no arguments, got %d", NameNoViolations, len(expected))
	}
	r, err := AsResult(actual)
	if err != nil {
		return MatcherResult{}, err
	}
	return m.Check(r)
}

// Check compares a result that is already decoded.
func (m NoViolationsMatcher) Check(r *results.Result) (MatcherResult, error) {
	if !r.HasViolations() {
		return MatcherResult{}, &MalformedResultError{}
	}
	violations, err := countedViolations(r)
	if err != nil {
		return MatcherResult{}, err
	}
	return MatcherResult{
		Pass:    len(violations) == 0,
		Message: m.settings.style.Format(violations, 0),
	}, nil
}

// LessThanXViolationsMatcher passes if a result has at most a given number of violations at
// the impact levels it was audited for. Despite the name, reaching the limit exactly passes.
type LessThanXViolationsMatcher struct {
	settings settings
}

// LessThanXViolations returns the bounded-violations comparator.
func LessThanXViolations(opts ...Option) LessThanXViolationsMatcher {
	return LessThanXViolationsMatcher{settings: makeSettings(opts)}
}

// Compare takes one expected argument, the number of allowed violations.
func (m LessThanXViolationsMatcher) Compare(actual interface{}, expected ...interface{}) (MatcherResult, error) {
	if len(expected) != 1 {
		return MatcherResult{}, fmt.Errorf("%s takes the number of allowed violations, got %d arguments",
			NameLessThanXViolations, len(expected))
	}
	allowed, err := asCount(expected[0])
	if err != nil {
		return MatcherResult{}, err
	}
	r, err := AsResult(actual)
	if err != nil {
		return MatcherResult{}, err
	}
	return m.Check(r, allowed)
}

// Check compares a result that is already decoded.
func (m LessThanXViolationsMatcher) Check(r *results.Result, allowed int) (MatcherResult, error) {
	if !r.HasViolations() {
		return MatcherResult{}, &MalformedResultError{}
	}
	violations, err := countedViolations(r)
	if err != nil {
		return MatcherResult{}, err
	}
	return MatcherResult{
		Pass:    len(violations) <= allowed,
		Message: m.settings.style.Format(violations, allowed),
	}, nil
}

func asCount(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		return int(v), nil
	case float64:
		if v == math.Trunc(v) {
			return int(v), nil
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), nil
		}
	case ldvalue.OptionalInt:
		if v.IsDefined() {
			return v.IntValue(), nil
		}
	}
	return 0, fmt.Errorf("allowed violations must be a whole number, got %v (%T)", value, value)
}
