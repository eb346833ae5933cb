package results

import (
	"encoding/json"
	"fmt"
)

// ToolOptionImpactLevels is the key under Result.ToolOptions where the impact filter that was in
// effect for an audit is recorded.
const ToolOptionImpactLevels = "impactLevels"

// Result is the outcome of one audit, in the shape that axe.run resolves with.
//
// A nil Violations slice means the result did not contain a violations list at all, which is
// a malformed result rather than a clean one. A clean result has an empty, non-nil slice.
type Result struct {
	TestEngine   TestEngine             `json:"testEngine"`
	URL          string                 `json:"url,omitempty"`
	Timestamp    string                 `json:"timestamp,omitempty"`
	ToolOptions  map[string]interface{} `json:"toolOptions,omitempty"`
	Violations   []Violation            `json:"violations"`
	Passes       []Violation            `json:"passes,omitempty"`
	Incomplete   []Violation            `json:"incomplete,omitempty"`
	Inapplicable []Violation            `json:"inapplicable,omitempty"`
}

// TestEngine identifies the audit engine that produced a Result.
type TestEngine struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Violation is a rule failure reported by the audit engine.
type Violation struct {
	ID          string   `json:"id"`
	Impact      Impact   `json:"impact,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
	Help        string   `json:"help"`
	HelpURL     string   `json:"helpUrl,omitempty"`
	Nodes       []Node   `json:"nodes"`
}

// Node is one element affected by a Violation.
type Node struct {
	Target         []string `json:"target"`
	HTML           string   `json:"html"`
	FailureSummary string   `json:"failureSummary,omitempty"`
	Impact         Impact   `json:"impact,omitempty"`
}

// HasViolations reports whether the result carries a violations list, regardless of its length.
func (r *Result) HasViolations() bool {
	return r != nil && r.Violations != nil
}

// ImpactLevels returns the impact filter recorded in the result's tool options, or nil if there
// is none. The value may have been stored as []Impact by this module or decoded from JSON as a
// list of strings.
func (r *Result) ImpactLevels() ([]Impact, error) {
	if r == nil || r.ToolOptions == nil {
		return nil, nil
	}
	return ImpactLevelsFromOption(r.ToolOptions[ToolOptionImpactLevels])
}

// WithImpactLevels returns a shallow copy of the result whose tool options record the given
// impact filter. The receiver's ToolOptions map is not modified.
func (r Result) WithImpactLevels(levels []Impact) Result {
	opts := make(map[string]interface{}, len(r.ToolOptions)+1)
	for k, v := range r.ToolOptions {
		opts[k] = v
	}
	if len(levels) == 0 {
		delete(opts, ToolOptionImpactLevels)
	} else {
		opts[ToolOptionImpactLevels] = append([]Impact(nil), levels...)
	}
	r.ToolOptions = opts
	return r
}

// ImpactLevelsFromOption interprets an option value as a list of impact levels. A nil value
// yields nil.
func ImpactLevelsFromOption(value interface{}) ([]Impact, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []Impact:
		strs := make([]string, 0, len(v))
		for _, i := range v {
			strs = append(strs, string(i))
		}
		return ParseImpacts(strs)
	case []string:
		return ParseImpacts(v)
	case []interface{}:
		ret := make([]Impact, 0, len(v))
		for _, item := range v {
			var s string
			switch level := item.(type) {
			case string:
				s = level
			case Impact:
				s = string(level)
			default:
				return nil, fmt.Errorf("impact level must be a string, got %T", item)
			}
			i, err := ParseImpact(s)
			if err != nil {
				return nil, err
			}
			ret = append(ret, i)
		}
		return ret, nil
	default:
		return nil, fmt.Errorf("impact levels must be a list, got %T", value)
	}
}

// Parse decodes the JSON representation of an axe result.
func Parse(data []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("malformed audit result: %w", err)
	}
	return &r, nil
}
