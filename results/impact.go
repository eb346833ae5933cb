package results

import (
	"fmt"
	"strings"
)

// Impact is the severity that axe-core assigns to a violation.
type Impact string

const (
	ImpactMinor    Impact = "minor"
	ImpactModerate Impact = "moderate"
	ImpactSerious  Impact = "serious"
	ImpactCritical Impact = "critical"
)

// AllImpacts lists every impact level, from least to most severe.
var AllImpacts = []Impact{ImpactMinor, ImpactModerate, ImpactSerious, ImpactCritical}

// ParseImpact converts a string such as "critical" into an Impact. Matching is not
// case-sensitive.
func ParseImpact(s string) (Impact, error) {
	candidate := Impact(strings.ToLower(strings.TrimSpace(s)))
	for _, i := range AllImpacts {
		if i == candidate {
			return i, nil
		}
	}
	return "", fmt.Errorf("unknown impact level %q", s)
}

// ParseImpacts converts a list of strings with ParseImpact, failing on the first unknown value.
func ParseImpacts(values []string) ([]Impact, error) {
	if len(values) == 0 {
		return nil, nil
	}
	ret := make([]Impact, 0, len(values))
	for _, v := range values {
		i, err := ParseImpact(v)
		if err != nil {
			return nil, err
		}
		ret = append(ret, i)
	}
	return ret, nil
}

// Severity returns the position of the impact in AllImpacts, or -1 if it is unknown.
func (i Impact) Severity() int {
	for n, known := range AllImpacts {
		if known == i {
			return n
		}
	}
	return -1
}

// AtLeast returns every impact level that is at least as severe as min. It is a convenient
// way to build an impact filter from a single threshold.
func AtLeast(min Impact) []Impact {
	n := min.Severity()
	if n < 0 {
		return nil
	}
	return append([]Impact(nil), AllImpacts[n:]...)
}
