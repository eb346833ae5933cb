// Package report renders audit violations as the human-readable text that is shown when an
// accessibility assertion fails.
package report

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/launchdarkly/axe-contract-tests/results"
)

const (
	lineBreak      = "\n\n"
	horizontalLine = "────────"
	moreInfoPrefix = "You can find more information on this issue here: \n"
)

// Style selects how a report is decorated. It never affects whether an assertion passes.
type Style int

const (
	// StylePlain produces undecorated text.
	StylePlain Style = iota
	// StyleColor adds ANSI emphasis to the markup snippet, the failure summary, and the help URL.
	StyleColor
)

func (s Style) String() string {
	switch s {
	case StylePlain:
		return "plain"
	case StyleColor:
		return "color"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// ParseStyle converts "plain" or "color" into a Style.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(s) {
	case "", "plain":
		return StylePlain, nil
	case "color", "colour", "ansi":
		return StyleColor, nil
	}
	return StylePlain, fmt.Errorf("unknown report style %q", s)
}

type decorator struct {
	markup  func(a ...interface{}) string
	summary func(a ...interface{}) string
	helpURL func(a ...interface{}) string
}

func plainText(a ...interface{}) string { return fmt.Sprint(a...) }

var plainDecorator = decorator{markup: plainText, summary: plainText, helpURL: plainText}

// The color variant is requested explicitly, so it must not depend on whether stdout is a
// terminal; EnableColor overrides fatih/color's NoColor detection.
func forcedColor(attrs ...color.Attribute) func(a ...interface{}) string {
	c := color.New(attrs...)
	c.EnableColor()
	return c.SprintFunc()
}

var colorDecorator = decorator{
	markup:  forcedColor(color.FgHiBlack),
	summary: forcedColor(color.FgRed),
	helpURL: forcedColor(color.FgBlue),
}

func (s Style) decorator() decorator {
	if s == StyleColor {
		return colorDecorator
	}
	return plainDecorator
}

// Format renders violations as plain text. It returns an empty string if there are no
// violations. If allowedViolations is non-zero, the summary line states that threshold instead
// of expecting no violations at all.
func Format(violations []results.Violation, allowedViolations int) string {
	return StylePlain.Format(violations, allowedViolations)
}

// FormatColor is like Format, but adds ANSI emphasis.
func FormatColor(violations []results.Violation, allowedViolations int) string {
	return StyleColor.Format(violations, allowedViolations)
}

// Format renders violations in this style. Output ordering exactly mirrors the input ordering
// so that failure messages are reproducible.
func (s Style) Format(violations []results.Violation, allowedViolations int) string {
	if len(violations) == 0 {
		return ""
	}
	d := s.decorator()

	blocks := make([]string, 0, len(violations))
	for _, v := range violations {
		blocks = append(blocks, formatViolation(v, d))
	}

	var b strings.Builder
	b.WriteString(summaryLine(len(violations), allowedViolations))
	b.WriteString(lineBreak + horizontalLine + lineBreak)
	b.WriteString(strings.Join(blocks, lineBreak+horizontalLine+lineBreak))
	return b.String()
}

func summaryLine(count, allowedViolations int) string {
	expectation := "no"
	if allowedViolations != 0 {
		expectation = fmt.Sprintf("less than %d", allowedViolations)
	}
	return fmt.Sprintf("%d violations found. \n\n Expect to have %s violations.", count, expectation)
}

func formatViolation(v results.Violation, d decorator) string {
	nodeBlocks := make([]string, 0, len(v.Nodes))
	for _, n := range v.Nodes {
		nodeBlocks = append(nodeBlocks, formatNode(v, n, d))
	}
	return strings.Join(nodeBlocks, lineBreak)
}

func formatNode(v results.Violation, n results.Node, d decorator) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Violation found at $('%s')", strings.Join(n.Target, ", "))
	b.WriteString(lineBreak)
	b.WriteString(d.markup(n.HTML))
	b.WriteString(lineBreak)
	b.WriteString("Received:")
	b.WriteString(lineBreak)
	fmt.Fprintf(&b, "%s (%s)", v.Help, v.ID)
	b.WriteString(lineBreak)
	b.WriteString(d.summary(n.FailureSummary))
	b.WriteString(lineBreak)
	if v.HelpURL != "" {
		b.WriteString(moreInfoPrefix)
		b.WriteString(d.helpURL(v.HelpURL))
	}
	return b.String()
}
