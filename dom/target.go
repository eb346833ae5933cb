package dom

import "regexp"

type targetKind int

const (
	targetNone targetKind = iota
	targetElement
	targetMarkup
)

// Target is what an audit runs against: either an existing element or a piece of markup. The
// zero value is not a valid target.
type Target struct {
	kind    targetKind
	element Element
	markup  string
}

// ElementTarget returns a Target for an element. If the element is attached to the document it
// is audited in place; otherwise its outer HTML is mounted.
func ElementTarget(el Element) Target {
	return Target{kind: targetElement, element: el}
}

// MarkupTarget returns a Target for a piece of HTML, which is mounted as the document body.
func MarkupTarget(markup string) Target {
	return Target{kind: targetMarkup, markup: markup}
}

// IsElement reports whether the target refers to an element.
func (t Target) IsElement() bool { return t.kind == targetElement }

// IsMarkup reports whether the target is a piece of markup.
func (t Target) IsMarkup() bool { return t.kind == targetMarkup }

func (t Target) String() string {
	switch t.kind {
	case targetElement:
		return "element"
	case targetMarkup:
		return "markup"
	default:
		return "invalid target"
	}
}

var tagPattern = regexp.MustCompile(`(?i)(<([^>]+)>)`)

// HasElements reports whether markup contains at least one tag-like substring.
func HasElements(markup string) bool {
	return tagPattern.MatchString(markup)
}
