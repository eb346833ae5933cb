package browser

import (
	"errors"
	"fmt"

	"github.com/go-rod/rod"

	"github.com/launchdarkly/axe-contract-tests/dom"
)

// ErrForeignElement is returned when an element from another kind of document is passed to a
// browser Document or Engine.
var ErrForeignElement = errors.New("element does not belong to a browser page")

// Document is the document of a browser page.
type Document struct {
	page *rod.Page
}

// Element is an element of a browser page.
type Element struct {
	page *rod.Page
	// el is nil for the body, which is looked up on use so that it survives navigation
	el *rod.Element
}

// NewDocument wraps a page that was opened elsewhere.
func NewDocument(page *rod.Page) *Document {
	return &Document{page: page}
}

func (d *Document) Body() dom.Element {
	return &Element{page: d.page}
}

func (d *Document) Contains(el dom.Element) (bool, error) {
	e, ok := el.(*Element)
	if !ok || e.page != d.page {
		return false, nil
	}
	if e.el == nil {
		return true, nil
	}
	res, err := e.el.Eval(`() => document.body.contains(this)`)
	if err != nil {
		return false, fmt.Errorf("could not inspect element: %w", err)
	}
	return res.Value.Bool(), nil
}

func (d *Document) BodyHTML() (string, error) {
	res, err := d.page.Eval(`() => document.body.innerHTML`)
	if err != nil {
		return "", fmt.Errorf("could not read body: %w", err)
	}
	return res.Value.Str(), nil
}

func (d *Document) SetBodyHTML(markup string) error {
	if _, err := d.page.Eval(`markup => { document.body.innerHTML = markup }`, markup); err != nil {
		return fmt.Errorf("could not write body: %w", err)
	}
	return nil
}

// Element returns the first element in the page that matches a CSS selector.
func (d *Document) Element(selector string) (*Element, error) {
	el, err := d.page.Element(selector)
	if err != nil {
		return nil, err
	}
	return &Element{page: d.page, el: el}, nil
}

// CreateElement parses markup into an element that is not attached to the page. Mounting such
// an element mounts its markup.
func (d *Document) CreateElement(markup string) (*Element, error) {
	el, err := d.page.ElementByJS(rod.Eval(`markup => {
		const t = document.createElement('template')
		t.innerHTML = markup
		return t.content.firstElementChild
	}`, markup))
	if err != nil {
		return nil, fmt.Errorf("could not create element: %w", err)
	}
	return &Element{page: d.page, el: el}, nil
}

func (e *Element) OuterHTML() (string, error) {
	el, err := e.resolve()
	if err != nil {
		return "", err
	}
	return el.HTML()
}

// Rod returns the underlying rod element.
func (e *Element) Rod() (*rod.Element, error) {
	return e.resolve()
}

func (e *Element) resolve() (*rod.Element, error) {
	if e.el != nil {
		return e.el, nil
	}
	body, err := e.page.Element("body")
	if err != nil {
		return nil, fmt.Errorf("could not find body: %w", err)
	}
	return body, nil
}
