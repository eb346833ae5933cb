package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const emptyDocument = "<!DOCTYPE html><html><head></head><body></body></html>"

// MemoryDocument is an in-process Document backed by an HTML parse tree. It does not run
// scripts or compute styles; it is enough for engines that work on markup, and for tests.
type MemoryDocument struct {
	root *html.Node
	body *html.Node
	lock sync.Mutex
}

// MemoryElement is an element of a MemoryDocument.
type MemoryElement struct {
	owner *MemoryDocument
	node  *html.Node
}

// NewMemoryDocument creates an empty document.
func NewMemoryDocument() *MemoryDocument {
	d, err := ParseDocument(strings.NewReader(emptyDocument))
	if err != nil {
		panic(err) // the constant document always parses
	}
	return d
}

// ParseDocument creates a document from a complete HTML page.
func ParseDocument(r io.Reader) (*MemoryDocument, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("could not parse document: %w", err)
	}
	body := findFirst(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	})
	if body == nil {
		return nil, errors.New("document has no body")
	}
	return &MemoryDocument{root: root, body: body}, nil
}

func (d *MemoryDocument) Body() Element {
	return &MemoryElement{owner: d, node: d.body}
}

func (d *MemoryDocument) Contains(el Element) (bool, error) {
	m, ok := el.(*MemoryElement)
	if !ok || m == nil || m.owner != d {
		return false, nil
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	for n := m.node; n != nil; n = n.Parent {
		if n == d.body {
			return true, nil
		}
	}
	return false, nil
}

func (d *MemoryDocument) BodyHTML() (string, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	return renderChildren(d.body)
}

func (d *MemoryDocument) SetBodyHTML(markup string) error {
	nodes, err := parseFragment(markup)
	if err != nil {
		return err
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	for c := d.body.FirstChild; c != nil; {
		next := c.NextSibling
		d.body.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		d.body.AppendChild(n)
	}
	return nil
}

// HTML returns the markup of the whole document.
func (d *MemoryDocument) HTML() (string, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// CreateElement parses markup into a new element that is not attached to the document. The
// markup must contain exactly one top-level element; surrounding whitespace is ignored.
func (d *MemoryDocument) CreateElement(markup string) (*MemoryElement, error) {
	nodes, err := parseFragment(markup)
	if err != nil {
		return nil, err
	}
	var found *html.Node
	for _, n := range nodes {
		switch {
		case n.Type == html.TextNode && strings.TrimSpace(n.Data) == "":
		case n.Type == html.ElementNode && found == nil:
			found = n
		default:
			return nil, fmt.Errorf("markup must contain a single element: %q", markup)
		}
	}
	if found == nil {
		return nil, fmt.Errorf("markup contains no element: %q", markup)
	}
	return &MemoryElement{owner: d, node: found}, nil
}

// AppendToBody attaches a detached element as the last child of the body.
func (d *MemoryDocument) AppendToBody(el *MemoryElement) error {
	if el == nil || el.owner != d {
		return errors.New("element belongs to a different document")
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	if el.node.Parent != nil {
		return errors.New("element is already attached")
	}
	d.body.AppendChild(el.node)
	return nil
}

// ElementByID returns the first attached element with the given id attribute, or nil.
func (d *MemoryDocument) ElementByID(id string) *MemoryElement {
	d.lock.Lock()
	defer d.lock.Unlock()
	n := findFirst(d.body, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "id") == id
	})
	if n == nil {
		return nil
	}
	return &MemoryElement{owner: d, node: n}
}

// Node returns the underlying parse tree node. Engines that inspect markup directly use it to
// walk the subtree; callers must not modify it while a mount is active.
func (e *MemoryElement) Node() *html.Node {
	return e.node
}

func (e *MemoryElement) OuterHTML() (string, error) {
	e.owner.lock.Lock()
	defer e.owner.lock.Unlock()
	var buf bytes.Buffer
	if err := html.Render(&buf, e.node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// InnerHTML returns the serialized children of the element.
func (e *MemoryElement) InnerHTML() (string, error) {
	e.owner.lock.Lock()
	defer e.owner.lock.Unlock()
	return renderChildren(e.node)
}

func parseFragment(markup string) ([]*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("could not parse markup: %w", err)
	}
	return nodes, nil
}

func renderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
