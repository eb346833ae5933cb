package dom

// Element is a node in a Document that can be audited.
type Element interface {
	// OuterHTML returns the serialized markup of the element, including the element itself.
	OuterHTML() (string, error)
}

// Document is the shared document that markup is mounted into.
type Document interface {
	// Body returns the document's body element. The same element is returned across body
	// content changes.
	Body() Element

	// Contains reports whether el is attached to the document's body (the body contains itself).
	// Elements that belong to a different kind of document are never contained.
	Contains(el Element) (bool, error)

	// BodyHTML returns the inner markup of the body.
	BodyHTML() (string, error)

	// SetBodyHTML replaces the inner markup of the body.
	SetBodyHTML(markup string) error
}
