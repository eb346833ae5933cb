package dom

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// RestoreFunc undoes a mount, returning the document to the state it was in before. Only the
// first call has an effect; later calls return the same error as the first.
type RestoreFunc func() error

func noopRestore() error { return nil }

func once(f func() error) RestoreFunc {
	var o sync.Once
	var err error
	return func() error {
		o.Do(func() { err = f() })
		return err
	}
}

// Mount attaches target to doc and returns the root element to audit along with the action
// that undoes the mount.
//
// An element that is already attached is returned unchanged with a no-op restore. A detached
// element is mounted by its outer HTML. Markup replaces the body's content, and the restore
// action writes the previous content back.
func Mount(doc Document, target Target) (Element, RestoreFunc, error) {
	attached, markup, err := resolveTarget(doc, target)
	if err != nil {
		return nil, nil, err
	}
	if attached != nil {
		return attached, noopRestore, nil
	}
	return mountMarkup(doc, markup, nil)
}

func resolveTarget(doc Document, target Target) (Element, string, error) {
	switch target.kind {
	case targetElement:
		if target.element == nil {
			return nil, "", &InvalidInputError{NoMarkup: true}
		}
		attached, err := doc.Contains(target.element)
		if err != nil {
			return nil, "", fmt.Errorf("could not check whether element is attached: %w", err)
		}
		if attached {
			return target.element, "", nil
		}
		markup, err := target.element.OuterHTML()
		if err != nil {
			return nil, "", fmt.Errorf("could not serialize detached element: %w", err)
		}
		return nil, markup, nil
	case targetMarkup:
		return nil, target.markup, nil
	default:
		return nil, "", &InvalidInputError{NoMarkup: true}
	}
}

func mountMarkup(doc Document, markup string, release func()) (Element, RestoreFunc, error) {
	if release == nil {
		release = func() {}
	}
	if !HasElements(markup) {
		release()
		return nil, nil, &InvalidInputError{Markup: markup}
	}
	original, err := doc.BodyHTML()
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("could not read document body: %w", err)
	}
	if err := doc.SetBodyHTML(markup); err != nil {
		// a failed write may still have partially replaced the body
		_ = doc.SetBodyHTML(original)
		release()
		return nil, nil, fmt.Errorf("could not mount markup: %w", err)
	}
	restore := once(func() error {
		defer release()
		if err := doc.SetBodyHTML(original); err != nil {
			return fmt.Errorf("could not restore document body: %w", err)
		}
		return nil
	})
	return doc.Body(), restore, nil
}

// Mounter mounts targets into one document, allowing only one markup mount at a time. A second
// markup mount waits until the first one has been restored.
type Mounter struct {
	doc  Document
	slot *semaphore.Weighted
}

// NewMounter creates a Mounter for doc. All code that mounts markup into doc should share the
// same Mounter.
func NewMounter(doc Document) *Mounter {
	return &Mounter{doc: doc, slot: semaphore.NewWeighted(1)}
}

// Document returns the document this Mounter writes to.
func (m *Mounter) Document() Document {
	return m.doc
}

// Mount behaves like the package-level Mount, except that a markup mount first waits for any
// other markup mount on the same document to be restored. The wait can be abandoned through
// ctx; once the mount has happened, ctx has no effect on it.
func (m *Mounter) Mount(ctx context.Context, target Target) (Element, RestoreFunc, error) {
	attached, markup, err := resolveTarget(m.doc, target)
	if err != nil {
		return nil, nil, err
	}
	if attached != nil {
		return attached, noopRestore, nil
	}
	if !HasElements(markup) {
		return nil, nil, &InvalidInputError{Markup: markup}
	}
	if err := m.slot.Acquire(ctx, 1); err != nil {
		return nil, nil, fmt.Errorf("gave up waiting for document: %w", err)
	}
	var releaseOnce sync.Once
	release := func() { releaseOnce.Do(func() { m.slot.Release(1) }) }
	return mountMarkup(m.doc, markup, release)
}
