// Package dom contains the document abstraction that audits run against, and the mount/restore
// logic that temporarily places markup into a document.
//
// A Document is anything with a body whose markup can be read and replaced: MemoryDocument is
// an in-process implementation built on golang.org/x/net/html, and the browser package provides
// one backed by a live Chrome page.
//
// Mounting markup replaces the whole body, so only one markup mount can be active per document
// at a time. Mounter serializes markup mounts; the package-level Mount function does not, and
// callers using it directly must not overlap mounts on the same document.
package dom
