// Package browser runs audits in a real Chrome page driven over the DevTools protocol with
// go-rod.
//
// A Session owns one browser connection and one page. The page's body is the Document that
// targets are mounted into, and Engine runs axe-core inside that page.
package browser
