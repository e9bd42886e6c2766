// Package dom is the host page a session renders into: an HTML document whose
// elements can be looked up with CSS selectors, created, styled and laid out.
//
// Layout is deliberately small. In-flow children stack vertically inside their
// parent, absolutely positioned children are placed at their top/left offsets, and an
// element is as large as its style says or, failing that, as its intrinsic size.
package dom

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNotFound is returned when a selector matches no element.
var ErrNotFound = errors.New("dom: no element matches the selector")

const blankPage = "<!DOCTYPE html><html><head></head><body></body></html>"

// Document is safe for concurrent use. Every element created by or found in a
// document shares its lock.
type Document struct {
	mu       sync.Mutex
	root     *html.Node
	elements map[*html.Node]*Element
}

// NewDocument returns an empty page.
func NewDocument() *Document {
	doc, err := ParseString(blankPage)
	if err != nil {
		panic(err)
	}
	return doc
}

// Parse reads an HTML page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Document{
		root:     root,
		elements: make(map[*html.Node]*Element),
	}, nil
}

// ParseString reads an HTML page from s.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// QuerySelectorAll returns every element matching selector in document order.
func (d *Document) QuerySelectorAll(selector string) ([]*Element, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("dom: selector %q: %w", selector, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	nodes := sel.MatchAll(d.root)
	elements := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		elements = append(elements, d.wrap(n))
	}
	return elements, nil
}

// QuerySelector returns the first element matching selector, or ErrNotFound.
func (d *Document) QuerySelector(selector string) (*Element, error) {
	elements, err := d.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, selector)
	}
	return elements[0], nil
}

// Body returns the body element.
func (d *Document) Body() *Element {
	body, err := d.QuerySelector("body")
	if err != nil {
		panic(err)
	}
	return body
}

// CreateElement creates a detached element. It joins the page once appended.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wrap(n)
}

// Render writes the page as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// String renders the page.
func (d *Document) String() string {
	var b strings.Builder
	if err := d.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

// wrap must be called with d.mu held.
func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	if e, ok := d.elements[n]; ok {
		return e
	}
	e := &Element{doc: d, node: n}
	d.elements[n] = e
	return e
}
