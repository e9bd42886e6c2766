package dom

import (
	"golang.org/x/net/html"

	"github.com/pion/saycheese/internal/logging"
)

var logger = logging.NewLogger("saycheese/dom")

// Element is a node of a Document.
type Element struct {
	doc  *Document
	node *html.Node

	// intrinsic size, used when the style sets none
	width, height int
}

// Box is the offset rectangle of an element relative to its parent.
type Box struct {
	Top, Left, Width, Height int
}

// Document returns the document owning e.
func (e *Element) Document() *Document {
	return e.doc
}

// TagName returns the lower-case tag name.
func (e *Element) TagName() string {
	return e.node.Data
}

// Attribute returns the value of the named attribute.
func (e *Element) Attribute(name string) (string, bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.attr(name)
}

// SetAttribute sets or replaces the named attribute.
func (e *Element) SetAttribute(name, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.setAttr(name, value)
}

// RemoveAttribute drops the named attribute if present.
func (e *Element) RemoveAttribute(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	e.node.Attr = removeAttr(e.node.Attr, name)
}

// Style returns the inline style of e.
func (e *Element) Style() Style {
	return Style{e: e}
}

// AppendChild moves child to the end of e's children.
func (e *Element) AppendChild(child *Element) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	if child.node.Parent != nil {
		child.node.Parent.RemoveChild(child.node)
	}
	e.node.AppendChild(child.node)
	logger.Tracef("appended <%s> to <%s>", child.node.Data, e.node.Data)
}

// Parent returns the parent element, or nil for detached elements.
func (e *Element) Parent() *Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	if p := e.node.Parent; p != nil && p.Type == html.ElementNode {
		return e.doc.wrap(p)
	}
	return nil
}

// Children returns the element children of e.
func (e *Element) Children() []*Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	var children []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			children = append(children, e.doc.wrap(c))
		}
	}
	return children
}

// SetIntrinsicSize sets the natural size of replaced content such as a video frame
// or a bitmap.
func (e *Element) SetIntrinsicSize(width, height int) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.width, e.height = width, height
}

// OffsetWidth is the laid out width of e.
func (e *Element) OffsetWidth() int { return e.Box().Width }

// OffsetHeight is the laid out height of e.
func (e *Element) OffsetHeight() int { return e.Box().Height }

// OffsetTop is the distance from the top of the parent.
func (e *Element) OffsetTop() int { return e.Box().Top }

// OffsetLeft is the distance from the left of the parent.
func (e *Element) OffsetLeft() int { return e.Box().Left }

// Box lays out e and returns its offset rectangle.
func (e *Element) Box() Box {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.box()
}

func (e *Element) attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e *Element) setAttr(name, value string) {
	for i, a := range e.node.Attr {
		if a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

func (e *Element) absolute() bool {
	return parseStyle(e.styleAttr()).get("position") == "absolute"
}

func (e *Element) styleAttr() string {
	s, _ := e.attr("style")
	return s
}

func (e *Element) box() Box {
	decls := parseStyle(e.styleAttr())
	b := Box{Width: e.width, Height: e.height}

	if e.width == 0 && e.height == 0 {
		b.Width, b.Height = e.contentSize()
	}
	if w, ok := pixels(decls.get("width")); ok {
		b.Width = w
	}
	if h, ok := pixels(decls.get("height")); ok {
		b.Height = h
	}

	// Static position: below the in-flow siblings before e.
	for s := e.node.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type != html.ElementNode {
			continue
		}
		sib := e.doc.wrap(s)
		if !sib.absolute() {
			b.Top += sib.box().Height
		}
	}

	if decls.get("position") == "absolute" {
		if top, ok := pixels(decls.get("top")); ok {
			b.Top = top
		}
		if left, ok := pixels(decls.get("left")); ok {
			b.Left = left
		}
	}
	return b
}

// contentSize sizes an element without intrinsic size around its in-flow children.
func (e *Element) contentSize() (int, int) {
	var width, height int
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		child := e.doc.wrap(c)
		if child.absolute() {
			continue
		}
		cb := child.box()
		width = max(width, cb.Width)
		height += cb.Height
	}
	return width, height
}

func removeAttr(attrs []html.Attribute, name string) []html.Attribute {
	kept := attrs[:0]
	for _, a := range attrs {
		if a.Key != name {
			kept = append(kept, a)
		}
	}
	return kept
}
