package dom

import (
	"strconv"
	"strings"
)

// Style edits the inline style attribute of an element.
type Style struct {
	e *Element
}

// Get returns the value of a CSS property, or "" when unset.
func (s Style) Get(property string) string {
	s.e.doc.mu.Lock()
	defer s.e.doc.mu.Unlock()
	return parseStyle(s.e.styleAttr()).get(property)
}

// Set sets a CSS property. An empty value removes it.
func (s Style) Set(property, value string) {
	s.e.doc.mu.Lock()
	defer s.e.doc.mu.Unlock()

	decls := parseStyle(s.e.styleAttr())
	decls = decls.set(strings.ToLower(strings.TrimSpace(property)), strings.TrimSpace(value))
	if len(decls) == 0 {
		s.e.node.Attr = removeAttr(s.e.node.Attr, "style")
		return
	}
	s.e.setAttr("style", decls.String())
}

// Px formats n as a CSS pixel length.
func Px(n int) string {
	return strconv.Itoa(n) + "px"
}

type declaration struct {
	property, value string
}

type declarations []declaration

func parseStyle(s string) declarations {
	var decls declarations
	for _, part := range strings.Split(s, ";") {
		property, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		property = strings.ToLower(strings.TrimSpace(property))
		value = strings.TrimSpace(value)
		if property == "" {
			continue
		}
		decls = decls.set(property, value)
	}
	return decls
}

func (d declarations) get(property string) string {
	for _, decl := range d {
		if decl.property == property {
			return decl.value
		}
	}
	return ""
}

func (d declarations) set(property, value string) declarations {
	for i, decl := range d {
		if decl.property != property {
			continue
		}
		if value == "" {
			return append(d[:i], d[i+1:]...)
		}
		d[i].value = value
		return d
	}
	if value == "" {
		return d
	}
	return append(d, declaration{property, value})
}

func (d declarations) String() string {
	parts := make([]string, len(d))
	for i, decl := range d {
		parts[i] = decl.property + ": " + decl.value
	}
	return strings.Join(parts, "; ")
}

// pixels reads a length in px. Unitless numbers are accepted as pixels.
func pixels(v string) (int, bool) {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}
