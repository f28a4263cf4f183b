// Package dom holds an immutable snapshot of a rendered page's element
// tree. The snapshot is captured once per check request; every detection
// algorithm works against it instead of querying the live browser, so the
// algorithms stay pure functions over plain data.
package dom

import (
	"fmt"
	"strings"
)

// Rect is an element's position and size in 1× page pixel space.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains reports whether the point (x, y) falls inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Node is one element in the snapshot arena. Parent and Children are
// indices into Snapshot.Nodes; Parent is -1 for the root.
type Node struct {
	Tag      string
	Text     string // direct text content only, not descendants'
	Attrs    map[string]string
	Rect     Rect
	Parent   int
	Children []int
}

// Attr returns the named attribute, trimmed. ok is false when the
// attribute is absent or empty.
func (n *Node) Attr(name string) (value string, ok bool) {
	v := strings.TrimSpace(n.Attrs[name])
	return v, v != ""
}

// Snapshot is an arena-indexed element tree. Nodes[0] is the <html>
// element; children appear after their parent (preorder), so iterating
// indices in reverse visits every child before its parent.
type Snapshot struct {
	Nodes []Node
}

// Root returns the index of the <html> element.
func (s *Snapshot) Root() int { return 0 }

// Body returns the index of the <body> element, or -1 if the page has
// none.
func (s *Snapshot) Body() int {
	for _, c := range s.Nodes[0].Children {
		if s.Nodes[c].Tag == "body" {
			return c
		}
	}
	return -1
}

// DeclaredLanguage returns the first two characters of the root element's
// lang attribute, or "" when the page declares no language.
func (s *Snapshot) DeclaredLanguage() string {
	lang, ok := s.Nodes[0].Attr("lang")
	if !ok || len(lang) < 2 {
		return ""
	}
	return lang[:2]
}

// XPath returns the canonical positional path of node i: /html[1] for the
// root, and one /tag[n] segment per ancestor level below it, where n is
// the element's 1-based position among same-tag siblings. No tag is
// special-cased.
func (s *Snapshot) XPath(i int) string {
	var segments []string
	for s.Nodes[i].Parent >= 0 {
		node := &s.Nodes[i]
		parent := &s.Nodes[node.Parent]
		pos := 0
		for _, sib := range parent.Children {
			if s.Nodes[sib].Tag == node.Tag {
				pos++
			}
			if sib == i {
				break
			}
		}
		segments = append(segments, fmt.Sprintf("/%s[%d]", node.Tag, pos))
		i = node.Parent
	}
	var b strings.Builder
	b.WriteString("/html[1]")
	for j := len(segments) - 1; j >= 0; j-- {
		b.WriteString(segments[j])
	}
	return b.String()
}

// HitTest returns the index of the topmost element covering the point
// (x, y) in 1× pixel space, or -1 when no element covers it. Later nodes
// in document order paint above earlier ones, so the last covering node
// wins.
func (s *Snapshot) HitTest(x, y float64) int {
	hit := -1
	for i := range s.Nodes {
		r := s.Nodes[i].Rect
		if r.W <= 0 || r.H <= 0 {
			continue
		}
		if r.Contains(x, y) {
			hit = i
		}
	}
	return hit
}
