package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ParseHTML builds a geometry-less Snapshot from raw HTML. Element rects
// are all zero, so the result supports the language detectors and tests
// but not pixel hit-testing.
func ParseHTML(raw string) (*Snapshot, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("dom: parse html: %w", err)
	}

	root := findElement(doc, "html")
	if root == nil {
		return nil, fmt.Errorf("dom: document has no html element")
	}

	s := &Snapshot{}
	addNode(s, root, -1)
	return s, nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// addNode appends n to the arena in preorder and recurses into element
// children, preserving the invariant that children follow their parent.
func addNode(s *Snapshot, n *html.Node, parent int) int {
	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		attrs[a.Key] = a.Val
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			text.WriteString(c.Data)
		}
	}

	idx := len(s.Nodes)
	s.Nodes = append(s.Nodes, Node{
		Tag:    strings.ToLower(n.Data),
		Text:   strings.TrimSpace(text.String()),
		Attrs:  attrs,
		Parent: parent,
	})

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		child := addNode(s, c, idx)
		s.Nodes[idx].Children = append(s.Nodes[idx].Children, child)
	}
	return idx
}
