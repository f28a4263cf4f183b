package render

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/a11yaudit/a11ycheck/dom"
)

// snapshotJS serialises the element tree in one evaluation: preorder over
// elements only, rects in page coordinates at scale 1, direct text without
// descendants'. The flat arena form matches dom.Snapshot.
const snapshotJS = `() => {
	const nodes = [];
	const walk = (el, parent) => {
		const i = nodes.length;
		const r = el.getBoundingClientRect();
		const attrs = {};
		for (const a of el.attributes) attrs[a.name] = a.value;
		let text = "";
		for (const c of el.childNodes) {
			if (c.nodeType === Node.TEXT_NODE) text += c.textContent;
		}
		nodes.push({
			tag: el.tagName.toLowerCase(),
			text: text.trim(),
			attrs: attrs,
			rect: {
				x: r.x + window.scrollX,
				y: r.y + window.scrollY,
				w: r.width,
				h: r.height,
			},
			parent: parent,
			children: [],
		});
		if (parent >= 0) nodes[parent].children.push(i);
		for (const c of el.children) walk(c, i);
	};
	walk(document.documentElement, -1);
	return JSON.stringify(nodes);
}`

type snapshotNode struct {
	Tag      string            `json:"tag"`
	Text     string            `json:"text"`
	Attrs    map[string]string `json:"attrs"`
	Rect     dom.Rect          `json:"rect"`
	Parent   int               `json:"parent"`
	Children []int             `json:"children"`
}

// Snapshot captures the page's element tree as an immutable arena. The
// checker works entirely against the returned snapshot; the session is
// not needed afterwards.
func (s *Session) Snapshot(ctx context.Context) (*dom.Snapshot, error) {
	res, err := s.page.Context(ctx).Eval(snapshotJS)
	if err != nil {
		return nil, fmt.Errorf("%w: dom snapshot: %v", ErrCapture, err)
	}
	return decodeSnapshot([]byte(res.Value.Str()))
}

func decodeSnapshot(data []byte) (*dom.Snapshot, error) {
	var raw []snapshotNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: dom snapshot decode: %v", ErrCapture, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty dom snapshot", ErrCapture)
	}

	snap := &dom.Snapshot{Nodes: make([]dom.Node, len(raw))}
	for i, n := range raw {
		snap.Nodes[i] = dom.Node{
			Tag:      n.Tag,
			Text:     n.Text,
			Attrs:    n.Attrs,
			Rect:     n.Rect,
			Parent:   n.Parent,
			Children: n.Children,
		}
	}
	return snap, nil
}
