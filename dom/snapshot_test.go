package dom

import "testing"

func mustParse(t *testing.T, raw string) *Snapshot {
	t.Helper()
	s, err := ParseHTML(raw)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	return s
}

func TestXPathRoot(t *testing.T) {
	s := mustParse(t, `<html><body></body></html>`)
	if got := s.XPath(s.Root()); got != "/html[1]" {
		t.Errorf("XPath(root) = %q, want /html[1]", got)
	}
}

func TestXPathSameTagSiblings(t *testing.T) {
	s := mustParse(t, `<html><body><div><p>a</p><span>b</span><p>c</p></div></body></html>`)

	// Locate the second <p>.
	var second int
	seen := 0
	for i, n := range s.Nodes {
		if n.Tag == "p" {
			seen++
			if seen == 2 {
				second = i
			}
		}
	}
	want := "/html[1]/body[1]/div[1]/p[2]"
	if got := s.XPath(second); got != want {
		t.Errorf("XPath(second p) = %q, want %q", got, want)
	}

	// The span is indexed among spans only, so it is span[1] even though
	// it sits between two p elements.
	for i, n := range s.Nodes {
		if n.Tag == "span" {
			want := "/html[1]/body[1]/div[1]/span[1]"
			if got := s.XPath(i); got != want {
				t.Errorf("XPath(span) = %q, want %q", got, want)
			}
		}
	}
}

func TestDeclaredLanguage(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`<html lang="en"><body></body></html>`, "en"},
		{`<html lang="nl-BE"><body></body></html>`, "nl"},
		{`<html lang=""><body></body></html>`, ""},
		{`<html><body></body></html>`, ""},
	}
	for _, tt := range tests {
		s := mustParse(t, tt.raw)
		if got := s.DeclaredLanguage(); got != tt.want {
			t.Errorf("DeclaredLanguage(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestHitTestTopmost(t *testing.T) {
	s := &Snapshot{Nodes: []Node{
		{Tag: "html", Parent: -1, Rect: Rect{0, 0, 100, 100}, Children: []int{1}},
		{Tag: "body", Parent: 0, Rect: Rect{0, 0, 100, 100}, Children: []int{2, 3}},
		{Tag: "div", Parent: 1, Rect: Rect{10, 10, 40, 40}},
		{Tag: "div", Parent: 1, Rect: Rect{30, 30, 40, 40}},
	}}

	// Overlap region: the later node in document order wins.
	if got := s.HitTest(35, 35); got != 3 {
		t.Errorf("HitTest(35,35) = %d, want 3", got)
	}
	// Only the first div covers this point.
	if got := s.HitTest(12, 12); got != 2 {
		t.Errorf("HitTest(12,12) = %d, want 2", got)
	}
	// Outside every element.
	empty := &Snapshot{Nodes: []Node{{Tag: "html", Parent: -1}}}
	if got := empty.HitTest(5, 5); got != -1 {
		t.Errorf("HitTest on zero-size tree = %d, want -1", got)
	}
}

func TestParseHTMLDirectTextOnly(t *testing.T) {
	s := mustParse(t, `<html><body><div>own <span>nested</span> tail</div></body></html>`)
	for _, n := range s.Nodes {
		if n.Tag == "div" {
			if n.Text != "own  tail" && n.Text != "own tail" {
				t.Errorf("div text = %q, want direct text only", n.Text)
			}
		}
		if n.Tag == "span" && n.Text != "nested" {
			t.Errorf("span text = %q, want %q", n.Text, "nested")
		}
	}
}
