package wcag

import (
	"strings"

	"github.com/a11yaudit/a11ycheck/dom"
	"github.com/a11yaudit/a11ycheck/langid"
)

// minWordsHidden is the minimum cleaned word count before a hidden
// attribute's value is language-checked.
const minWordsHidden = 3

// hiddenAttributes are checked in this fixed order; each qualifying
// attribute may contribute one infraction.
var hiddenAttributes = [...]string{"aria-label", "alt", "value", "title"}

// detectElementLanguages finds WCAG 3.1.2 infractions: elements (or their
// hidden attributes) whose text is confidently identified as a language
// other than their effective lang.
//
// The walk is split into two passes over the arena instead of one mixed
// recursion: a top-down pass inheriting the effective language, then a
// children-first pass computing per-node text, folding short child text
// into the parent, predicting languages, and applying the aggregation
// rule (one infraction at the parent when every child fails with the same
// (defined, detected) pair, else one per failing child).
func detectElementLanguages(snap *dom.Snapshot, declared string, predict Predictor) []Infraction {
	body := snap.Body()
	if body < 0 {
		return nil
	}

	n := len(snap.Nodes)
	defined := make([]string, n)
	detected := make([]string, n) // "" = no verdict
	text := make([]string, n)

	var infractions []Infraction

	// Top-down: effective language inheritance and hidden-attribute
	// checks, in document (pre)order.
	order := make([]int, 0, n)
	stack := []int{body}
	defined[body] = effectiveLang(snap, body, declared)
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, i)

		node := &snap.Nodes[i]
		if i != body {
			defined[i] = effectiveLang(snap, i, defined[node.Parent])
		}
		infractions = append(infractions, checkHiddenAttributes(snap, i, defined[i], predict)...)

		for j := len(node.Children) - 1; j >= 0; j-- {
			stack = append(stack, node.Children[j])
		}
	}

	// Children-first: reverse preorder guarantees every child is finished
	// before its parent.
	for k := len(order) - 1; k >= 0; k-- {
		i := order[k]
		node := &snap.Nodes[i]
		text[i] = strings.TrimSpace(strings.ReplaceAll(node.Text, "\n", " "))

		if len(node.Children) > 0 {
			infractions = append(infractions, aggregateChildren(snap, i, defined, detected)...)

			// Short child texts lack the context for a reliable
			// prediction on their own; fold them into this node's text.
			// The children were already judged above, so nothing is
			// evaluated twice.
			for _, c := range node.Children {
				if langid.CountWords(text[c]) < minWordsDefault {
					text[i] += " " + text[c]
				}
			}
		}

		if langid.CountWords(text[i]) >= minWordsDefault {
			if code, ok := predict.Predict(text[i]); ok {
				detected[i] = code
			}
		}
	}

	return infractions
}

// effectiveLang returns the node's own lang attribute or the inherited
// parent language. An empty lang attribute counts as absent.
func effectiveLang(snap *dom.Snapshot, i int, parentLang string) string {
	if lang, ok := snap.Nodes[i].Attr("lang"); ok {
		return lang
	}
	return parentLang
}

// aggregateChildren applies the child aggregation rule for one parent.
func aggregateChildren(snap *dom.Snapshot, parent int, defined, detected []string) []Infraction {
	children := snap.Nodes[parent].Children

	type pair struct{ defined, detected string }
	pairs := make(map[pair]struct{}, len(children))
	for _, c := range children {
		pairs[pair{defined[c], detected[c]}] = struct{}{}
	}

	if len(pairs) == 1 {
		// All children agree; one report at the parent covers them all.
		c := children[0]
		if detected[c] != "" && detected[c] != defined[c] {
			return []Infraction{languageInfraction(CriterionElementLanguage, snap.XPath(parent), defined[c], detected[c])}
		}
		return nil
	}

	var infractions []Infraction
	for _, c := range children {
		if detected[c] != "" && detected[c] != defined[c] {
			infractions = append(infractions, languageInfraction(CriterionElementLanguage, snap.XPath(c), defined[c], detected[c]))
		}
	}
	return infractions
}

// checkHiddenAttributes language-checks attribute values that screen
// readers voice but the page never renders.
func checkHiddenAttributes(snap *dom.Snapshot, i int, definedLang string, predict Predictor) []Infraction {
	node := &snap.Nodes[i]
	var infractions []Infraction
	for _, name := range hiddenAttributes {
		value, ok := node.Attr(name)
		if !ok {
			continue
		}
		if langid.CountWords(value) < minWordsHidden {
			continue
		}
		code, ok := predict.Predict(value)
		if ok && code != definedLang {
			infractions = append(infractions, languageInfraction(CriterionElementLanguage, snap.XPath(i), definedLang, code))
		}
	}
	return infractions
}
