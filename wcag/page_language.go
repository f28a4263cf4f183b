package wcag

import (
	"strings"

	"github.com/a11yaudit/a11ycheck/dom"
	"github.com/a11yaudit/a11ycheck/langid"
)

// minWordsDefault is the minimum word count before a text's language
// prediction is considered meaningful.
const minWordsDefault = 5

// Predictor is the opaque language-identification capability. ok is false
// when the model's confidence does not clear its threshold.
type Predictor interface {
	Predict(text string) (code string, ok bool)
}

// detectPageLanguage finds the WCAG 3.1.1 infraction: the page's root
// text is confidently identified as a language other than the declared
// one. Subtrees with their own lang attribute are excluded from the root
// text, since 3.1.2 covers them.
func detectPageLanguage(snap *dom.Snapshot, declared string, predict Predictor) []Infraction {
	body := snap.Body()
	if body < 0 {
		return nil
	}

	// Breadth-first collection, pruning lang-attributed subtrees.
	var parts []string
	queue := []int{body}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		node := &snap.Nodes[i]
		if _, ok := node.Attr("lang"); ok {
			continue
		}
		queue = append(queue, node.Children...)
		if text := strings.TrimSpace(node.Text); text != "" {
			parts = append(parts, text)
		}
	}

	rootText := strings.Join(parts, " ")
	if langid.CountWords(rootText) < minWordsDefault {
		return nil
	}

	predicted, ok := predict.Predict(rootText)
	if !ok || predicted == declared {
		return nil
	}
	return []Infraction{languageInfraction(CriterionPageLanguage, "/html", declared, predicted)}
}
