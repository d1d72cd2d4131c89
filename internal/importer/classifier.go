package importer

import (
	"strings"

	"fintrack/internal/core"
)

// Classifier guesses a category for an imported row from its description.
// Zero means no guess; the row stays uncategorized.
type Classifier interface {
	Classify(description string) int64
}

type keywordBinding struct {
	keyword    string
	categoryID int64
}

// KeywordClassifier matches lowercased keywords against descriptions in
// binding order, first match wins. It is seeded from the user's category
// names.
type KeywordClassifier struct {
	bindings []keywordBinding
}

func NewKeywordClassifier(categories []core.Category) *KeywordClassifier {
	c := &KeywordClassifier{}
	for _, cat := range categories {
		for _, word := range strings.Fields(strings.ToLower(cat.Name)) {
			if len(word) < 3 {
				continue
			}
			c.bindings = append(c.bindings, keywordBinding{keyword: word, categoryID: cat.ID})
		}
	}
	return c
}

func (c *KeywordClassifier) Classify(description string) int64 {
	desc := strings.ToLower(description)
	for _, b := range c.bindings {
		if strings.Contains(desc, b.keyword) {
			return b.categoryID
		}
	}
	return 0
}
