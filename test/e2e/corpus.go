// Package e2e provides end-to-end tests over a themed corpus: relevance search,
// clustering and file import.
package e2e

import (
	"fmt"
	"strings"

	"github.com/hyperjump/bunseki/internal/models"
)

// Document is a corpus entry. Theme names the group the document was generated from.
type Document struct {
	ID      string
	Title   string
	Content string
	Theme   string
	// Signature is a word that appears in this document only, after the clustering prefix.
	Signature string
}

// QueryTestCase is a query and the documents that must rank first.
type QueryTestCase struct {
	Query          string
	ExpectedDocIDs []string
	Description    string
}

// Corpus holds the documents and the query test cases built from them.
type Corpus struct {
	Documents []Document
	TestCases []QueryTestCase
	Themes    []string
}

type theme struct {
	name     string
	title    string
	sentence string
}

// themes use disjoint vocabularies so no theme word is a substring of another theme's text.
var themes = []theme{
	{
		name:     "gardening",
		title:    "Garden journal",
		sentence: "Tomato seedlings need compost, mulch and a sturdy trellis before harvest. ",
	},
	{
		name:     "astronomy",
		title:    "Observatory log",
		sentence: "The telescope tracked a faint nebula while a comet crossed Jupiter's orbit. ",
	},
	{
		name:     "baking",
		title:    "Bakery notebook",
		sentence: "Sourdough loaves rise slowly; knead rye flour until the crust blisters. ",
	},
}

// prefixRunes is longer than the clustering content prefix, so every document of a theme
// looks the same to clustering and differs only in its signature to search.
const prefixRunes = 400

// BuildCorpus returns perTheme documents for each theme. Documents of a theme share their
// title and opening text and end with a unique signature word.
func BuildCorpus(perTheme int) *Corpus {
	c := &Corpus{}
	for ti, th := range themes {
		c.Themes = append(c.Themes, th.name)
		body := strings.Repeat(th.sentence, prefixRunes/len(th.sentence)+1)
		for i := 0; i < perTheme; i++ {
			n := ti*perTheme + i + 1
			sig := fmt.Sprintf("zq%03dv", n)
			c.Documents = append(c.Documents, Document{
				ID:        fmt.Sprintf("e2e-doc-%03d", n),
				Title:     th.title,
				Content:   body + "Reference " + sig + ".",
				Theme:     th.name,
				Signature: sig,
			})
		}
	}
	for _, d := range c.Documents {
		c.TestCases = append(c.TestCases, QueryTestCase{
			Query:          d.Signature,
			ExpectedDocIDs: []string{d.ID},
			Description:    fmt.Sprintf("query %q should rank %s first", d.Signature, d.ID),
		})
	}
	return c
}

// DocumentsOf returns the IDs of the documents generated from the named theme.
func (c *Corpus) DocumentsOf(themeName string) []string {
	var ids []string
	for _, d := range c.Documents {
		if d.Theme == themeName {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// ToModels converts the corpus to stored documents owned by owner.
func (c *Corpus) ToModels(owner string) []*models.Document {
	out := make([]*models.Document, len(c.Documents))
	for i := range c.Documents {
		d := &c.Documents[i]
		out[i] = &models.Document{
			ID:      d.ID,
			OwnerID: owner,
			Title:   d.Title,
			Content: d.Content,
		}
	}
	return out
}
