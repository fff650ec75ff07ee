package e2e

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBuildCorpus_Size(t *testing.T) {
	c := BuildCorpus(4)
	if len(c.Documents) != 4*len(themes) {
		t.Errorf("expected %d documents, got %d", 4*len(themes), len(c.Documents))
	}
	if len(c.TestCases) != len(c.Documents) {
		t.Errorf("expected one test case per document, got %d", len(c.TestCases))
	}
}

func TestBuildCorpus_SignaturesAreUnique(t *testing.T) {
	c := BuildCorpus(4)
	for _, d := range c.Documents {
		for _, other := range c.Documents {
			if other.ID == d.ID {
				continue
			}
			if strings.Contains(strings.ToLower(other.Title+" "+other.Content), d.Signature) {
				t.Errorf("signature %q of %s also appears in %s", d.Signature, d.ID, other.ID)
			}
		}
	}
}

func TestBuildCorpus_SignatureFollowsPrefix(t *testing.T) {
	c := BuildCorpus(2)
	for _, d := range c.Documents {
		idx := strings.Index(d.Content, d.Signature)
		if idx < 0 {
			t.Fatalf("%s: signature missing", d.ID)
		}
		if n := utf8.RuneCountInString(d.Content[:idx]); n < prefixRunes {
			t.Errorf("%s: signature at rune %d, want at least %d", d.ID, n, prefixRunes)
		}
	}
}

func TestCorpus_DocumentsOf(t *testing.T) {
	c := BuildCorpus(3)
	for _, name := range c.Themes {
		if got := len(c.DocumentsOf(name)); got != 3 {
			t.Errorf("theme %s: %d documents, want 3", name, got)
		}
	}
	if got := c.DocumentsOf("unknown"); len(got) != 0 {
		t.Errorf("unknown theme returned %v", got)
	}
}

func TestCorpus_ToModels(t *testing.T) {
	c := BuildCorpus(2)
	docs := c.ToModels("alice")
	if len(docs) != len(c.Documents) {
		t.Fatalf("expected %d models, got %d", len(c.Documents), len(docs))
	}
	for i, d := range docs {
		if d.ID != c.Documents[i].ID || d.OwnerID != "alice" || d.Content != c.Documents[i].Content {
			t.Errorf("model %d does not match corpus document", i)
		}
	}
}
