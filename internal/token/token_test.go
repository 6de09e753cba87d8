package token

import "testing"

// Test looking up every declared keyword succeeds.
func TestLookupKeywords(t *testing.T) {
	for word, want := range keywords {
		if got := LookupIdentifier(word); got != want {
			t.Errorf("LookupIdentifier(%q) = %s, want %s", word, got, want)
		}
	}
}

func TestLookupNonKeywordIsIdentifier(t *testing.T) {
	for _, word := range []string{"foo", "counter", "n", "_private"} {
		if got := LookupIdentifier(word); got != IDENTIFIER {
			t.Errorf("LookupIdentifier(%q) = %s, want IDENTIFIER", word, got)
		}
	}
}

func TestTypesContainsOnlyTypeKeywords(t *testing.T) {
	for typ := range Types {
		if keywordFor(typ) == "" {
			t.Errorf("Types contains %s which is not a keyword", typ)
		}
	}
}

func keywordFor(t Type) string {
	for word, typ := range keywords {
		if typ == t {
			return word
		}
	}
	return ""
}
