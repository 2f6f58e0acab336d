package relevance

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore_WholeWordMatch(t *testing.T) {
	// Whole-word match earns the substring point plus the boundary bonus.
	got := Score("apex", "Apex Fundamentals")
	if !almostEqual(got, 1.5) {
		t.Errorf("Score(apex, Apex Fundamentals) = %v, want 1.5", got)
	}
}

func TestScore_AllTokensWholeWords(t *testing.T) {
	// When every token matches at a boundary the score is exactly 1.5
	// regardless of token count.
	queries := []string{
		"apex",
		"apex trigger",
		"apex trigger basics",
	}
	text := "apex trigger basics for admins"

	for _, q := range queries {
		if got := Score(q, text); !almostEqual(got, 1.5) {
			t.Errorf("Score(%q, %q) = %v, want 1.5", q, text, got)
		}
	}
}

func TestScore_SubstringOnly(t *testing.T) {
	// "flow" appears inside "workflows" but not as a whole word.
	got := Score("flow", "automating workflows")
	if !almostEqual(got, 1.0) {
		t.Errorf("Score(flow, automating workflows) = %v, want 1.0", got)
	}
}

func TestScore_PartialTokenCoverage(t *testing.T) {
	// One of two tokens matches as a whole word: (1.0+0.5)/2.
	got := Score("apex visualforce", "Apex Fundamentals")
	if !almostEqual(got, 0.75) {
		t.Errorf("Score = %v, want 0.75", got)
	}
}

func TestScore_Range(t *testing.T) {
	cases := []struct{ query, text string }{
		{"apex", "Apex Fundamentals"},
		{"a b c d", "a"},
		{"salesforce admin certification", "admin"},
		{"x", ""},
		{"", "anything"},
	}
	for _, c := range cases {
		got := Score(c.query, c.text)
		if got < 0 || got > 1.5 {
			t.Errorf("Score(%q, %q) = %v, outside [0, 1.5]", c.query, c.text, got)
		}
	}
}

func TestScore_EmptyInputs(t *testing.T) {
	if got := Score("", "text"); got != 0 {
		t.Errorf("empty query: got %v, want 0", got)
	}
	if got := Score("   ", "text"); got != 0 {
		t.Errorf("whitespace query: got %v, want 0", got)
	}
	if got := Score("apex", ""); got != 0 {
		t.Errorf("empty text: got %v, want 0", got)
	}
}

func TestScore_CaseInsensitive(t *testing.T) {
	a := Score("APEX", "apex fundamentals")
	b := Score("apex", "APEX FUNDAMENTALS")
	if !almostEqual(a, b) || !almostEqual(a, 1.5) {
		t.Errorf("case sensitivity leak: %v vs %v", a, b)
	}
}

func TestScore_RegexSpecialCharacters(t *testing.T) {
	// Tokens with regex metacharacters must not break boundary matching.
	cases := []struct {
		query string
		text  string
	}{
		{"c++", "learning c++ basics"},
		{"what?", "what? a guide"},
		{"(apex)", "code (apex) deep dive"},
		{"a.b", "module a.b overview"},
	}
	for _, c := range cases {
		got := Score(c.query, c.text)
		if got < 1.0 {
			t.Errorf("Score(%q, %q) = %v, want >= 1.0 (substring must match)", c.query, c.text, got)
		}
	}
}
