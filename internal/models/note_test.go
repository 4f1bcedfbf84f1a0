package models

import "testing"

func TestNoteStem(t *testing.T) {
	cases := map[string]string{
		"Ideas.md":               "ideas",
		"thoughts/Rust Async.md": "rust async",
		"a/b/c.v2.md":            "c.v2",
	}
	for p, want := range cases {
		n := Note{Path: p}
		if got := n.Stem(); got != want {
			t.Errorf("Stem(%q) = %q, want %q", p, got, want)
		}
	}
}

func TestNoteValidate(t *testing.T) {
	ok := Note{Path: "a.md", WordCount: 3}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid note rejected: %v", err)
	}

	if err := (&Note{Path: ""}).Validate(); err == nil {
		t.Error("empty path should fail validation")
	}
	if err := (&Note{Path: "a.txt"}).Validate(); err == nil {
		t.Error("non-markdown path should fail validation")
	}
	if err := (&Note{Path: "a.md", WordCount: -1}).Validate(); err == nil {
		t.Error("negative word count should fail validation")
	}
}

func TestCountWords(t *testing.T) {
	if got := CountWords("  one two\nthree\tfour  "); got != 4 {
		t.Errorf("CountWords = %d, want 4", got)
	}
	if got := CountWords(""); got != 0 {
		t.Errorf("CountWords(empty) = %d, want 0", got)
	}
}
