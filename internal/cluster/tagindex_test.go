package cluster

import (
	"reflect"
	"testing"

	"github.com/starford/topicscout/internal/models"
)

func TestBuildTagIndex(t *testing.T) {
	notes := []models.Note{
		note("a.md", 1, []string{"Rust", "systems"}),
		note("b.md", 1, []string{"rust"}),
		note("c.md", 1, []string{"Systems", "go"}),
		note("d.md", 1, []string{"go"}),
		note("e.md", 1, []string{"go"}),
	}
	idx := BuildTagIndex(notes)

	if idx.Len() != 3 {
		t.Fatalf("len = %d, want 3", idx.Len())
	}
	if got := idx.Tags(); !reflect.DeepEqual(got, []string{"rust", "systems", "go"}) {
		t.Errorf("first-seen order = %v", got)
	}
	if got := idx.ByPopularity(); !reflect.DeepEqual(got, []string{"go", "rust", "systems"}) {
		t.Errorf("popularity order = %v", got)
	}
	if got := len(idx.Notes("RUST")); got != 2 {
		t.Errorf("rust bucket = %d, want 2", got)
	}
	if idx.Notes("rust")[0] != &notes[0] {
		t.Error("bucket should reference the input notes, not copies")
	}
}

func TestBuildTagIndex_Empty(t *testing.T) {
	idx := BuildTagIndex(nil)
	if idx.Len() != 0 || len(idx.ByPopularity()) != 0 {
		t.Error("empty input should yield an empty index")
	}
}

func TestResolver(t *testing.T) {
	notes := []models.Note{
		note("x/Alpha.md", 1, nil),
		note("beta.md", 1, nil),
		note("y/alpha.md", 1, nil),
	}
	r := NewResolver(notes)

	got, ok := r.Resolve("ALPHA")
	if !ok || got.Path != "y/alpha.md" {
		t.Errorf("Resolve(ALPHA) = %v, %v; later stem should win", got, ok)
	}
	if _, ok := r.Resolve("gamma"); ok {
		t.Error("unknown target should not resolve")
	}
}

func TestClaimed_WithDoesNotMutate(t *testing.T) {
	a := note("a.md", 1, nil)
	b := note("b.md", 1, nil)
	base := Claimed{}.With([]*models.Note{&a})
	next := base.With([]*models.Note{&b})

	if base.Has(&b) {
		t.Error("With mutated its receiver")
	}
	if !next.Has(&a) || !next.Has(&b) {
		t.Error("extended set lost members")
	}
}

func TestBuilderStep_TooSmallLeavesClaimedUntouched(t *testing.T) {
	notes := []models.Note{note("a.md", 1, []string{"t"}), note("b.md", 1, []string{"t"})}
	idx := BuildTagIndex(notes)
	b := NewBuilder(NewResolver(notes), WithNow(testNow))

	claimed := Claimed{}.With([]*models.Note{&notes[0]})
	_, next, ok := b.Step("t", idx.Notes("t"), claimed)
	if ok {
		t.Fatal("one unclaimed note must not seed a cluster")
	}
	if len(next) != 1 {
		t.Errorf("claimed set changed: %v", next)
	}
}
