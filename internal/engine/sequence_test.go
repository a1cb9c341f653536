package engine

import (
	"slices"
	"testing"
)

func TestDedupKeepsFirstOccurrence(t *testing.T) {
	got, dropped := Dedup([]string{"A", "B", "A", "C"})
	if !slices.Equal(got, []string{"A", "B", "C"}) {
		t.Errorf("got %v", got)
	}
	if dropped != 1 {
		t.Errorf("expected 1 dropped line, got %d", dropped)
	}
}

func TestDedupIsExactMatchOnly(t *testing.T) {
	in := []string{"set x 1", "set x 1 ", "set x  1", "set x 1"}
	got, dropped := Dedup(in)
	if !slices.Equal(got, in[:3]) || dropped != 1 {
		t.Errorf("got %q (%d dropped)", got, dropped)
	}
}

func TestDedupEmpty(t *testing.T) {
	got, dropped := Dedup(nil)
	if len(got) != 0 || dropped != 0 {
		t.Errorf("got %v, %d", got, dropped)
	}
}
