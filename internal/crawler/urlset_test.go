package crawler

import (
	"reflect"
	"testing"
)

func TestURLSetKeepsFirstDiscoveredOrder(t *testing.T) {
	s := newURLSet()
	for _, u := range []string{"c", "a", "c", "b", "a"} {
		s.Add(u)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", s.Len())
	}
	if got := s.Items(0); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Fatalf("unexpected order %v", got)
	}
	if got := s.Items(2); !reflect.DeepEqual(got, []string{"c", "a"}) {
		t.Fatalf("unexpected truncation %v", got)
	}
}

func TestURLSetItemsIsCopy(t *testing.T) {
	s := newURLSet()
	s.Add("a")
	items := s.Items(0)
	items[0] = "mutated"
	if s.Items(0)[0] != "a" {
		t.Fatal("Items must not expose internal storage")
	}
}
