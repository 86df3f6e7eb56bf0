/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package listing

import (
	"testing"

	"github.com/Seednode/homebet/internal/models"
)

func TestFallback(t *testing.T) {
	got := Fallback(5)
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}

	seen := make(map[string]bool)
	for _, p := range got {
		if !p.Admissible() {
			t.Fatalf("fallback property not admissible: %+v", p)
		}
		if p.Source != models.SourceMock {
			t.Fatalf("source = %q, want mock", p.Source)
		}
		if len(p.Images) == 0 {
			t.Fatalf("fallback property %s has no images", p.ID)
		}
		if seen[p.ID] {
			t.Fatalf("duplicate property %s", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestFallbackBounds(t *testing.T) {
	if got := Fallback(100); len(got) != PoolSize {
		t.Fatalf("len = %d, want %d", len(got), PoolSize)
	}
	if got := Fallback(0); len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestFallbackDoesNotShareSlices(t *testing.T) {
	a := Fallback(PoolSize)
	for i := range a {
		a[i].Images[0] = "mutated"
	}
	for _, p := range Fallback(PoolSize) {
		if p.Images[0] == "mutated" {
			t.Fatal("fallback returned shared image slice")
		}
	}
}
