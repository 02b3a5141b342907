package utils

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator_GeneratesV7(t *testing.T) {
	g := NewUUIDGenerator()

	id, err := uuid.Parse(g.Generate())
	if err != nil {
		t.Fatalf("expected valid uuid, got error: %v", err)
	}
	if id.Version() != 7 {
		t.Errorf("expected version 7, got %d", id.Version())
	}
}

func TestUUIDGenerator_Unique(t *testing.T) {
	g := NewUUIDGenerator()
	seen := make(map[string]struct{}, 1000)

	for i := 0; i < 1000; i++ {
		id := g.Generate()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = struct{}{}
	}
}
