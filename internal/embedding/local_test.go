package embedding

import (
	"context"
	"math"
	"testing"
)

func TestLocalEmbedDeterministic(t *testing.T) {
	e := NewLocal(32)

	a, err := e.Embed(context.Background(), "hello there")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	b, err := e.Embed(context.Background(), "hello there")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if len(a) != 32 {
		t.Fatalf("len = %d, want 32", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding not deterministic at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestLocalEmbedNormalized(t *testing.T) {
	e := NewLocal(16)
	vec, err := e.Embed(context.Background(), "normalize me")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Fatalf("norm = %f, want 1", norm)
	}
}

func TestLocalEmbedEmptyText(t *testing.T) {
	e := NewLocal(8)
	vec, err := e.Embed(context.Background(), "")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if vec[0] != 1 {
		t.Fatalf("empty text should map to the unit fallback vector, got %v", vec)
	}
}

func TestNewFallsBackToLocal(t *testing.T) {
	e := New(Config{Provider: "auto", Dim: 64})
	if _, ok := e.(*Local); !ok {
		t.Fatalf("New() without keys = %T, want *Local", e)
	}
	if e.Dimension() != 64 {
		t.Fatalf("Dimension() = %d, want 64", e.Dimension())
	}
}
