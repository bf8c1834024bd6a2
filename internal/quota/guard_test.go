package quota

import "testing"

func TestGuardUnlimited(t *testing.T) {
	g := NewGuard(0)
	if err := g.Admit(1000, 1000, 1000); err != nil {
		t.Fatalf("expected unlimited guard to admit, got %v", err)
	}
}

func TestGuardRejectsOverLimit(t *testing.T) {
	g := NewGuard(10)
	if err := g.Admit(5, 4, 1); err != nil {
		t.Fatalf("5+4+1=10 should be admitted, got %v", err)
	}
	if err := g.Admit(5, 5, 1); err == nil {
		t.Fatal("5+5+1=11 should exceed job_limit=10")
	}
}

func TestGuardExactBoundary(t *testing.T) {
	g := NewGuard(3)
	if err := g.Admit(0, 0, 3); err != nil {
		t.Fatalf("exactly at the limit should be admitted, got %v", err)
	}
	if err := g.Admit(0, 0, 4); err == nil {
		t.Fatal("one over the limit should be rejected")
	}
}
