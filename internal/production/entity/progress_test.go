package entity

import "testing"

func TestStageTransitionAllowed(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StageStatusPaused, StageStatusActive, true},
		{StageStatusPaused, StageStatusFinished, true},
		{StageStatusActive, StageStatusPaused, true},
		{StageStatusActive, StageStatusFinished, true},
		{StageStatusFinished, StageStatusActive, false},
		{StageStatusFinished, StageStatusPaused, false},
		{StageStatusFinished, StageStatusFinished, false},
		{StageStatusActive, StageStatusActive, false},
		{StageStatusPaused, StageStatusPaused, false},
		{"bogus", StageStatusActive, false},
	}
	for _, c := range cases {
		if got := StageTransitionAllowed(c.from, c.to); got != c.want {
			t.Errorf("StageTransitionAllowed(%q, %q) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestOrderTransitions(t *testing.T) {
	if allowed := ValidOrderTransitions[OrderStatusPlanned]; len(allowed) != 1 || allowed[0] != OrderStatusInProduction {
		t.Errorf("planned should only move to in_production, got %v", allowed)
	}
	if allowed := ValidOrderTransitions[OrderStatusInProduction]; len(allowed) != 1 || allowed[0] != OrderStatusCompleted {
		t.Errorf("in_production should only move to completed, got %v", allowed)
	}
	if allowed := ValidOrderTransitions[OrderStatusCompleted]; len(allowed) != 0 {
		t.Errorf("completed is terminal, got %v", allowed)
	}
}

func TestGradeTotalPieces(t *testing.T) {
	grade := Grade{
		{ColorID: "c1", ColorName: "Azul", QuantitiesBySize: map[string]int{"P": 10, "M": 20, "G": 15}},
		{ColorID: "c2", ColorName: "Preto", QuantitiesBySize: map[string]int{"M": 5}},
	}
	if got := grade.TotalPieces(); got != 50 {
		t.Errorf("TotalPieces() = %d, want 50", got)
	}

	var empty Grade
	if got := empty.TotalPieces(); got != 0 {
		t.Errorf("TotalPieces() on empty grade = %d, want 0", got)
	}
}
