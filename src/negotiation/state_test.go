package negotiation

import (
	"errors"
	"testing"
	"time"
)

func TestSession_DefaultStageIsIdle(t *testing.T) {
	s := NewSession("Acme Corp", "Drive Shaft")
	if got := s.Stage("Northfield"); got != StageIdle {
		t.Errorf("untouched supplier must be idle, got %s", got)
	}
}

func TestSession_LegalFlow(t *testing.T) {
	s := NewSession("Acme Corp", "Drive Shaft")
	steps := []Stage{StageDrafting, StageAwaitingResponse, StageIdle, StageDrafting, StageResolved}
	for _, to := range steps {
		if err := s.Transition("Northfield", to); err != nil {
			t.Fatalf("transition to %s: unexpected error: %v", to, err)
		}
	}
	if got := s.Stage("Northfield"); got != StageResolved {
		t.Errorf("expected resolved after the flow, got %s", got)
	}
}

func TestSession_IllegalTransitions(t *testing.T) {
	tests := []struct {
		name string
		path []Stage
		to   Stage
	}{
		{"idle to awaiting-response", nil, StageAwaitingResponse},
		{"idle to resolved", nil, StageResolved},
		{"awaiting-response to drafting", []Stage{StageDrafting, StageAwaitingResponse}, StageDrafting},
		{"resolved is terminal", []Stage{StageDrafting, StageResolved}, StageDrafting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("Acme Corp", "Drive Shaft")
			for _, stage := range tt.path {
				if err := s.Transition("Northfield", stage); err != nil {
					t.Fatalf("setup transition to %s failed: %v", stage, err)
				}
			}
			err := s.Transition("Northfield", tt.to)
			var invalid *InvalidTransitionError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidTransitionError, got %v", err)
			}
			if invalid.Supplier != "Northfield" || invalid.To != tt.to {
				t.Errorf("error should carry supplier and target stage, got %+v", invalid)
			}
		})
	}
}

func TestSession_StagesArePerSupplier(t *testing.T) {
	s := NewSession("Acme Corp", "Drive Shaft")
	if err := s.Transition("Northfield", StageDrafting); err != nil {
		t.Fatal(err)
	}
	if got := s.Stage("Eastgate"); got != StageIdle {
		t.Errorf("other suppliers must be unaffected, got %s", got)
	}

	stages := s.Stages()
	if len(stages) != 1 || stages["Northfield"] != StageDrafting {
		t.Errorf("expected stage map {Northfield: drafting}, got %v", stages)
	}
}

func TestSession_OrderDetails(t *testing.T) {
	s := NewSession("Acme Corp", "Drive Shaft")
	if _, ok := s.Order(); ok {
		t.Error("a fresh session must have no confirmed order")
	}

	order := OrderDetails{
		Quantity:     500,
		DeliveryDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		MinPrice:     90,
		MaxPrice:     120,
	}
	s.SetOrder(order)

	got, ok := s.Order()
	if !ok || got != order {
		t.Errorf("expected stored order %+v, got %+v (ok=%v)", order, got, ok)
	}
}
