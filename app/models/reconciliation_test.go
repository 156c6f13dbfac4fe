package models

import "testing"

func TestReconciliationIsTerminal(t *testing.T) {
	tests := []struct {
		state string
		want  bool
	}{
		{ReconciliationStatePending, false},
		{ReconciliationStateInvoicePaid, false},
		{ReconciliationStateProjectAdvanced, false},
		{ReconciliationStateCompleted, true},
		{ReconciliationStateFailed, true},
	}

	for _, tt := range tests {
		rec := Reconciliation{State: tt.state}
		if got := rec.IsTerminal(); got != tt.want {
			t.Errorf("IsTerminal() for state %q = %v, want %v", tt.state, got, tt.want)
		}
	}
}
