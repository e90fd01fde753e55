package task

import "testing"

func TestTransitionAllowed(t *testing.T) {
	cases := []struct {
		from, to State
	}{
		{StatePending, StateProcessing},
		{StateProcessing, StateCompleted},
		{StateProcessing, StateFailed},
	}
	for _, c := range cases {
		got, err := Transition(c.from, c.to)
		if err != nil {
			t.Fatalf("Transition(%s, %s): %v", c.from, c.to, err)
		}
		if got != c.to {
			t.Fatalf("Transition(%s, %s) = %s", c.from, c.to, got)
		}
	}
}

func TestTransitionRejected(t *testing.T) {
	cases := []struct {
		from, to State
	}{
		{StatePending, StateCompleted},
		{StatePending, StateFailed},
		{StateProcessing, StatePending},
		{StateCompleted, StateProcessing},
		{StateCompleted, StateFailed},
		{StateFailed, StateProcessing},
		{StateFailed, StatePending},
	}
	for _, c := range cases {
		got, err := Transition(c.from, c.to)
		if err == nil {
			t.Fatalf("Transition(%s, %s) should fail", c.from, c.to)
		}
		if got != c.from {
			t.Fatalf("Transition(%s, %s) returned %s on error, want unchanged", c.from, c.to, got)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(StatePending) || IsTerminal(StateProcessing) {
		t.Fatal("pending/processing are not terminal")
	}
	if !IsTerminal(StateCompleted) || !IsTerminal(StateFailed) {
		t.Fatal("completed/failed are terminal")
	}
}
