package main

import "testing"

// A dead camera must end the run after the failure budget instead of
// spinning the loop forever.
func TestTickFailureBudget(t *testing.T) {
	streak := 0
	giveUp := false
	for i := 0; i < tickFailureLimit-1; i++ {
		if streak, giveUp = nextTickFailure(streak); giveUp {
			t.Fatalf("gave up after %d failures, limit is %d", streak, tickFailureLimit)
		}
	}
	if streak, giveUp = nextTickFailure(streak); !giveUp {
		t.Fatalf("still running after %d consecutive failures", streak)
	}
}
