package main

import "testing"

func TestCaptureRate(t *testing.T) {
	if got := captureRate(0, 0); got != 0 {
		t.Fatalf("expected 0 rate with no participants, got %.1f", got)
	}
	if got := captureRate(1, 4); got != 25 {
		t.Fatalf("expected 25%%, got %.1f", got)
	}
	if got := captureRate(4, 4); got != 100 {
		t.Fatalf("expected 100%%, got %.1f", got)
	}
}

func TestMedian(t *testing.T) {
	if got := median(nil); got != -1 {
		t.Fatalf("expected -1 for empty input, got %d", got)
	}
	if got := median([]int{30, 10, 20}); got != 20 {
		t.Fatalf("expected 20, got %d", got)
	}
	// Input must not be reordered by the call.
	in := []int{30, 10, 20}
	median(in)
	if in[0] != 30 || in[1] != 10 || in[2] != 20 {
		t.Fatalf("median mutated its input: %v", in)
	}
}

func TestAvg(t *testing.T) {
	if got := avg(10, 0); got != 0 {
		t.Fatalf("expected 0 for zero runs, got %.1f", got)
	}
	if got := avg(10, 4); got != 2.5 {
		t.Fatalf("expected 2.5, got %.1f", got)
	}
}
