package scoring

import "testing"

func TestPriorityScoreReferenceScenario(t *testing.T) {
	// 0.99 damage probability, $250k, 2 days out, phone known:
	// floor(0.99*40)=39 + min(20, 250000/25000)=10 + max(0,25-2)=23 + 15 = 87.
	got := PriorityScore(0.99, 250000, 2, true)
	if got != 87 {
		t.Errorf("PriorityScore = %d, want 87", got)
	}
}

func TestPriorityScoreComponents(t *testing.T) {
	tests := []struct {
		name      string
		prob      float64
		value     int
		days      int
		hasPhone  bool
		want      int
	}{
		{"damage only", 0.5, 0, 25, false, 20},
		{"value capped at 20", 0.0, 10_000_000, 25, false, 20},
		{"value linear", 0.0, 75000, 25, false, 3},
		{"recency full", 0.0, 0, 0, false, 25},
		{"recency expired", 0.0, 0, 60, false, 1},
		{"phone bonus alone", 0.0, 0, 25, true, 15},
		{"floor at 1", 0.0, 0, 25, false, 1},
		{"clamp at 100", 0.99, 10_000_000, 0, true, 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := PriorityScore(tc.prob, tc.value, tc.days, tc.hasPhone)
			if got != tc.want {
				t.Errorf("PriorityScore(%v, %d, %d, %v) = %d, want %d",
					tc.prob, tc.value, tc.days, tc.hasPhone, got, tc.want)
			}
		})
	}
}

func TestPriorityScoreBounds(t *testing.T) {
	probs := []float64{0, 0.15, 0.5, 0.99}
	values := []int{0, 25000, 250000, 5_000_000}
	days := []int{0, 10, 25, 400}

	for _, p := range probs {
		for _, v := range values {
			for _, d := range days {
				for _, phone := range []bool{true, false} {
					got := PriorityScore(p, v, d, phone)
					if got < 1 || got > 100 {
						t.Fatalf("PriorityScore(%v, %d, %d, %v) = %d, outside [1, 100]", p, v, d, phone, got)
					}
				}
			}
		}
	}
}

func TestPriorityScorePhoneBonus(t *testing.T) {
	probs := []float64{0.1, 0.4, 0.8}
	values := []int{50000, 250000}
	days := []int{0, 5, 30}

	for _, p := range probs {
		for _, v := range values {
			for _, d := range days {
				with := PriorityScore(p, v, d, true)
				without := PriorityScore(p, v, d, false)

				delta := with - without
				if with == 100 {
					// Clamping can shrink the visible bonus.
					if delta < 0 || delta > 15 {
						t.Errorf("clamped phone bonus out of range: %d (p=%v v=%d d=%d)", delta, p, v, d)
					}
					continue
				}
				if delta != 15 {
					t.Errorf("phone bonus = %d, want 15 (p=%v v=%d d=%d)", delta, p, v, d)
				}
			}
		}
	}
}
