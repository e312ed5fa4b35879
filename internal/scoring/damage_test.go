package scoring

import (
	"math"
	"testing"
)

func TestDamageProbabilityReferenceScenario(t *testing.T) {
	// 2.5" hail, 1 mile out, 15-year asphalt shingle roof:
	// 0.95 * 0.9 * 1.2 * 1.2 = 1.2312, capped at 0.99.
	prob, factors := DamageProbability(2.5, 1.0, 15, RoofTypeAsphaltShingle)

	if prob != 0.99 {
		t.Errorf("probability = %v, want 0.99", prob)
	}
	if factors.BaseProbability != 0.95 {
		t.Errorf("base = %v, want 0.95", factors.BaseProbability)
	}
	if math.Abs(factors.DistanceFactor-0.9) > 1e-12 {
		t.Errorf("distance factor = %v, want 0.9", factors.DistanceFactor)
	}
	if factors.RoofAgeFactor != 1.2 {
		t.Errorf("age factor = %v, want 1.2", factors.RoofAgeFactor)
	}
	if factors.RoofTypeFactor != 1.2 {
		t.Errorf("type factor = %v, want 1.2", factors.RoofTypeFactor)
	}
	if factors.ModelVersion != ModelVersion {
		t.Errorf("model version = %q, want %q", factors.ModelVersion, ModelVersion)
	}
}

func TestDamageProbabilityBaseBreakpoints(t *testing.T) {
	tests := []struct {
		hail float64
		want float64
	}{
		{3.0, 0.95},
		{2.5, 0.95},
		{2.49, 0.85},
		{2.0, 0.85},
		{1.75, 0.70},
		{1.5, 0.70},
		{1.0, 0.50},
		{0.9, 0.30},
		{0.75, 0.30},
		{0.5, 0.15},
		{0, 0.15},
	}

	for _, tc := range tests {
		_, factors := DamageProbability(tc.hail, 0, 7, RoofTypeFlat)
		if factors.BaseProbability != tc.want {
			t.Errorf("base probability for %.2f\" hail = %v, want %v", tc.hail, factors.BaseProbability, tc.want)
		}
	}
}

func TestDamageProbabilityMonotonicInHailSize(t *testing.T) {
	sizes := []float64{0.5, 0.75, 1.0, 1.5, 2.0, 2.5, 3.0}

	prev := 0.0
	for _, size := range sizes {
		prob, _ := DamageProbability(size, 2.0, 12, RoofTypeTile)
		if prob < prev {
			t.Errorf("probability decreased at %.2f\": %v < %v", size, prob, prev)
		}
		prev = prob
	}
}

func TestDamageProbabilityBounds(t *testing.T) {
	hailSizes := []float64{0, 0.5, 1.0, 2.0, 3.5}
	distances := []float64{0, 1, 5, 50, 500}
	ages := []int{0, 4, 9, 14, 19, 40}
	roofTypes := []string{RoofTypeWood, RoofTypeAsphaltShingle, RoofTypeFlat, RoofTypeTile, RoofTypeMetal, "thatch", ""}

	for _, hail := range hailSizes {
		for _, dist := range distances {
			for _, age := range ages {
				for _, roof := range roofTypes {
					prob, _ := DamageProbability(hail, dist, age, roof)
					if prob <= 0 || prob > 0.99 {
						t.Fatalf("DamageProbability(%v, %v, %v, %q) = %v, outside (0, 0.99]",
							hail, dist, age, roof, prob)
					}
				}
			}
		}
	}
}

func TestDamageProbabilityDistanceFloor(t *testing.T) {
	near, _ := DamageProbability(1.5, 0, 12, RoofTypeMetal)
	far, farFactors := DamageProbability(1.5, 100, 12, RoofTypeMetal)

	if farFactors.DistanceFactor != 0.3 {
		t.Errorf("distance factor at 100 miles = %v, want floor 0.3", farFactors.DistanceFactor)
	}
	if far < near*0.3-1e-12 {
		t.Errorf("probability at 100 miles %v fell below 0.3x the at-center value %v", far, near)
	}
}

func TestDamageProbabilityUnknownRoofTypeIsNeutral(t *testing.T) {
	unknown, _ := DamageProbability(2.0, 1.0, 12, "gravel")
	flat, _ := DamageProbability(2.0, 1.0, 12, RoofTypeFlat)

	if unknown != flat {
		t.Errorf("unknown roof type = %v, want neutral multiplier result %v", unknown, flat)
	}
}

func TestHailSizeAtDistance(t *testing.T) {
	tests := []struct {
		hail, dist, want float64
	}{
		{2.5, 0, 2.5},
		{2.5, 1, 2.4},
		{2.5, 10, 1.5},
		{1.0, 15, 0},
		{0.5, 100, 0},
	}

	for _, tc := range tests {
		got := HailSizeAtDistance(tc.hail, tc.dist)
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("HailSizeAtDistance(%v, %v) = %v, want %v", tc.hail, tc.dist, got, tc.want)
		}
	}
}
