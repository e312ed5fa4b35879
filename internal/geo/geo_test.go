package geo

import (
	"math"
	"math/rand"
	"testing"
)

func TestDistanceMilesSymmetry(t *testing.T) {
	lat1, lon1 := 43.0731, -89.4012 // Madison
	lat2, lon2 := 43.0389, -87.9065 // Milwaukee

	ab := DistanceMiles(lat1, lon1, lat2, lon2)
	ba := DistanceMiles(lat2, lon2, lat1, lon1)

	if ab != ba {
		t.Errorf("distance not symmetric: %v vs %v", ab, ba)
	}
	if ab <= 0 {
		t.Errorf("expected positive distance, got %v", ab)
	}
}

func TestDistanceMilesZero(t *testing.T) {
	if d := DistanceMiles(43.0731, -89.4012, 43.0731, -89.4012); d != 0 {
		t.Errorf("distance to self = %v, want 0", d)
	}
}

func TestDistanceMilesOneDegreeLatitude(t *testing.T) {
	// One degree of latitude is pi*3959/180 = 69.1 miles on the reference sphere.
	d := DistanceMiles(43.0, -89.4, 44.0, -89.4)
	want := math.Pi * 3959.0 / 180.0
	if math.Abs(d-want) > 1e-9 {
		t.Errorf("one degree latitude = %v, want %v", d, want)
	}
}

func TestRandomPointInRadiusStaysInside(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	centerLat, centerLon := 43.0731, -89.4012
	const radius = 5.0

	for i := 0; i < 500; i++ {
		lat, lon := RandomPointInRadius(r, centerLat, centerLon, radius)
		// The offset math is equirectangular while the check is haversine,
		// so allow a small tolerance at the rim.
		if d := DistanceMiles(centerLat, centerLon, lat, lon); d > radius*1.01 {
			t.Fatalf("sample %d at distance %v exceeds radius %v", i, d, radius)
		}
	}
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	south, west, north, east := BoundingBox(43.0731, -89.4012, 3.0)

	if south >= north {
		t.Fatalf("south %v not below north %v", south, north)
	}
	if west >= east {
		t.Fatalf("west %v not left of east %v", west, east)
	}

	// Corners of the inscribed radius must fall inside the box.
	latDelta := 3.0 / 69.0
	if north-43.0731 < latDelta-1e-9 {
		t.Errorf("north edge too close: %v", north)
	}
	// Longitude degrees shrink with latitude, so the east-west span must be
	// wider in degrees than the north-south span.
	if (east - west) <= (north - south) {
		t.Errorf("longitude span %v should exceed latitude span %v at 43N", east-west, north-south)
	}
}

func TestDedupKey(t *testing.T) {
	tests := []struct {
		street string
		zip    string
		want   string
	}{
		{"123 N Main St", "53703", "123 n main st|53703"},
		{"  123 N MAIN ST  ", "53703", "123 n main st|53703"},
		{"", "53703", "|53703"},
	}

	for _, tc := range tests {
		if got := DedupKey(tc.street, tc.zip); got != tc.want {
			t.Errorf("DedupKey(%q, %q) = %q, want %q", tc.street, tc.zip, got, tc.want)
		}
	}

	if DedupKey("123 Main St", "53703") == DedupKey("123 Main St", "53704") {
		t.Error("different zip codes must produce different keys")
	}
}
