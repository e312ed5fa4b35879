package geocoding

import (
	"context"
	"testing"
)

type countingGeocoder struct {
	calls int
	addr  Address
	ok    bool
}

func (c *countingGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (Address, bool) {
	c.calls++
	return c.addr, c.ok
}

func TestCachedReverseGeocoderHit(t *testing.T) {
	inner := &countingGeocoder{addr: Address{Street: "123 N Main St", ZipCode: "53703"}, ok: true}
	cached := NewCachedReverseGeocoder(inner, 10)

	for i := 0; i < 3; i++ {
		addr, ok := cached.ReverseGeocode(context.Background(), 43.07310, -89.40120)
		if !ok || addr.Street != "123 N Main St" {
			t.Fatalf("lookup %d failed: %+v ok=%v", i, addr, ok)
		}
	}

	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
}

func TestCachedReverseGeocoderDoesNotCacheFailures(t *testing.T) {
	inner := &countingGeocoder{ok: false}
	cached := NewCachedReverseGeocoder(inner, 10)

	for i := 0; i < 2; i++ {
		if _, ok := cached.ReverseGeocode(context.Background(), 43.1, -89.4); ok {
			t.Fatal("expected failure passthrough")
		}
	}

	if inner.calls != 2 {
		t.Errorf("inner called %d times, want 2 (failures must be retried)", inner.calls)
	}
}

func TestCachedReverseGeocoderEviction(t *testing.T) {
	inner := &countingGeocoder{addr: Address{Street: "x"}, ok: true}
	cached := NewCachedReverseGeocoder(inner, 2)

	cached.ReverseGeocode(context.Background(), 1, 1)
	cached.ReverseGeocode(context.Background(), 2, 2)
	cached.ReverseGeocode(context.Background(), 3, 3) // evicts (1,1)
	cached.ReverseGeocode(context.Background(), 1, 1) // miss again

	if inner.calls != 4 {
		t.Errorf("inner called %d times, want 4", inner.calls)
	}
}
