package geo

import (
	"math"
	"testing"

	"github.com/Maycon-Saviole/chega2/internal/domain"
)

func TestDistanceSamePoint(t *testing.T) {
	p := domain.Location{Latitude: -23.5505, Longitude: -46.6333}
	if d := DistanceMeters(p, p); d != 0 {
		t.Fatalf("distance to self = %v, want 0", d)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := domain.Location{Latitude: -23.5505, Longitude: -46.6333} // São Paulo
	b := domain.Location{Latitude: -22.9068, Longitude: -43.1729} // Rio
	if ab, ba := DistanceMeters(a, b), DistanceMeters(b, a); ab != ba {
		t.Fatalf("asymmetric: %v vs %v", ab, ba)
	}
}

func TestDistanceOneDegreeLatitude(t *testing.T) {
	a := domain.Location{Latitude: 0, Longitude: 0}
	b := domain.Location{Latitude: 1, Longitude: 0}
	d := DistanceMeters(a, b)
	// 1 degree of latitude is ~111195 m on the spherical model.
	if math.Abs(d-111195) > 111195*0.01 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestPathDistance(t *testing.T) {
	cps := []domain.Checkpoint{
		{Location: domain.Location{Latitude: 0, Longitude: 0}},
		{Location: domain.Location{Latitude: 0.5, Longitude: 0}},
		{Location: domain.Location{Latitude: 1, Longitude: 0}},
	}
	direct := DistanceMeters(cps[0].Location, cps[2].Location)
	total := PathDistanceMeters(cps)
	if math.Abs(total-direct) > 1 {
		t.Fatalf("path along a meridian should equal direct distance: %v vs %v", total, direct)
	}
	if PathDistanceMeters(cps[:1]) != 0 {
		t.Fatal("single checkpoint should give zero distance")
	}
}
