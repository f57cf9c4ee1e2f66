package export

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Maycon-Saviole/chega2/internal/domain"

	"github.com/tkrajina/gpxgo/gpx"
)

func sampleTrip() *domain.Trip {
	start := time.Date(2026, 3, 8, 20, 0, 0, 0, time.UTC)
	end := start.Add(20 * time.Minute)
	t := &domain.Trip{
		ID:        "trip-export",
		StartedAt: start,
		State:     domain.TripEnded,
		EndReason: domain.EndArrived,
		EndedAt:   &end,
	}
	for i := 0; i < 5; i++ {
		t.Checkpoints = append(t.Checkpoints, domain.Checkpoint{
			Location: domain.Location{
				Latitude:   -23.55 + float64(i)*0.001,
				Longitude:  -46.63,
				AccuracyM:  10,
				SpeedMs:    1.3,
				CapturedAt: start.Add(time.Duration(i) * 4 * time.Minute),
			},
			CapturedAt: start.Add(time.Duration(i) * 4 * time.Minute),
		})
	}
	return t
}

func TestTripToGPX(t *testing.T) {
	dir := t.TempDir()
	path, err := TripToGPX(sampleTrip(), dir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasSuffix(path, ".gpx") {
		t.Fatalf("unexpected path: %s", path)
	}

	parsed, err := gpx.ParseFile(path)
	if err != nil {
		t.Fatalf("exported file does not parse: %v", err)
	}
	if len(parsed.Tracks) != 1 || len(parsed.Tracks[0].Segments) != 1 {
		t.Fatalf("unexpected structure: %+v", parsed.Tracks)
	}
	points := parsed.Tracks[0].Segments[0].Points
	if len(points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(points))
	}
	if points[0].Latitude != -23.55 {
		t.Fatalf("first point wrong: %+v", points[0])
	}
}

func TestTripToGPXRejectsEmptyTrip(t *testing.T) {
	if _, err := TripToGPX(&domain.Trip{ID: "empty"}, t.TempDir()); err == nil {
		t.Fatal("empty trip must not export")
	}
}

func TestTripToFIT(t *testing.T) {
	dir := t.TempDir()
	path, err := TripToFIT(sampleTrip(), dir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("empty FIT file written")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	// FIT files carry the ".FIT" tag in the 12-byte header.
	if len(data) < 12 || string(data[8:12]) != ".FIT" {
		t.Fatalf("missing FIT header tag: % x", data[:12])
	}
}

func TestTripToFITRejectsEmptyTrip(t *testing.T) {
	if _, err := TripToFIT(&domain.Trip{ID: "empty"}, t.TempDir()); err == nil {
		t.Fatal("empty trip must not export")
	}
}
