package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/Maycon-Saviole/chega2/internal/domain"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(":memory:")
}

func TestSeedsDefaultProfile(t *testing.T) {
	s := newTestService(t)
	p, err := s.Profile()
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.Name == "" || p.EmergencyMessage == "" {
		t.Fatalf("default profile not seeded: %+v", p)
	}
	if !p.Settings.Vibrate || p.Settings.EmergencyNumber != "190" {
		t.Fatalf("default settings wrong: %+v", p.Settings)
	}
}

func TestUpdateProfileRoundTrip(t *testing.T) {
	s := newTestService(t)
	p, _ := s.Profile()
	p.Name = "Ana"
	p.Contacts = []domain.Contact{{Name: "Maria", Phone: "+551", Active: true, ShareTrip: true}}
	if err := s.UpdateProfile(p); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.Profile()
	if got.Name != "Ana" || len(got.Contacts) != 1 || !got.Contacts[0].ShareTrip {
		t.Fatalf("profile not persisted: %+v", got)
	}
}

func TestCurrentTripLifecycle(t *testing.T) {
	s := newTestService(t)

	if trip, err := s.CurrentTrip(); err != nil || trip != nil {
		t.Fatalf("expected no current trip, got %+v err=%v", trip, err)
	}

	trip := &domain.Trip{
		ID:        "trip-1",
		StartedAt: time.Now(),
		State:     domain.TripActive,
		Checkpoints: []domain.Checkpoint{
			{Location: domain.Location{Latitude: 1, Longitude: 2}, CapturedAt: time.Now()},
		},
	}
	if err := s.SaveCurrentTrip(trip); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.CurrentTrip()
	if err != nil || got == nil || got.ID != "trip-1" {
		t.Fatalf("current trip not restored: %+v err=%v", got, err)
	}
	if len(got.Checkpoints) != 1 || got.Checkpoints[0].Location.Latitude != 1 {
		t.Fatalf("checkpoints not serialized: %+v", got.Checkpoints)
	}

	if err := s.ClearCurrentTrip(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got, _ := s.CurrentTrip(); got != nil {
		t.Fatalf("trip survived clear: %+v", got)
	}
}

func TestEndedTripNotCurrent(t *testing.T) {
	s := newTestService(t)
	now := time.Now()
	trip := &domain.Trip{ID: "trip-2", StartedAt: now, State: domain.TripEnded, EndReason: domain.EndArrived, EndedAt: &now}
	if err := s.AppendTripHistory(trip); err != nil {
		t.Fatalf("append: %v", err)
	}
	if got, _ := s.CurrentTrip(); got != nil {
		t.Fatalf("ended trip reported as current: %+v", got)
	}
	hist, err := s.TripHistory(10)
	if err != nil || len(hist) != 1 {
		t.Fatalf("trip history wrong: %v err=%v", hist, err)
	}
}

func TestEmergencyHistoryCap(t *testing.T) {
	s := newTestService(t)
	s.HistoryCap = 100

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 101; i++ {
		r := domain.EmergencyRecord{
			ID:        fmt.Sprintf("rec-%03d", i),
			Source:    domain.TriggerManual,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.AppendEmergencyHistory(r); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	all, err := s.EmergencyHistory(200)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(all) != 100 {
		t.Fatalf("expected history capped at 100, got %d", len(all))
	}
	// Oldest entry (rec-000) must have been dropped.
	for _, r := range all {
		if r.ID == "rec-000" {
			t.Fatal("oldest record was not trimmed")
		}
	}
}
