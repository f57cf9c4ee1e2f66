package geo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Maycon-Saviole/chega2/internal/domain"
)

type fakeProvider struct {
	mu          sync.Mutex
	fix         domain.Location
	fixErr      error
	watchErr    error
	samples     []domain.Location
	watchActive int
	cleared     int
}

func (f *fakeProvider) CurrentFix(ctx context.Context) (domain.Location, error) {
	if f.fixErr != nil {
		return domain.Location{}, f.fixErr
	}
	return f.fix, nil
}

func (f *fakeProvider) WatchFix(onSample func(domain.Location), onError func(error)) (domain.WatchID, error) {
	if f.watchErr != nil {
		return 0, f.watchErr
	}
	f.mu.Lock()
	f.watchActive++
	f.mu.Unlock()
	go func() {
		for _, s := range f.samples {
			onSample(s)
		}
	}()
	return 1, nil
}

func (f *fakeProvider) ClearWatch(id domain.WatchID) {
	f.mu.Lock()
	f.watchActive--
	f.cleared++
	f.mu.Unlock()
}

func TestQuickFixReturnsSentinelOnFailure(t *testing.T) {
	l := NewLocator(&fakeProvider{fixErr: errors.New("gps off")})
	loc := l.QuickFix(context.Background())
	if loc.HasFix() {
		t.Fatalf("expected sentinel location, got %+v", loc)
	}
	if loc.CapturedAt.IsZero() {
		t.Fatal("sentinel should still be timestamped")
	}
}

func TestBestFixAcceptsAccurateSample(t *testing.T) {
	p := &fakeProvider{samples: []domain.Location{
		{Latitude: 1, Longitude: 1, AccuracyM: 80},
		{Latitude: 2, Longitude: 2, AccuracyM: 30},
	}}
	l := NewLocator(p)
	loc := l.BestFix(context.Background())
	if loc.AccuracyM != 30 {
		t.Fatalf("expected the sub-threshold sample, got %+v", loc)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cleared != 1 || p.watchActive != 0 {
		t.Fatalf("watch not cleaned up: cleared=%d active=%d", p.cleared, p.watchActive)
	}
}

func TestBestFixKeepsBestAfterMaxAttempts(t *testing.T) {
	p := &fakeProvider{samples: []domain.Location{
		{Latitude: 1, Longitude: 1, AccuracyM: 90},
		{Latitude: 2, Longitude: 2, AccuracyM: 60},
		{Latitude: 3, Longitude: 3, AccuracyM: 75},
	}}
	l := NewLocator(p)
	loc := l.BestFix(context.Background())
	if loc.AccuracyM != 60 {
		t.Fatalf("expected best-seen fallback (60m), got %+v", loc)
	}
}

func TestBestFixTimesOutWithSentinel(t *testing.T) {
	p := &fakeProvider{} // watch never produces samples
	l := NewLocator(p)
	l.BestFixTimeout = 20 * time.Millisecond
	loc := l.BestFix(context.Background())
	if loc.HasFix() {
		t.Fatalf("expected sentinel on timeout, got %+v", loc)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.watchActive != 0 {
		t.Fatal("watch leaked after timeout")
	}
}

func TestBestFixFallsBackToQuickFixWhenWatchFails(t *testing.T) {
	p := &fakeProvider{
		watchErr: errors.New("watch unavailable"),
		fix:      domain.Location{Latitude: 5, Longitude: 5, AccuracyM: 40},
	}
	l := NewLocator(p)
	loc := l.BestFix(context.Background())
	if loc.Latitude != 5 {
		t.Fatalf("expected quick fix fallback, got %+v", loc)
	}
}
