package device

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/Maycon-Saviole/chega2/internal/domain"
)

// Simulator is a drop-in LocationProvider for machines without GPS. It
// random-walks from a starting coordinate so trips accumulate plausible
// checkpoints during development.
type Simulator struct {
	mu sync.Mutex

	lat, lng  float64
	battery   float64
	nextWatch domain.WatchID
	watchers  map[domain.WatchID]chan struct{}

	// StepM is the approximate walking step per sample.
	StepM    float64
	Interval time.Duration
}

// NewSimulator starts at Praça da Sé, São Paulo.
func NewSimulator() *Simulator {
	return &Simulator{
		lat:      -23.5505,
		lng:      -46.6333,
		battery:  0.9,
		watchers: make(map[domain.WatchID]chan struct{}),
		StepM:    25,
		Interval: time.Second,
	}
}

func (s *Simulator) CurrentFix(ctx context.Context) (domain.Location, error) {
	return s.step(), nil
}

func (s *Simulator) WatchFix(onSample func(domain.Location), onError func(error)) (domain.WatchID, error) {
	s.mu.Lock()
	s.nextWatch++
	id := s.nextWatch
	stop := make(chan struct{})
	s.watchers[id] = stop
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				onSample(s.step())
			}
		}
	}()
	return id, nil
}

func (s *Simulator) ClearWatch(id domain.WatchID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stop, ok := s.watchers[id]; ok {
		close(stop)
		delete(s.watchers, id)
	}
}

// Level implements BatteryReader with a slow drain.
func (s *Simulator) Level() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.battery -= 0.0001
	if s.battery < 0 {
		s.battery = 0
	}
	return s.battery, true
}

// step advances the random walk and returns the new position. One degree
// of latitude is roughly 111km.
func (s *Simulator) step() domain.Location {
	s.mu.Lock()
	defer s.mu.Unlock()

	deg := s.StepM / 111_000
	s.lat += (rand.Float64() - 0.5) * 2 * deg
	s.lng += (rand.Float64() - 0.5) * 2 * deg

	return domain.Location{
		Latitude:   s.lat,
		Longitude:  s.lng,
		AccuracyM:  5 + rand.Float64()*20,
		SpeedMs:    1.0 + rand.Float64()*0.8,
		CapturedAt: time.Now(),
	}
}
