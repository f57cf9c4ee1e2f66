// CHEGA! - Personal safety companion for emergency alerts and trip monitoring.
// Copyright (C) 2026  Maycon Saviole
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package device

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Maycon-Saviole/chega2/internal/domain"
)

// ErrNoFix is returned when no position has arrived from the frontend yet.
var ErrNoFix = errors.New("device: no location fix available")

// Bridge adapts frontend-pushed sensor data to the LocationProvider and
// BatteryReader interfaces. The webview owns the actual geolocation and
// battery APIs; it pushes samples down through the bound app methods.
type Bridge struct {
	mu sync.Mutex

	lastFix    domain.Location
	hasFix     bool
	battery    float64
	hasBattery bool

	nextWatch domain.WatchID
	watchers  map[domain.WatchID]func(domain.Location)

	// FreshFor bounds how old a cached fix may be before CurrentFix
	// waits for a new sample instead.
	FreshFor time.Duration

	waiters []chan domain.Location
}

func NewBridge() *Bridge {
	return &Bridge{
		watchers: make(map[domain.WatchID]func(domain.Location)),
		FreshFor: 30 * time.Second,
	}
}

// PushFix feeds one geolocation sample from the frontend. Watchers and any
// blocked CurrentFix calls receive it.
func (b *Bridge) PushFix(loc domain.Location) {
	if loc.CapturedAt.IsZero() {
		loc.CapturedAt = time.Now()
	}

	b.mu.Lock()
	b.lastFix = loc
	b.hasFix = true
	callbacks := make([]func(domain.Location), 0, len(b.watchers))
	for _, cb := range b.watchers {
		callbacks = append(callbacks, cb)
	}
	waiters := b.waiters
	b.waiters = nil
	b.mu.Unlock()

	for _, cb := range callbacks {
		cb(loc)
	}
	for _, w := range waiters {
		w <- loc
	}
}

// PushBatteryLevel feeds the battery level from the frontend, in [0,1].
func (b *Bridge) PushBatteryLevel(level float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.battery = level
	b.hasBattery = true
}

// CurrentFix returns the cached fix when fresh enough, otherwise blocks
// until the next pushed sample or ctx expiry.
func (b *Bridge) CurrentFix(ctx context.Context) (domain.Location, error) {
	b.mu.Lock()
	if b.hasFix && time.Since(b.lastFix.CapturedAt) < b.FreshFor {
		loc := b.lastFix
		b.mu.Unlock()
		return loc, nil
	}
	wait := make(chan domain.Location, 1)
	b.waiters = append(b.waiters, wait)
	b.mu.Unlock()

	select {
	case loc := <-wait:
		return loc, nil
	case <-ctx.Done():
		b.dropWaiter(wait)
		return domain.Location{}, ErrNoFix
	}
}

func (b *Bridge) dropWaiter(wait chan domain.Location) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, w := range b.waiters {
		if w == wait {
			b.waiters = append(b.waiters[:i], b.waiters[i+1:]...)
			return
		}
	}
}

// WatchFix registers a continuous sample callback.
func (b *Bridge) WatchFix(onSample func(domain.Location), onError func(error)) (domain.WatchID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextWatch++
	id := b.nextWatch
	b.watchers[id] = onSample
	return id, nil
}

// ClearWatch removes a watcher. Unknown ids are ignored.
func (b *Bridge) ClearWatch(id domain.WatchID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.watchers, id)
}

// Level implements BatteryReader.
func (b *Bridge) Level() (float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.battery, b.hasBattery
}
