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

package geo

import (
	"context"
	"time"

	"github.com/Maycon-Saviole/chega2/internal/domain"
)

// Locator wraps the device location provider with the accuracy/time
// tradeoffs the emergency and trip flows need. It never returns an error:
// an alert with an approximate or missing location is strictly better
// than no alert at all.
type Locator struct {
	provider domain.LocationProvider

	QuickTimeout       time.Duration
	BestFixTimeout     time.Duration
	BestFixMaxAttempts int
	AccuracyThresholdM float64
}

func NewLocator(provider domain.LocationProvider) *Locator {
	return &Locator{
		provider:           provider,
		QuickTimeout:       10 * time.Second,
		BestFixTimeout:     15 * time.Second,
		BestFixMaxAttempts: 3,
		AccuracyThresholdM: 50,
	}
}

// QuickFix issues a single location request under a short timeout.
// On failure it returns the zeroed sentinel location so callers can proceed.
func (l *Locator) QuickFix(ctx context.Context) domain.Location {
	ctx, cancel := context.WithTimeout(ctx, l.QuickTimeout)
	defer cancel()

	loc, err := l.provider.CurrentFix(ctx)
	if err != nil {
		return domain.Location{CapturedAt: time.Now()}
	}
	if loc.CapturedAt.IsZero() {
		loc.CapturedAt = time.Now()
	}
	return loc
}

// BestFix runs a continuous watch and accepts the first sample below the
// accuracy threshold, or gives up after BestFixMaxAttempts samples or when
// the overall timeout elapses, whichever comes first. The best sample seen
// so far is always kept as fallback, and the watch is cancelled on every
// exit path.
func (l *Locator) BestFix(ctx context.Context) domain.Location {
	samples := make(chan domain.Location, 8)
	id, err := l.provider.WatchFix(func(loc domain.Location) {
		select {
		case samples <- loc:
		default:
		}
	}, func(error) {})
	if err != nil {
		return l.QuickFix(ctx)
	}
	defer l.provider.ClearWatch(id)

	deadline := time.NewTimer(l.BestFixTimeout)
	defer deadline.Stop()

	var best domain.Location
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return l.bestOrSentinel(best)
		case <-deadline.C:
			return l.bestOrSentinel(best)
		case loc := <-samples:
			attempts++
			if loc.CapturedAt.IsZero() {
				loc.CapturedAt = time.Now()
			}
			if !best.HasFix() || (loc.AccuracyM > 0 && loc.AccuracyM < best.AccuracyM) {
				best = loc
			}
			if loc.AccuracyM > 0 && loc.AccuracyM < l.AccuracyThresholdM {
				return loc
			}
			if attempts >= l.BestFixMaxAttempts {
				return l.bestOrSentinel(best)
			}
		}
	}
}

func (l *Locator) bestOrSentinel(best domain.Location) domain.Location {
	if best.HasFix() {
		return best
	}
	return domain.Location{CapturedAt: time.Now()}
}
