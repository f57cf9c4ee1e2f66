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

package domain

import "context"

// WatchID identifies one live location watch.
type WatchID int64

// LocationProvider abstracts device location acquisition.
// Decoupled: it doesn't matter if fixes come from a GPS bridge,
// a platform API, or the simulator.
type LocationProvider interface {
	// CurrentFix returns a single fix, honoring ctx cancellation/deadline.
	CurrentFix(ctx context.Context) (Location, error)

	// WatchFix starts a continuous watch. Samples arrive on onSample until
	// ClearWatch is called with the returned id.
	WatchFix(onSample func(Location), onError func(error)) (WatchID, error)

	// ClearWatch cancels a watch. Safe to call more than once.
	ClearWatch(id WatchID)
}

// AlertChannels groups the independent alert-delivery mechanisms.
// Each call may fail without affecting the others; the dispatcher
// records outcomes and never propagates channel errors upward.
type AlertChannels interface {
	// ShareOrSMS delivers a message to one contact via the share sheet
	// or an SMS deep-link.
	ShareOrSMS(contact Contact, message string) error

	// ShowNotification posts a local notification to the user's own device.
	ShowNotification(title, body string, data map[string]string) error

	// Dial opens a phone call to the given number.
	Dial(number string) error

	// BroadcastNearby announces an alert to nearby peers.
	BroadcastNearby(alert NearbyAlert) error
}

// Effects drives the sensory side of an emergency. Each acquisition is
// scoped: whatever was started must be released on session teardown.
type Effects interface {
	Vibrate(patternMs []int) error
	PlaySiren() error
	StopSiren()
	AcquireScreenLock() error
	ReleaseScreenLock()
}

// BatteryReader reports the device battery level in [0,1].
// The second return is false when no battery information is available.
type BatteryReader interface {
	Level() (float64, bool)
}

// Store is the persistence boundary. Histories are bounded: appends beyond
// the cap trim the oldest entries.
type Store interface {
	Profile() (UserProfile, error)
	UpdateProfile(p UserProfile) error

	CurrentTrip() (*Trip, error)
	SaveCurrentTrip(t *Trip) error
	ClearCurrentTrip() error

	AppendTripHistory(t *Trip) error
	TripHistory(limit int) ([]Trip, error)

	AppendEmergencyHistory(r EmergencyRecord) error
	EmergencyHistory(limit int) ([]EmergencyRecord, error)
}

// EventSink receives state-change notifications for the presentation layer.
// Services emit through it instead of touching the platform event system.
type EventSink interface {
	Emit(event string, payload ...interface{})
}
