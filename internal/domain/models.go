package domain

import "time"

// TriggerSource identifies which input pattern started an emergency.
type TriggerSource string

const (
	TriggerButton TriggerSource = "button"
	TriggerShake  TriggerSource = "shake"
	TriggerManual TriggerSource = "manual"
)

// SessionState is the lifecycle state of an emergency session.
type SessionState string

const (
	SessionTriggering SessionState = "triggering"
	SessionActive     SessionState = "active"
	SessionCancelled  SessionState = "cancelled"
	SessionExpired    SessionState = "expired"
)

// TripState is the lifecycle state of a monitored trip.
type TripState string

const (
	TripActive TripState = "active"
	TripPaused TripState = "paused"
	TripEnded  TripState = "ended"
)

// EndReason records why a trip ended.
type EndReason string

const (
	EndArrived EndReason = "arrived"
	EndManual  EndReason = "manual"
	EndTimeout EndReason = "timeout"
)

// Alert outcome values recorded per dispatch attempt.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// Location is an immutable position snapshot. A zeroed Location (no
// coordinates, zero accuracy) is the sentinel used when acquisition fails:
// emergency flows proceed with it rather than aborting.
type Location struct {
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lng"`
	AccuracyM  float64   `json:"accuracy"`
	SpeedMs    float64   `json:"speed,omitempty"`
	Heading    float64   `json:"heading,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}

// HasFix reports whether the location carries real coordinates.
func (l Location) HasFix() bool {
	return l.Latitude != 0 || l.Longitude != 0
}

// Contact is one emergency contact. Active gates emergency alerts,
// ShareTrip gates trip watcher notifications and realtime updates.
type Contact struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Active    bool   `json:"active"`
	ShareTrip bool   `json:"share_trip"`
}

// Settings holds the per-user toggles read by the alert dispatcher and the
// emergency session. Always passed explicitly, never read from ambient state.
type Settings struct {
	Vibrate         bool   `json:"vibrate"`
	Sound           bool   `json:"sound"`
	ScreenLock      bool   `json:"screen_lock"`
	AutoSMS         bool   `json:"auto_sms"`
	NotifyContacts  bool   `json:"notify_contacts"`
	ShareLocation   bool   `json:"share_location"`
	CallEmergency   bool   `json:"call_emergency"`
	BroadcastNearby bool   `json:"broadcast_nearby"`
	EmergencyNumber string `json:"emergency_number"`
}

// UserProfile is the single persisted user record. The core reads it and
// never mutates contacts; contact management happens outside the core.
type UserProfile struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone"`
	EmergencyMessage string    `json:"emergency_message"`
	Contacts         []Contact `json:"contacts" gorm:"serializer:json"`
	Settings         Settings  `json:"settings" gorm:"serializer:json"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ActiveContacts returns the contacts flagged for emergency alerts.
func (p UserProfile) ActiveContacts() []Contact {
	var out []Contact
	for _, c := range p.Contacts {
		if c.Active {
			out = append(out, c)
		}
	}
	return out
}

// TripWatchers returns the contacts that follow trips.
func (p UserProfile) TripWatchers() []Contact {
	var out []Contact
	for _, c := range p.Contacts {
		if c.ShareTrip {
			out = append(out, c)
		}
	}
	return out
}

// Checkpoint is one timestamped location sample within a trip.
// Append-only once written.
type Checkpoint struct {
	Location     Location  `json:"location"`
	CapturedAt   time.Time `json:"captured_at"`
	BatteryLevel float64   `json:"battery_level"`
	HasBattery   bool      `json:"has_battery"`
}

// Trip is a monitored journey. At most one trip is Active per device;
// checkpoints are strictly increasing in capture time.
type Trip struct {
	ID             string       `json:"id" gorm:"primaryKey"`
	StartedAt      time.Time    `json:"started_at"`
	StartLocation  Location     `json:"start_location" gorm:"serializer:json"`
	Destination    *Location    `json:"destination,omitempty" gorm:"serializer:json"`
	MaxDurationMin int          `json:"max_duration_min"`
	State          TripState    `json:"state"`
	EndReason      EndReason    `json:"end_reason,omitempty"`
	EndedAt        *time.Time   `json:"ended_at,omitempty"`
	Checkpoints    []Checkpoint `json:"checkpoints" gorm:"serializer:json"`
	SharedWith     []Contact    `json:"shared_with" gorm:"serializer:json"`
	TotalDistanceM float64      `json:"total_distance_m"`
	CreatedAt      time.Time    `json:"created_at"`
}

// EstimatedArrival is the start time plus the declared maximum duration.
func (t Trip) EstimatedArrival() time.Time {
	return t.StartedAt.Add(time.Duration(t.MaxDurationMin) * time.Minute)
}

// LastCheckpoint returns the newest checkpoint, if any.
func (t Trip) LastCheckpoint() (Checkpoint, bool) {
	if len(t.Checkpoints) == 0 {
		return Checkpoint{}, false
	}
	return t.Checkpoints[len(t.Checkpoints)-1], true
}

// AlertAttempt records one channel dispatch and its outcome.
type AlertAttempt struct {
	Channel string    `json:"channel"`
	Contact string    `json:"contact,omitempty"`
	SentAt  time.Time `json:"sent_at"`
	Outcome string    `json:"outcome"`
	Detail  string    `json:"detail,omitempty"`
}

// EmergencyRecord is the closed record of one emergency episode,
// appended to a bounded history.
type EmergencyRecord struct {
	ID          string        `json:"id" gorm:"primaryKey"`
	Source      TriggerSource `json:"source"`
	StartedAt   time.Time     `json:"started_at"`
	EndedAt     time.Time     `json:"ended_at"`
	DurationSec float64       `json:"duration_sec"`
	Location    Location      `json:"location" gorm:"serializer:json"`
	AlertsSent  int           `json:"alerts_sent"`
	Cancelled   bool          `json:"cancelled"`
	CreatedAt   time.Time     `json:"created_at"`
}

// NearbyAlert is the compact payload broadcast to nearby peers.
type NearbyAlert struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	NeedsHelp bool      `json:"needs_help"`
	Timestamp time.Time `json:"timestamp"`
}

// Frontend event names emitted through the EventSink.
const (
	EventSessionState     = "session_state"
	EventTripState        = "trip_state"
	EventTripCheckpoint   = "trip_checkpoint"
	EventAlertsSent       = "alerts_sent"
	EventQuickMenu        = "quick_menu"
	EventQuickMenuExpired = "quick_menu_expired"
	EventSafetyWarning    = "safety_warning"
	EventNearbyAlert      = "nearby_alert"
	EventError            = "error"
	EventLog              = "log"
)
