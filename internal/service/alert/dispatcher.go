package alert

import (
	"fmt"
	"time"

	"github.com/Maycon-Saviole/chega2/internal/domain"
)

// Channel identifiers recorded in alert attempts.
const (
	ChannelSMS       = "sms"
	ChannelPush      = "push"
	ChannelDial      = "dial"
	ChannelBroadcast = "broadcast"
)

// Dispatcher fans one alert out to every enabled channel. Channels are
// isolated: one failing (or panicking) channel never blocks the others,
// and every attempt is recorded with its outcome instead of surfacing
// errors to the caller.
type Dispatcher struct {
	channels domain.AlertChannels
	sink     domain.EventSink
}

func NewDispatcher(channels domain.AlertChannels, sink domain.EventSink) *Dispatcher {
	return &Dispatcher{channels: channels, sink: sink}
}

// SendAll runs the full channel set for an emergency alert, honoring the
// profile's settings. Calling it again for the same session with a fresh
// location is a valid additional alert; attempts accumulate, they are
// never replaced.
func (d *Dispatcher) SendAll(profile domain.UserProfile, loc domain.Location, message string) []domain.AlertAttempt {
	var attempts []domain.AlertAttempt

	if profile.Settings.AutoSMS {
		for _, contact := range profile.ActiveContacts() {
			c := contact
			attempts = append(attempts, attempt(ChannelSMS, c.Name, func() error {
				return d.channels.ShareOrSMS(c, message)
			}))
		}
	}

	if profile.Settings.NotifyContacts {
		attempts = append(attempts, attempt(ChannelPush, "", func() error {
			return d.channels.ShowNotification(
				"🚨 Alerta CHEGA! Enviado",
				"Seus contatos foram notificados",
				map[string]string{"url": MapsLink(loc)},
			)
		}))
	}

	if profile.Settings.CallEmergency {
		number := profile.Settings.EmergencyNumber
		if number == "" {
			number = "190"
		}
		attempts = append(attempts, attempt(ChannelDial, "", func() error {
			return d.channels.Dial(number)
		}))
	}

	if profile.Settings.BroadcastNearby {
		attempts = append(attempts, attempt(ChannelBroadcast, "", func() error {
			return d.channels.BroadcastNearby(domain.NearbyAlert{
				Latitude:  loc.Latitude,
				Longitude: loc.Longitude,
				NeedsHelp: true,
				Timestamp: time.Now(),
			})
		}))
	}

	if d.sink != nil {
		d.sink.Emit(domain.EventAlertsSent, attempts)
	}
	return attempts
}

// SendToContacts delivers one message to a specific contact list through the
// share/SMS channel. Used for trip notifications, location updates and the
// all-clear message.
func (d *Dispatcher) SendToContacts(contacts []domain.Contact, message string) []domain.AlertAttempt {
	var attempts []domain.AlertAttempt
	for _, contact := range contacts {
		c := contact
		attempts = append(attempts, attempt(ChannelSMS, c.Name, func() error {
			return d.channels.ShareOrSMS(c, message)
		}))
	}
	return attempts
}

// attempt runs one channel call in isolation. A panic inside a channel
// implementation is recorded as a failed attempt like any other error.
func attempt(channel, contact string, fn func() error) (a domain.AlertAttempt) {
	a = domain.AlertAttempt{Channel: channel, Contact: contact, SentAt: time.Now(), Outcome: domain.OutcomeSent}
	defer func() {
		if r := recover(); r != nil {
			a.Outcome = domain.OutcomeFailed
			a.Detail = fmt.Sprintf("panic: %v", r)
		}
	}()
	if err := fn(); err != nil {
		a.Outcome = domain.OutcomeFailed
		a.Detail = err.Error()
	}
	return a
}
