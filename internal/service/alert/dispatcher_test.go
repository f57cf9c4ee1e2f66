package alert

import (
	"errors"
	"testing"

	"github.com/Maycon-Saviole/chega2/internal/domain"
)

type fakeChannels struct {
	smsTo       []string
	smsErrFor   string
	smsPanicFor string
	notified    int
	dialed      []string
	broadcasts  []domain.NearbyAlert
	notifyErr   error
}

func (f *fakeChannels) ShareOrSMS(c domain.Contact, message string) error {
	if c.Name == f.smsPanicFor {
		panic("share sheet rejected")
	}
	f.smsTo = append(f.smsTo, c.Name)
	if c.Name == f.smsErrFor {
		return errors.New("sms intent failed")
	}
	return nil
}

func (f *fakeChannels) ShowNotification(title, body string, data map[string]string) error {
	f.notified++
	return f.notifyErr
}

func (f *fakeChannels) Dial(number string) error {
	f.dialed = append(f.dialed, number)
	return nil
}

func (f *fakeChannels) BroadcastNearby(a domain.NearbyAlert) error {
	f.broadcasts = append(f.broadcasts, a)
	return nil
}

func fullProfile() domain.UserProfile {
	return domain.UserProfile{
		Name:  "Ana",
		Phone: "+5511999990000",
		Contacts: []domain.Contact{
			{Name: "Maria", Phone: "+551", Active: true},
			{Name: "Clara", Phone: "+552", Active: true},
			{Name: "João", Phone: "+553", Active: false},
		},
		Settings: domain.Settings{
			AutoSMS:         true,
			NotifyContacts:  true,
			CallEmergency:   true,
			BroadcastNearby: true,
		},
	}
}

func TestSendAllRunsEveryEnabledChannel(t *testing.T) {
	ch := &fakeChannels{}
	d := NewDispatcher(ch, nil)
	attempts := d.SendAll(fullProfile(), domain.Location{Latitude: 1, Longitude: 1}, "ajuda")

	// 2 active contacts + push + dial + broadcast
	if len(attempts) != 5 {
		t.Fatalf("expected 5 attempts, got %d", len(attempts))
	}
	if len(ch.smsTo) != 2 {
		t.Fatalf("inactive contact must be skipped: %v", ch.smsTo)
	}
	if ch.notified != 1 || len(ch.broadcasts) != 1 {
		t.Fatalf("missing channel calls: notified=%d broadcasts=%d", ch.notified, len(ch.broadcasts))
	}
	if len(ch.dialed) != 1 || ch.dialed[0] != "190" {
		t.Fatalf("expected default emergency number 190, got %v", ch.dialed)
	}
}

func TestChannelFailureIsIsolated(t *testing.T) {
	ch := &fakeChannels{smsErrFor: "Maria"}
	d := NewDispatcher(ch, nil)
	p := fullProfile()
	p.Settings = domain.Settings{AutoSMS: true}
	p.Contacts = append(p.Contacts, domain.Contact{Name: "Rita", Phone: "+554", Active: true})

	attempts := d.SendAll(p, domain.Location{}, "ajuda")

	if len(attempts) != 3 {
		t.Fatalf("all contacts must be attempted, got %d", len(attempts))
	}
	var failed, sent int
	for _, a := range attempts {
		switch a.Outcome {
		case domain.OutcomeFailed:
			failed++
		case domain.OutcomeSent:
			sent++
		}
	}
	if failed != 1 || sent != 2 {
		t.Fatalf("outcomes wrong: failed=%d sent=%d", failed, sent)
	}
}

func TestChannelPanicIsIsolated(t *testing.T) {
	ch := &fakeChannels{smsPanicFor: "Clara"}
	d := NewDispatcher(ch, nil)
	p := fullProfile()
	p.Settings = domain.Settings{AutoSMS: true}

	attempts := d.SendAll(p, domain.Location{}, "ajuda")

	if len(attempts) != 2 {
		t.Fatalf("panicking channel must not abort dispatch, got %d attempts", len(attempts))
	}
	if attempts[1].Outcome != domain.OutcomeFailed {
		t.Fatalf("panic should be recorded as failed: %+v", attempts[1])
	}
	if ch.smsTo[0] != "Maria" {
		t.Fatalf("first contact should have been reached: %v", ch.smsTo)
	}
}

func TestCustomEmergencyNumber(t *testing.T) {
	ch := &fakeChannels{}
	d := NewDispatcher(ch, nil)
	p := fullProfile()
	p.Settings = domain.Settings{CallEmergency: true, EmergencyNumber: "112"}
	d.SendAll(p, domain.Location{}, "ajuda")
	if len(ch.dialed) != 1 || ch.dialed[0] != "112" {
		t.Fatalf("expected configured number, got %v", ch.dialed)
	}
}

func TestSendToContacts(t *testing.T) {
	ch := &fakeChannels{}
	d := NewDispatcher(ch, nil)
	attempts := d.SendToContacts([]domain.Contact{{Name: "Maria"}, {Name: "Rita"}}, "cheguei bem")
	if len(attempts) != 2 || len(ch.smsTo) != 2 {
		t.Fatalf("expected 2 deliveries, got attempts=%d sms=%d", len(attempts), len(ch.smsTo))
	}
}
