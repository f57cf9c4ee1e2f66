package emergency

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Maycon-Saviole/chega2/internal/domain"
	"github.com/Maycon-Saviole/chega2/internal/service/alert"
	"github.com/Maycon-Saviole/chega2/internal/service/geo"

	"github.com/google/uuid"
)

// ErrNotConfirmed is returned when Cancel is called without the explicit
// confirmation step ("Tem certeza que está segura?").
var ErrNotConfirmed = errors.New("cancellation requires confirmation")

// Session is one emergency episode from trigger to resolution.
type Session struct {
	ID        string                `json:"id"`
	Source    domain.TriggerSource  `json:"source"`
	StartedAt time.Time             `json:"started_at"`
	State     domain.SessionState   `json:"state"`
	Location  domain.Location       `json:"location"`
	Alerts    []domain.AlertAttempt `json:"alerts"`
}

// Manager owns the emergency session lifecycle. At most one session is
// active at a time; the guard runs synchronously before any asynchronous
// work so racing detector callbacks cannot start two sessions.
type Manager struct {
	mu sync.Mutex

	locator    *geo.Locator
	dispatcher *alert.Dispatcher
	effects    domain.Effects
	store      domain.Store
	sink       domain.EventSink

	current *Session
}

func NewManager(locator *geo.Locator, dispatcher *alert.Dispatcher, effects domain.Effects, store domain.Store, sink domain.EventSink) *Manager {
	return &Manager{
		locator:    locator,
		dispatcher: dispatcher,
		effects:    effects,
		store:      store,
		sink:       sink,
	}
}

// Current returns a snapshot of the live session, or nil.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	cp := *m.current
	cp.Alerts = append([]domain.AlertAttempt(nil), m.current.Alerts...)
	return &cp
}

// Start begins an emergency episode: effects on, quick location fix, alerts
// out, then Active. A second trigger while a session is live is a no-op and
// returns the existing session.
func (m *Manager) Start(ctx context.Context, source domain.TriggerSource) *Session {
	m.mu.Lock()
	if m.current != nil && (m.current.State == domain.SessionTriggering || m.current.State == domain.SessionActive) {
		existing := m.current
		m.mu.Unlock()
		return existing
	}
	s := &Session{
		ID:        uuid.NewString(),
		Source:    source,
		StartedAt: time.Now(),
		State:     domain.SessionTriggering,
	}
	m.current = s
	m.mu.Unlock()

	m.emitState(s)

	profile, err := m.store.Profile()
	if err != nil {
		// Degraded: alerts still go out with whatever the zero profile allows.
		m.emitError(fmt.Errorf("loading profile: %w", err))
	}

	m.startEffects(profile.Settings)

	loc := m.locator.QuickFix(ctx)
	msg := alert.FormatMessage(profile.EmergencyMessage, profile, loc, time.Now())
	attempts := m.dispatcher.SendAll(profile, loc, msg)

	m.mu.Lock()
	s.Location = loc
	s.Alerts = append(s.Alerts, attempts...)
	s.State = domain.SessionActive
	m.mu.Unlock()

	m.emitState(s)
	return s
}

// RefreshLocation re-acquires a best fix and, when the share-location
// setting is on, pushes an update to the contacts flagged for trip sharing.
// No-op outside Active.
func (m *Manager) RefreshLocation(ctx context.Context) {
	m.mu.Lock()
	s := m.current
	if s == nil || s.State != domain.SessionActive {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	loc := m.locator.BestFix(ctx)

	profile, err := m.store.Profile()
	if err != nil {
		m.emitError(err)
	}
	var attempts []domain.AlertAttempt
	if profile.Settings.ShareLocation {
		msg := fmt.Sprintf("📍 ATUALIZAÇÃO: %s está agora em: %s", profile.Name, alert.MapsLink(loc))
		attempts = m.dispatcher.SendToContacts(profile.TripWatchers(), msg)
	}

	m.mu.Lock()
	if m.current == s && s.State == domain.SessionActive {
		s.Location = loc
		s.Alerts = append(s.Alerts, attempts...)
	}
	m.mu.Unlock()
	m.emitState(s)
}

// SendExtraAlert dispatches an additional alert with the current location.
// No-op outside Active; state does not change.
func (m *Manager) SendExtraAlert() {
	m.mu.Lock()
	s := m.current
	if s == nil || s.State != domain.SessionActive {
		m.mu.Unlock()
		return
	}
	loc := s.Location
	m.mu.Unlock()

	profile, err := m.store.Profile()
	if err != nil {
		m.emitError(err)
	}
	msg := fmt.Sprintf("🚨 ALERTA EXTRA: %s ainda precisa de ajuda! Local atual: %s", profile.Name, alert.MapsLink(loc))
	attempts := m.dispatcher.SendToContacts(profile.ActiveContacts(), msg)

	m.mu.Lock()
	if m.current == s {
		s.Alerts = append(s.Alerts, attempts...)
	}
	m.mu.Unlock()
	m.emitState(s)
}

// Cancel closes the session after user confirmation: effects off, all-clear
// out, record archived. Cancelling a non-active session is a no-op.
func (m *Manager) Cancel(confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	return m.close(domain.SessionCancelled)
}

// Expire closes the session under an external timeout policy. The core
// never imposes this on its own.
func (m *Manager) Expire(sessionID string) error {
	m.mu.Lock()
	if m.current == nil || m.current.ID != sessionID {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()
	return m.close(domain.SessionExpired)
}

func (m *Manager) close(final domain.SessionState) error {
	m.mu.Lock()
	s := m.current
	if s == nil || s.State != domain.SessionActive {
		m.mu.Unlock()
		return nil
	}
	s.State = final
	m.current = nil
	m.mu.Unlock()

	// Effects teardown is guaranteed regardless of how the remaining
	// notifications and persistence turn out.
	defer m.stopEffects()

	profile, profErr := m.store.Profile()

	if final == domain.SessionCancelled {
		msg := fmt.Sprintf("✅ TUDO BEM: %s cancelou o alerta de emergência. Ela está segura agora.", profile.Name)
		attempts := m.dispatcher.SendToContacts(profile.Contacts, msg)
		s.Alerts = append(s.Alerts, attempts...)
	}

	m.emitState(s)

	ended := time.Now()
	record := domain.EmergencyRecord{
		ID:          s.ID,
		Source:      s.Source,
		StartedAt:   s.StartedAt,
		EndedAt:     ended,
		DurationSec: ended.Sub(s.StartedAt).Seconds(),
		Location:    s.Location,
		AlertsSent:  len(s.Alerts),
		Cancelled:   final == domain.SessionCancelled,
	}
	if err := m.store.AppendEmergencyHistory(record); err != nil {
		// In-memory state already settled; persistence failure is
		// surfaced but recoverable.
		m.emitError(err)
		return err
	}
	return profErr
}

// startEffects activates each sensory effect per settings. Every effect is
// individually optional and failure-tolerant: a blocked audio output must
// not keep the vibration or the alerts from going out.
func (m *Manager) startEffects(settings domain.Settings) {
	if settings.Vibrate {
		if err := m.effects.Vibrate([]int{200, 100, 200, 100, 200, 100, 500}); err != nil {
			m.emitLog("vibração indisponível")
		}
	}
	if settings.Sound {
		if err := m.effects.PlaySiren(); err != nil {
			m.emitLog("som bloqueado")
		}
	}
	if settings.ScreenLock {
		if err := m.effects.AcquireScreenLock(); err != nil {
			m.emitLog("bloqueio de tela indisponível")
		}
	}
}

// stopEffects releases everything an emergency may have acquired. Never
// gated on settings: they can change while the session is live, and the
// profile may not even load at close time. Both calls are no-ops when the
// effect was never started.
func (m *Manager) stopEffects() {
	m.effects.StopSiren()
	m.effects.ReleaseScreenLock()
}

func (m *Manager) emitState(s *Session) {
	if m.sink != nil {
		m.sink.Emit(domain.EventSessionState, s)
	}
}

func (m *Manager) emitError(err error) {
	if m.sink != nil {
		m.sink.Emit(domain.EventError, err.Error())
	}
}

func (m *Manager) emitLog(msg string) {
	if m.sink != nil {
		m.sink.Emit(domain.EventLog, msg)
	}
}
