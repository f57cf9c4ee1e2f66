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

package trip

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Maycon-Saviole/chega2/internal/domain"
	"github.com/Maycon-Saviole/chega2/internal/service/alert"
	"github.com/Maycon-Saviole/chega2/internal/service/geo"

	"github.com/google/uuid"
)

// ErrTripActive is returned when Start is called while a trip is already
// being monitored and the caller did not ask to replace it.
var ErrTripActive = errors.New("a trip is already active")

// Monitor samples the user's position during a trip, persists checkpoints,
// and raises safety warnings (arrival overrun, prolonged stillness, low
// battery). At most one trip is monitored at a time.
type Monitor struct {
	mu sync.Mutex

	locator    *geo.Locator
	dispatcher *alert.Dispatcher
	battery    domain.BatteryReader
	store      domain.Store
	sink       domain.EventSink

	SampleInterval    time.Duration
	SafetyInterval    time.Duration
	SaveEvery         int
	ArrivalRadiusM    float64
	StationaryGap     time.Duration
	StationaryRadiusM float64
	StationaryGrace   time.Duration
	BatteryWarnLevel  float64
	BatteryAlertLevel float64

	now func() time.Time

	current        *domain.Trip
	starting       bool
	cancel         context.CancelFunc
	unsaved        int
	overrunWarned  bool
	batteryWarned  bool
	batteryAlerted bool
}

func NewMonitor(locator *geo.Locator, dispatcher *alert.Dispatcher, battery domain.BatteryReader, store domain.Store, sink domain.EventSink) *Monitor {
	return &Monitor{
		locator:    locator,
		dispatcher: dispatcher,
		battery:    battery,
		store:      store,
		sink:       sink,

		SampleInterval:    30 * time.Second,
		SafetyInterval:    60 * time.Second,
		SaveEvery:         5,
		ArrivalRadiusM:    100,
		StationaryGap:     5 * time.Minute,
		StationaryRadiusM: 10,
		StationaryGrace:   5 * time.Minute,
		BatteryWarnLevel:  0.20,
		BatteryAlertLevel: 0.10,

		now: time.Now,
	}
}

// Current returns a snapshot of the monitored trip, or nil.
func (m *Monitor) Current() *domain.Trip {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	cp := *m.current
	cp.Checkpoints = append([]domain.Checkpoint(nil), m.current.Checkpoints...)
	return &cp
}

// Start begins monitoring a new trip. With replace set, any trip already in
// flight is ended manually first; otherwise ErrTripActive is returned so the
// caller can ask the user.
func (m *Monitor) Start(ctx context.Context, destination *domain.Location, maxDurationMin int, replace bool) (*domain.Trip, error) {
	m.mu.Lock()
	if m.starting {
		m.mu.Unlock()
		return nil, ErrTripActive
	}
	active := m.current != nil
	if active && !replace {
		m.mu.Unlock()
		return nil, ErrTripActive
	}
	m.starting = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.starting = false
		m.mu.Unlock()
	}()

	if active {
		if err := m.End(domain.EndManual); err != nil {
			return nil, err
		}
	}

	start := m.locator.BestFix(ctx)
	profile, err := m.store.Profile()
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	t := &domain.Trip{
		ID:             uuid.NewString(),
		StartedAt:      m.now(),
		StartLocation:  start,
		Destination:    destination,
		MaxDurationMin: maxDurationMin,
		State:          domain.TripActive,
		SharedWith:     profile.TripWatchers(),
	}
	t.Checkpoints = append(t.Checkpoints, m.checkpoint(start))

	if err := m.store.SaveCurrentTrip(t); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.current = t
	m.unsaved = 0
	m.overrunWarned = false
	m.batteryWarned = false
	m.batteryAlerted = false
	m.mu.Unlock()

	if len(t.SharedWith) > 0 {
		msg := fmt.Sprintf(
			"🚶 %s iniciou um trajeto monitorado. Previsão de chegada: %s. Acompanhe: %s",
			profile.Name, t.EstimatedArrival().Format("15:04"), alert.MapsLink(start),
		)
		m.dispatcher.SendToContacts(t.SharedWith, msg)
	}

	m.startLoop()
	m.emitState(t)
	return m.Current(), nil
}

// Restore resumes monitoring of a trip persisted by a previous run. No-op
// when no trip was in flight.
func (m *Monitor) Restore() error {
	t, err := m.store.CurrentTrip()
	if err != nil || t == nil {
		return err
	}
	m.mu.Lock()
	m.current = t
	m.unsaved = 0
	m.mu.Unlock()

	if t.State == domain.TripActive {
		m.startLoop()
	}
	m.emitState(t)
	return nil
}

// Pause stops sampling without ending the trip.
func (m *Monitor) Pause() error {
	m.mu.Lock()
	t := m.current
	if t == nil || t.State != domain.TripActive {
		m.mu.Unlock()
		return nil
	}
	t.State = domain.TripPaused
	m.stopLoopLocked()
	m.mu.Unlock()

	if err := m.store.SaveCurrentTrip(t); err != nil {
		return err
	}
	m.emitState(t)
	return nil
}

// Resume restarts sampling on a paused trip.
func (m *Monitor) Resume() error {
	m.mu.Lock()
	t := m.current
	if t == nil || t.State != domain.TripPaused {
		m.mu.Unlock()
		return nil
	}
	t.State = domain.TripActive
	m.mu.Unlock()

	if err := m.store.SaveCurrentTrip(t); err != nil {
		return err
	}
	m.startLoop()
	m.emitState(t)
	return nil
}

// End closes the trip: sampler off, totals computed, watchers told on
// arrival, record archived.
func (m *Monitor) End(reason domain.EndReason) error {
	m.mu.Lock()
	t := m.current
	if t == nil {
		m.mu.Unlock()
		return nil
	}
	m.current = nil
	m.stopLoopLocked()
	ended := m.now()
	t.State = domain.TripEnded
	t.EndReason = reason
	t.EndedAt = &ended
	t.TotalDistanceM = geo.PathDistanceMeters(t.Checkpoints)
	m.mu.Unlock()

	if reason == domain.EndArrived && len(t.SharedWith) > 0 {
		profile, err := m.store.Profile()
		if err == nil {
			msg := fmt.Sprintf("✅ CHEGUEI BEM: %s chegou ao destino com segurança.", profile.Name)
			m.dispatcher.SendToContacts(t.SharedWith, msg)
		}
	}

	if err := m.store.AppendTripHistory(t); err != nil {
		m.emitError(err)
		return err
	}
	if err := m.store.ClearCurrentTrip(); err != nil {
		m.emitError(err)
	}
	m.emitState(t)
	return nil
}

// startLoop launches the sampling goroutine. Exactly one loop is live per
// monitor; callers must have stopped any previous one.
func (m *Monitor) startLoop() {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.mu.Unlock()

	go m.run(ctx)
}

func (m *Monitor) stopLoopLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Monitor) run(ctx context.Context) {
	sample := time.NewTicker(m.SampleInterval)
	defer sample.Stop()
	safety := time.NewTicker(m.SafetyInterval)
	defer safety.Stop()

	// Ticks are handled sequentially on this goroutine; a slow fix never
	// overlaps with a safety check.
	for {
		select {
		case <-ctx.Done():
			return
		case <-sample.C:
			m.sampleTick(ctx)
		case <-safety.C:
			m.safetyTick()
		}
	}
}

// sampleTick appends one checkpoint and evaluates arrival and overrun.
func (m *Monitor) sampleTick(ctx context.Context) {
	loc := m.locator.QuickFix(ctx)
	if !loc.HasFix() {
		return
	}

	m.mu.Lock()
	t := m.current
	if t == nil || t.State != domain.TripActive {
		m.mu.Unlock()
		return
	}
	cp := m.checkpoint(loc)
	t.Checkpoints = append(t.Checkpoints, cp)
	m.unsaved++
	save := m.unsaved >= m.SaveEvery
	if save {
		m.unsaved = 0
	}
	arrived := t.Destination != nil && geo.DistanceMeters(loc, *t.Destination) < m.ArrivalRadiusM
	overrun := !arrived && !m.overrunWarned && t.MaxDurationMin > 0 && m.now().After(t.EstimatedArrival())
	if overrun {
		m.overrunWarned = true
	}
	m.mu.Unlock()

	if m.sink != nil {
		m.sink.Emit(domain.EventTripCheckpoint, cp)
	}
	if save {
		if err := m.store.SaveCurrentTrip(t); err != nil {
			m.emitError(err)
		}
	}

	if arrived {
		if err := m.End(domain.EndArrived); err != nil {
			m.emitError(err)
		}
		return
	}

	if overrun {
		m.warnOverrun(t)
	}
}

// warnOverrun tells the watchers once that the trip is taking longer than
// declared. The trip keeps running; only End closes it.
func (m *Monitor) warnOverrun(t *domain.Trip) {
	m.emitWarning("trip_overrun", "Trajeto demorando mais que o previsto")
	if len(t.SharedWith) == 0 {
		return
	}
	profile, err := m.store.Profile()
	if err != nil {
		m.emitError(err)
		return
	}
	last, _ := t.LastCheckpoint()
	msg := fmt.Sprintf(
		"⏰ ATENÇÃO: %s está em trânsito há mais tempo que o esperado. Última posição: %s",
		profile.Name, alert.MapsLink(last.Location),
	)
	m.dispatcher.SendToContacts(t.SharedWith, msg)
}

// safetyTick evaluates prolonged stillness and battery level.
func (m *Monitor) safetyTick() {
	m.mu.Lock()
	t := m.current
	if t == nil || t.State != domain.TripActive {
		m.mu.Unlock()
		return
	}
	tripID := t.ID
	stationary := m.stationaryLocked(t)
	m.mu.Unlock()

	if stationary {
		m.emitWarning("stationary", "Você está parada há muito tempo. Está tudo bem?")
		// Grace period before involving the contacts: the user gets a
		// chance to answer the local prompt first.
		time.AfterFunc(m.StationaryGrace, func() {
			m.escalateStationary(tripID)
		})
	}

	m.checkBattery(t)
}

// stationaryLocked reports whether every checkpoint inside the gap window
// stayed within the stationary radius. Requires at least one sample older
// than the window so a fresh trip never counts as stationary.
func (m *Monitor) stationaryLocked(t *domain.Trip) bool {
	last, ok := t.LastCheckpoint()
	if !ok {
		return false
	}
	cutoff := m.now().Add(-m.StationaryGap)
	covered := false
	for i := len(t.Checkpoints) - 1; i >= 0; i-- {
		cp := t.Checkpoints[i]
		if geo.DistanceMeters(cp.Location, last.Location) > m.StationaryRadiusM {
			return false
		}
		if !cp.CapturedAt.After(cutoff) {
			covered = true
			break
		}
	}
	return covered
}

// escalateStationary notifies the watchers after the grace period, but only
// if the same trip is still active and the user is still not moving.
func (m *Monitor) escalateStationary(tripID string) {
	m.mu.Lock()
	t := m.current
	if t == nil || t.ID != tripID || t.State != domain.TripActive || !m.stationaryLocked(t) {
		m.mu.Unlock()
		return
	}
	last, _ := t.LastCheckpoint()
	watchers := t.SharedWith
	m.mu.Unlock()

	if len(watchers) == 0 {
		return
	}
	profile, err := m.store.Profile()
	if err != nil {
		m.emitError(err)
		return
	}
	msg := fmt.Sprintf(
		"⚠️ ALERTA: %s está parada no mesmo lugar há vários minutos durante um trajeto monitorado. Última posição: %s",
		profile.Name, alert.MapsLink(last.Location),
	)
	m.dispatcher.SendToContacts(watchers, msg)
}

func (m *Monitor) checkBattery(t *domain.Trip) {
	if m.battery == nil {
		return
	}
	level, ok := m.battery.Level()
	if !ok {
		return
	}

	m.mu.Lock()
	alertNow := level < m.BatteryAlertLevel && !m.batteryAlerted
	warnNow := !alertNow && level < m.BatteryWarnLevel && !m.batteryWarned
	if alertNow {
		m.batteryAlerted = true
		m.batteryWarned = true
	}
	if warnNow {
		m.batteryWarned = true
	}
	watchers := t.SharedWith
	last, _ := t.LastCheckpoint()
	m.mu.Unlock()

	pct := int(math.Round(level * 100))
	if warnNow {
		m.emitWarning("battery_low", fmt.Sprintf("Bateria baixa (%d%%) durante o trajeto", pct))
	}
	if alertNow {
		m.emitWarning("battery_critical", fmt.Sprintf("Bateria crítica (%d%%)", pct))
		if len(watchers) > 0 {
			profile, err := m.store.Profile()
			if err != nil {
				m.emitError(err)
				return
			}
			msg := fmt.Sprintf(
				"🔋 AVISO: o celular de %s está com bateria crítica (%d%%) durante um trajeto monitorado. Última posição: %s",
				profile.Name, pct, alert.MapsLink(last.Location),
			)
			m.dispatcher.SendToContacts(watchers, msg)
		}
	}
}

func (m *Monitor) checkpoint(loc domain.Location) domain.Checkpoint {
	cp := domain.Checkpoint{Location: loc, CapturedAt: m.now()}
	if m.battery != nil {
		if level, ok := m.battery.Level(); ok {
			cp.BatteryLevel = level
			cp.HasBattery = true
		}
	}
	return cp
}

func (m *Monitor) emitState(t *domain.Trip) {
	if m.sink != nil {
		m.sink.Emit(domain.EventTripState, t)
	}
}

func (m *Monitor) emitWarning(kind, message string) {
	if m.sink != nil {
		m.sink.Emit(domain.EventSafetyWarning, map[string]string{"kind": kind, "message": message})
	}
}

func (m *Monitor) emitError(err error) {
	if m.sink != nil {
		m.sink.Emit(domain.EventError, err.Error())
	}
}
