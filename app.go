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

package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Maycon-Saviole/chega2/internal/config"
	"github.com/Maycon-Saviole/chega2/internal/domain"
	"github.com/Maycon-Saviole/chega2/internal/service/alert"
	"github.com/Maycon-Saviole/chega2/internal/service/channels"
	"github.com/Maycon-Saviole/chega2/internal/service/device"
	"github.com/Maycon-Saviole/chega2/internal/service/effects"
	"github.com/Maycon-Saviole/chega2/internal/service/emergency"
	"github.com/Maycon-Saviole/chega2/internal/service/export"
	"github.com/Maycon-Saviole/chega2/internal/service/geo"
	"github.com/Maycon-Saviole/chega2/internal/service/nearby"
	"github.com/Maycon-Saviole/chega2/internal/service/signal"
	"github.com/Maycon-Saviole/chega2/internal/service/storage"
	"github.com/Maycon-Saviole/chega2/internal/service/trip"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// nearbyService is the BLE-or-mock broadcast dependency.
type nearbyService interface {
	Broadcast(alert domain.NearbyAlert) error
	StopBroadcast()
	Listen(onAlert func(domain.NearbyAlert)) error
	StopListen()
}

// App is the main application struct exposed to Wails.
// It orchestrates services, session lifecycle, and runtime events.
type App struct {
	ctx context.Context
	cfg config.Config

	detector       *signal.Detector
	locator        *geo.Locator
	dispatcher     *alert.Dispatcher
	sessionManager *emergency.Manager
	tripMonitor    *trip.Monitor
	storageService *storage.Service
	nearbyService  nearbyService
	bridge         *device.Bridge

	quickMenuMu    sync.Mutex
	quickMenuTimer *time.Timer
}

// wailsSink forwards service events to the frontend event bus.
type wailsSink struct {
	app *App
}

func (s *wailsSink) Emit(event string, payload ...interface{}) {
	s.app.emit(event, payload...)
}

func (a *App) emit(event string, payload ...interface{}) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, event, payload...)
}

// NewApp initializes all core services and dependencies.
func NewApp() *App {
	cfg := config.Load()

	store := storage.NewService(cfg.DBPath)

	a := &App{cfg: cfg, storageService: store}
	sink := &wailsSink{app: a}

	a.bridge = device.NewBridge()
	var provider domain.LocationProvider = a.bridge
	var battery domain.BatteryReader = a.bridge
	if cfg.SimulateGPS {
		sim := device.NewSimulator()
		provider = sim
		battery = sim
	}

	if cfg.EnableBLE {
		a.nearbyService = nearby.NewBLEService()
	} else {
		a.nearbyService = nearby.NewMockService()
	}

	var alertChannels domain.AlertChannels
	var fx domain.Effects
	if cfg.MockAlerts {
		alertChannels = channels.NewMockChannels()
		fx = effects.NewMockEffects()
	} else {
		alertChannels = channels.NewDesktopChannels(a.nearbyService)
		fx = effects.NewDesktopEffects(cfg.SirenFile)
	}

	a.detector = signal.NewDetector()
	if cfg.PressWindowMs > 0 {
		a.detector.PressWindow = time.Duration(cfg.PressWindowMs) * time.Millisecond
	}
	if cfg.ShakeThreshold > 0 {
		a.detector.ShakeThreshold = cfg.ShakeThreshold
	}

	if cfg.HistoryCap > 0 {
		store.HistoryCap = cfg.HistoryCap
	}

	a.locator = geo.NewLocator(provider)
	a.dispatcher = alert.NewDispatcher(alertChannels, sink)
	a.sessionManager = emergency.NewManager(a.locator, a.dispatcher, fx, store, sink)

	a.tripMonitor = trip.NewMonitor(a.locator, a.dispatcher, battery, store, sink)
	if cfg.SampleIntervalSec > 0 {
		a.tripMonitor.SampleInterval = time.Duration(cfg.SampleIntervalSec) * time.Second
	}
	if cfg.SafetyIntervalSec > 0 {
		a.tripMonitor.SafetyInterval = time.Duration(cfg.SafetyIntervalSec) * time.Second
	}
	if cfg.StationaryGapSec > 0 {
		a.tripMonitor.StationaryGap = time.Duration(cfg.StationaryGapSec) * time.Second
	}
	if cfg.StationaryRadiusM > 0 {
		a.tripMonitor.StationaryRadiusM = cfg.StationaryRadiusM
	}
	if cfg.BatteryWarnPct > 0 {
		a.tripMonitor.BatteryWarnLevel = float64(cfg.BatteryWarnPct) / 100
	}
	if cfg.BatteryAlertPct > 0 {
		a.tripMonitor.BatteryAlertLevel = float64(cfg.BatteryAlertPct) / 100
	}

	return a
}

// Startup is called by Wails when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	a.detector.OnTrigger(func(t signal.Trigger) {
		go a.startSession(t.Source)
	})
	a.detector.OnShakePrompt(func(at time.Time) {
		a.openQuickMenu()
	})

	// Resume a trip interrupted by a previous run.
	if err := a.tripMonitor.Restore(); err != nil {
		runtime.EventsEmit(a.ctx, domain.EventError, err.Error())
	}

	// Relay alerts from nearby devices to the UI.
	err := a.nearbyService.Listen(func(n domain.NearbyAlert) {
		runtime.EventsEmit(a.ctx, domain.EventNearbyAlert, n)
	})
	if err != nil {
		fmt.Println("[NEARBY] Listen unavailable:", err)
	}
}

// Shutdown is called by Wails when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	fmt.Println("Closing app: stopping broadcast and scan...")
	a.nearbyService.StopBroadcast()
	a.nearbyService.StopListen()
}

func (a *App) startSession(source domain.TriggerSource) {
	s := a.sessionManager.Start(context.Background(), source)

	if a.cfg.EmergencyExpireMin > 0 {
		id := s.ID
		time.AfterFunc(time.Duration(a.cfg.EmergencyExpireMin)*time.Minute, func() {
			a.sessionManager.Expire(id)
		})
	}
}

// openQuickMenu shows the soft confirmation menu after a shake, with an
// automatic dismissal so an unconfirmed shake never lingers. Detector
// callbacks arrive on arbitrary goroutines, so the timer is mutex-guarded.
func (a *App) openQuickMenu() {
	timeout := time.Duration(a.cfg.QuickMenuTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	a.quickMenuMu.Lock()
	if a.quickMenuTimer != nil {
		a.quickMenuTimer.Stop()
	}
	a.quickMenuTimer = time.AfterFunc(timeout, func() {
		a.quickMenuMu.Lock()
		a.quickMenuTimer = nil
		a.quickMenuMu.Unlock()
		a.emit(domain.EventQuickMenuExpired, nil)
	})
	a.quickMenuMu.Unlock()

	a.emit(domain.EventQuickMenu, time.Now())
}

// closeQuickMenu dismisses a pending quick menu so the expiry event never
// fires after the user already acted on it.
func (a *App) closeQuickMenu() {
	a.quickMenuMu.Lock()
	defer a.quickMenuMu.Unlock()
	if a.quickMenuTimer != nil {
		a.quickMenuTimer.Stop()
		a.quickMenuTimer = nil
	}
}

// =================
// EMERGENCY SESSION
// =================

// TriggerEmergency starts an emergency session directly (big red button,
// quick-menu confirmation).
func (a *App) TriggerEmergency() *emergency.Session {
	a.closeQuickMenu()
	a.startSession(domain.TriggerManual)
	return a.sessionManager.Current()
}

// CancelEmergency closes the active session. confirmed must come from the
// explicit "are you safe?" dialog.
func (a *App) CancelEmergency(confirmed bool) string {
	if err := a.sessionManager.Cancel(confirmed); err != nil {
		return err.Error()
	}
	return "Alerta cancelado"
}

// GetEmergencySession returns the live session, or nil.
func (a *App) GetEmergencySession() *emergency.Session {
	return a.sessionManager.Current()
}

// SendExtraAlert re-alerts all active contacts from the live session.
func (a *App) SendExtraAlert() {
	a.sessionManager.SendExtraAlert()
}

// RefreshLocation re-acquires a best-effort fix and updates trip watchers.
func (a *App) RefreshLocation() {
	go a.sessionManager.RefreshLocation(context.Background())
}

// ===============
// TRIP MONITORING
// ===============

// StartTrip begins a monitored trip. Passing replace ends any trip already
// in flight.
func (a *App) StartTrip(destination *domain.Location, maxDurationMin int, replace bool) (*domain.Trip, error) {
	return a.tripMonitor.Start(context.Background(), destination, maxDurationMin, replace)
}

func (a *App) PauseTrip() error {
	return a.tripMonitor.Pause()
}

func (a *App) ResumeTrip() error {
	return a.tripMonitor.Resume()
}

// EndTrip finishes the current trip manually.
func (a *App) EndTrip() error {
	return a.tripMonitor.End(domain.EndManual)
}

// GetCurrentTrip returns the monitored trip, or nil.
func (a *App) GetCurrentTrip() *domain.Trip {
	return a.tripMonitor.Current()
}

// ShareCurrentLocation sends a one-off location message to every active
// contact, outside of any emergency.
func (a *App) ShareCurrentLocation() string {
	profile, err := a.storageService.Profile()
	if err != nil {
		return "Erro ao carregar perfil"
	}
	loc := a.locator.QuickFix(context.Background())
	msg := fmt.Sprintf("📍 %s está compartilhando a localização: %s", profile.Name, alert.MapsLink(loc))
	a.dispatcher.SendToContacts(profile.ActiveContacts(), msg)
	return "Localização compartilhada"
}

// ====================
// USER PROFILE & DATA
// ====================

// GetUserProfile returns the persisted user profile.
func (a *App) GetUserProfile() domain.UserProfile {
	u, _ := a.storageService.Profile()
	return u
}

// UpdateUserProfile updates the user profile.
func (a *App) UpdateUserProfile(u domain.UserProfile) string {
	if err := a.storageService.UpdateProfile(u); err != nil {
		return "Erro ao salvar perfil"
	}
	return "Perfil salvo"
}

// GetEmergencyHistory returns the bounded emergency history, newest first.
func (a *App) GetEmergencyHistory() []domain.EmergencyRecord {
	records, err := a.storageService.EmergencyHistory(storage.DefaultHistoryCap)
	if err != nil {
		return []domain.EmergencyRecord{}
	}
	return records
}

// GetTripHistory returns the bounded trip history, newest first.
func (a *App) GetTripHistory() []domain.Trip {
	trips, err := a.storageService.TripHistory(storage.DefaultHistoryCap)
	if err != nil {
		return []domain.Trip{}
	}
	return trips
}

// =======
// EXPORTS
// =======

// ExportTripGPX writes one historical trip as a GPX track file.
func (a *App) ExportTripGPX(tripID string) string {
	t := a.findTrip(tripID)
	if t == nil {
		return "Trajeto não encontrado"
	}
	path, err := export.TripToGPX(t, a.cfg.ExportDir)
	if err != nil {
		return "Erro ao exportar: " + err.Error()
	}
	runtime.EventsEmit(a.ctx, domain.EventLog, "Exportado: "+path)
	return path
}

// ExportTripFIT writes one historical trip as a FIT walking activity.
func (a *App) ExportTripFIT(tripID string) string {
	t := a.findTrip(tripID)
	if t == nil {
		return "Trajeto não encontrado"
	}
	path, err := export.TripToFIT(t, a.cfg.ExportDir)
	if err != nil {
		return "Erro ao exportar: " + err.Error()
	}
	runtime.EventsEmit(a.ctx, domain.EventLog, "Exportado: "+path)
	return path
}

func (a *App) findTrip(tripID string) *domain.Trip {
	trips, err := a.storageService.TripHistory(storage.DefaultHistoryCap)
	if err != nil {
		return nil
	}
	for i := range trips {
		if trips[i].ID == tripID {
			return &trips[i]
		}
	}
	return nil
}

// ==============
// SENSOR BRIDGE
// ==============

// ButtonPressed feeds one physical button press from the frontend.
func (a *App) ButtonPressed() {
	a.detector.ButtonPress()
}

// MotionSample feeds one accelerometer sample from the frontend.
func (a *App) MotionSample(ax, ay, az float64) {
	a.detector.Motion(ax, ay, az)
}

// PushFix feeds one geolocation sample from the frontend watcher.
func (a *App) PushFix(loc domain.Location) {
	a.bridge.PushFix(loc)
}

// PushBatteryLevel feeds the battery level from the frontend, in [0,1].
func (a *App) PushBatteryLevel(level float64) {
	a.bridge.PushBatteryLevel(level)
}
