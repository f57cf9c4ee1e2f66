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

package storage

import (
	"errors"
	"fmt"

	"github.com/Maycon-Saviole/chega2/internal/domain"
	"github.com/Maycon-Saviole/chega2/internal/service/alert"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// DefaultHistoryCap bounds both the emergency and the trip history.
const DefaultHistoryCap = 100

// Service encapsulates all database operations.
// It acts as the persistence layer of the application.
type Service struct {
	db         *gorm.DB
	HistoryCap int
}

// NewService initializes the database connection and runs migrations.
// Pass ":memory:" for an ephemeral database (tests).
func NewService(dbPath string) *Service {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	err = db.AutoMigrate(&domain.UserProfile{}, &domain.Trip{}, &domain.EmergencyRecord{})
	if err != nil {
		fmt.Println("Error during database migration:", err)
	}

	s := &Service{db: db, HistoryCap: DefaultHistoryCap}
	s.seedProfile()
	return s
}

// seedProfile creates the default single-user profile on first run.
func (s *Service) seedProfile() {
	var count int64
	s.db.Model(&domain.UserProfile{}).Count(&count)
	if count == 0 {
		s.db.Create(&domain.UserProfile{
			Name:             "Usuária",
			EmergencyMessage: alert.DefaultTemplate,
			Settings: domain.Settings{
				Vibrate:         true,
				Sound:           true,
				ScreenLock:      true,
				AutoSMS:         true,
				NotifyContacts:  true,
				ShareLocation:   true,
				EmergencyNumber: "190",
			},
		})
	}
}

// ============
// USER PROFILE
// ============

// Profile returns the user profile. Single-user application: always the
// first (and only) record.
func (s *Service) Profile() (domain.UserProfile, error) {
	var p domain.UserProfile
	result := s.db.First(&p)
	return p, result.Error
}

// UpdateProfile updates the existing user profile.
// The ID is forced to 1 to ensure the same record is updated.
func (s *Service) UpdateProfile(p domain.UserProfile) error {
	p.ID = 1
	return s.db.Save(&p).Error
}

// ============
// CURRENT TRIP
// ============

// CurrentTrip returns the in-flight trip, or nil when there is none.
func (s *Service) CurrentTrip() (*domain.Trip, error) {
	var t domain.Trip
	err := s.db.Where("state IN ?", []domain.TripState{domain.TripActive, domain.TripPaused}).
		Order("started_at desc").First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Service) SaveCurrentTrip(t *domain.Trip) error {
	return s.db.Save(t).Error
}

// ClearCurrentTrip removes any lingering non-ended trip rows, including
// leftovers from a crashed run.
func (s *Service) ClearCurrentTrip() error {
	return s.db.Where("state IN ?", []domain.TripState{domain.TripActive, domain.TripPaused}).
		Delete(&domain.Trip{}).Error
}

// ============
// TRIP HISTORY
// ============

// AppendTripHistory stores an ended trip and trims the history to the cap,
// dropping the oldest entries first.
func (s *Service) AppendTripHistory(t *domain.Trip) error {
	if err := s.db.Save(t).Error; err != nil {
		return err
	}
	return s.trimTrips()
}

func (s *Service) TripHistory(limit int) ([]domain.Trip, error) {
	var trips []domain.Trip
	err := s.db.Where("state = ?", domain.TripEnded).
		Order("started_at desc").Limit(limit).Find(&trips).Error
	return trips, err
}

func (s *Service) trimTrips() error {
	var count int64
	if err := s.db.Model(&domain.Trip{}).Where("state = ?", domain.TripEnded).Count(&count).Error; err != nil {
		return err
	}
	excess := int(count) - s.HistoryCap
	if excess <= 0 {
		return nil
	}
	var ids []string
	if err := s.db.Model(&domain.Trip{}).Where("state = ?", domain.TripEnded).
		Order("started_at asc").Limit(excess).Pluck("id", &ids).Error; err != nil {
		return err
	}
	return s.db.Delete(&domain.Trip{}, "id IN ?", ids).Error
}

// =================
// EMERGENCY HISTORY
// =================

// AppendEmergencyHistory stores one closed emergency record, trimming the
// history to the cap (oldest first).
func (s *Service) AppendEmergencyHistory(r domain.EmergencyRecord) error {
	if err := s.db.Create(&r).Error; err != nil {
		return err
	}
	return s.trimEmergencies()
}

func (s *Service) EmergencyHistory(limit int) ([]domain.EmergencyRecord, error) {
	var records []domain.EmergencyRecord
	err := s.db.Order("started_at desc").Limit(limit).Find(&records).Error
	return records, err
}

func (s *Service) trimEmergencies() error {
	var count int64
	if err := s.db.Model(&domain.EmergencyRecord{}).Count(&count).Error; err != nil {
		return err
	}
	excess := int(count) - s.HistoryCap
	if excess <= 0 {
		return nil
	}
	var ids []string
	if err := s.db.Model(&domain.EmergencyRecord{}).
		Order("started_at asc").Limit(excess).Pluck("id", &ids).Error; err != nil {
		return err
	}
	return s.db.Delete(&domain.EmergencyRecord{}, "id IN ?", ids).Error
}
