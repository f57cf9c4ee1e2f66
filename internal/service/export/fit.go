package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Maycon-Saviole/chega2/internal/domain"
	"github.com/Maycon-Saviole/chega2/internal/service/geo"

	"github.com/muktihari/fit/encoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/proto"
)

// Constant for converting Degrees to Semicircles (FIT Standard)
const degreesToSemicircles = 2147483648.0 / 180.0

// TripToFIT writes a trip as a FIT walking activity to dir and returns the
// full file path.
func TripToFIT(t *domain.Trip, dir string) (string, error) {
	if len(t.Checkpoints) == 0 {
		return "", fmt.Errorf("trip %s has no checkpoints", t.ID)
	}

	started := exportTimestamp(t)
	ended := started
	if t.EndedAt != nil {
		ended = *t.EndedAt
	} else if last, ok := t.LastCheckpoint(); ok {
		ended = last.CapturedAt
	}

	fit := proto.FIT{}

	fileIdMesg := mesgdef.FileId{
		Type:         typedef.FileActivity,
		Manufacturer: typedef.ManufacturerDevelopment,
		Product:      0,
		SerialNumber: 12345,
		TimeCreated:  started,
	}
	fit.Messages = append(fit.Messages, fileIdMesg.ToMesg(nil))

	// Records: one per checkpoint, distance accumulated along the path.
	var distM float64
	var prev domain.Location
	for i, cp := range t.Checkpoints {
		if i > 0 {
			distM += geo.DistanceMeters(prev, cp.Location)
		}
		prev = cp.Location

		speedMps := cp.Location.SpeedMs
		record := &mesgdef.Record{
			Timestamp:     cp.CapturedAt,
			PositionLat:   int32(cp.Location.Latitude * degreesToSemicircles),
			PositionLong:  int32(cp.Location.Longitude * degreesToSemicircles),
			Distance:      uint32(distM * 100),
			EnhancedSpeed: uint32(speedMps * 1000),
		}
		fit.Messages = append(fit.Messages, record.ToMesg(nil))
	}

	totalMs := uint32(ended.Sub(started).Milliseconds())
	totalDist := uint32(distM * 100)

	eventMesg := mesgdef.Event{
		Timestamp: ended,
		Event:     typedef.EventTimer,
		EventType: typedef.EventTypeStopAll,
	}
	fit.Messages = append(fit.Messages, eventMesg.ToMesg(nil))

	lapMesg := mesgdef.Lap{
		Timestamp:        ended,
		StartTime:        started,
		TotalElapsedTime: totalMs,
		TotalTimerTime:   totalMs,
		TotalDistance:    totalDist,
		Event:            typedef.EventLap,
		EventType:        typedef.EventTypeStop,
	}
	fit.Messages = append(fit.Messages, lapMesg.ToMesg(nil))

	sessionMesg := mesgdef.Session{
		Timestamp:        ended,
		StartTime:        started,
		TotalElapsedTime: totalMs,
		TotalTimerTime:   totalMs,
		TotalDistance:    totalDist,
		Sport:            typedef.SportWalking,
		Event:            typedef.EventSession,
		EventType:        typedef.EventTypeStop,
		Trigger:          typedef.SessionTriggerActivityEnd,
	}
	fit.Messages = append(fit.Messages, sessionMesg.ToMesg(nil))

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("trajeto_%s.fit", started.Format("2006-01-02_15-04-05"))
	fullPath := filepath.Join(dir, filename)

	f, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := encoder.New(f)
	if err := enc.Encode(&fit); err != nil {
		return "", err
	}
	return fullPath, nil
}

