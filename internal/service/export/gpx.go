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

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Maycon-Saviole/chega2/internal/domain"

	"github.com/tkrajina/gpxgo/gpx"
)

// TripToGPX renders a trip's checkpoints as a single-segment GPX track and
// writes it to dir. Returns the full file path.
func TripToGPX(t *domain.Trip, dir string) (string, error) {
	if len(t.Checkpoints) == 0 {
		return "", fmt.Errorf("trip %s has no checkpoints", t.ID)
	}

	started := exportTimestamp(t)
	doc := &gpx.GPX{
		Creator: "CHEGA!",
		Name:    fmt.Sprintf("Trajeto %s", started.Format("02/01/2006 15:04")),
		Time:    &started,
	}

	segment := gpx.GPXTrackSegment{}
	for _, cp := range t.Checkpoints {
		segment.Points = append(segment.Points, gpx.GPXPoint{
			Point: gpx.Point{
				Latitude:  cp.Location.Latitude,
				Longitude: cp.Location.Longitude,
			},
			Timestamp: cp.CapturedAt,
		})
	}

	doc.Tracks = []gpx.GPXTrack{{
		Name:     doc.Name,
		Segments: []gpx.GPXTrackSegment{segment},
	}}

	xml, err := doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("trajeto_%s.gpx", started.Format("2006-01-02_15-04-05"))
	fullPath := filepath.Join(dir, filename)
	if err := os.WriteFile(fullPath, xml, 0644); err != nil {
		return "", err
	}
	return fullPath, nil
}

// exportTimestamp keeps filenames deterministic for trips missing a start
// time (recovered rows from very old versions).
func exportTimestamp(t *domain.Trip) time.Time {
	if !t.StartedAt.IsZero() {
		return t.StartedAt
	}
	return time.Now()
}
