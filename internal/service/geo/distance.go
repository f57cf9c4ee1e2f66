package geo

import (
	"math"

	"github.com/Maycon-Saviole/chega2/internal/domain"
)

// EarthRadiusM is the mean Earth radius used by every distance check in the
// app (arrival, stationary, nearby). Keeping a single implementation
// guarantees consistent results across components.
const EarthRadiusM = 6371000.0

// DistanceMeters returns the haversine great-circle distance between two
// locations on a spherical Earth model.
func DistanceMeters(a, b domain.Location) float64 {
	phi1 := a.Latitude * math.Pi / 180
	phi2 := b.Latitude * math.Pi / 180
	dPhi := (b.Latitude - a.Latitude) * math.Pi / 180
	dLambda := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusM * c
}

// PathDistanceMeters sums the consecutive great-circle segments of a
// checkpoint sequence.
func PathDistanceMeters(checkpoints []domain.Checkpoint) float64 {
	var total float64
	for i := 1; i < len(checkpoints); i++ {
		total += DistanceMeters(checkpoints[i-1].Location, checkpoints[i].Location)
	}
	return total
}
