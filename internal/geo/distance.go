package geo

import (
	"fmt"
	"math"

	"healthnudge/internal/models"
)

const earthRadiusMeters = 6371000

// UnknownDistanceMeters is the sentinel returned when either coordinate is
// unknown. It is "effectively infinite" for ordering purposes and must not
// be displayed as a real measurement.
const UnknownDistanceMeters = 99999

// Distance returns the great-circle distance in meters between two points
// using the haversine formula. Inputs are degrees. Symmetric and pure.
func Distance(a, b *models.Coordinate) int {
	if a == nil || b == nil {
		return UnknownDistanceMeters
	}

	lat1 := a.Lat * math.Pi / 180
	lng1 := a.Lng * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	lng2 := b.Lng * math.Pi / 180

	dLat := lat2 - lat1
	dLng := lng2 - lng1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return int(earthRadiusMeters * c)
}

// FormatDistance renders meters as "850m" below one kilometer and "1.2km"
// above. The sentinel renders as "nearby" since it is not a measurement.
func FormatDistance(meters int) string {
	if meters >= UnknownDistanceMeters {
		return "nearby"
	}
	if meters < 1000 {
		return fmt.Sprintf("%dm", meters)
	}
	return fmt.Sprintf("%.1fkm", float64(meters)/1000)
}
