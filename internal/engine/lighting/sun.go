package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/simscene/pkg/math"
)

// SunDirection converts longitude/latitude angles in degrees to a render
// space (Y up) direction pointing towards the sun.
// Longitude is rotation around Y, latitude is elevation from the horizon.
func SunDirection(longitude, latitude float32) math.Vec3 {
	lonRad := longitude * math32.Pi / 180
	latRad := latitude * math32.Pi / 180

	// Spherical to Cartesian conversion
	sinLon, cosLon := math32.Sincos(lonRad)
	sinLat, cosLat := math32.Sincos(latRad)

	return math.Vec3{
		X: cosLat * sinLon,
		Y: sinLat,
		Z: cosLat * cosLon,
	}
}
