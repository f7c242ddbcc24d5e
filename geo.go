package spherevis

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// snapEpsilon is the magnitude below which converted coordinates are forced to zero.
const snapEpsilon = 1e-16

// GeoPoint is a latitude/longitude pair in degrees.
type GeoPoint struct {
	Lat  float64
	Long float64
}

// Cartesian returns the point on a sphere of the given radius.
func (g GeoPoint) Cartesian(radius float64) mgl64.Vec3 {
	return LatLongToCartesian(g.Lat, g.Long, radius)
}

func ToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// LatLongToCartesian converts a latitude/longitude in degrees to a point on a
// sphere of the given radius. Latitude is measured from the equatorial plane and
// the north pole sits on +Z.
func LatLongToCartesian(latitude, longitude, radius float64) mgl64.Vec3 {
	lat := ToRadians(latitude)
	long := ToRadians(longitude)

	x := radius * math.Cos(lat) * math.Cos(long)
	y := radius * math.Cos(lat) * math.Sin(long)
	z := radius * math.Sin(lat)

	return mgl64.Vec3{snap(x), snap(y), snap(z)}
}

func snap(v float64) float64 {
	if math.Abs(v) < snapEpsilon {
		return 0
	}
	return v
}

// lerp is the a + (b-a)*t form used by the tessellator and curve builder.
func lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return mgl64.Vec3{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

// setLength scales v to the given length. A zero vector stays zero.
func setLength(v mgl64.Vec3, length float64) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		l = 1
	}
	return v.Mul(1 / l).Mul(length)
}
