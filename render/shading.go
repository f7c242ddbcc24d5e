package render

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// shade darkens a colour by simple ambient plus head-light lighting. point
// and normal are in camera space; the camera looks down -z.
func shade(point, normal mgl64.Vec3, polyColor color.RGBA) color.RGBA {
	const ambientLight = 0.65
	const spotlightConePower = 10.0
	const spotlightLightAmount = 1.0 - ambientLight

	diffuseFactor := normal[2]
	if diffuseFactor < 0 {
		diffuseFactor = 0
	}

	spotlightFactor := 1.0
	if l := point.Len(); l > 0 {
		cosAngle := -point[2] / l
		if cosAngle < 0 {
			cosAngle = 0
		}
		spotlightFactor = math.Pow(cosAngle, spotlightConePower)
	}

	finalBrightness := ambientLight + diffuseFactor*spotlightFactor*spotlightLightAmount

	c := 240 - int(finalBrightness*240)
	min := 7
	return color.RGBA{
		R: uint8(clamp(int(polyColor.R)-c, min, 255)),
		G: uint8(clamp(int(polyColor.G)-c, min, 255)),
		B: uint8(clamp(int(polyColor.B)-c, min, 255)),
		A: polyColor.A,
	}
}
