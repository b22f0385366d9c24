package math3d

import "strconv"

// Vec4 holds four float components. The ray caster uses it for RGBA colors
// whose channels are conventionally in [0, 1].
type Vec4 struct {
	X, Y, Z, W float64
}

// RGBA creates a color Vec4 from red, green, blue and alpha channels.
func RGBA(r, g, b, a float64) Vec4 {
	return Vec4{r, g, b, a}
}

// Array returns the components in RGBA order.
func (v Vec4) Array() [4]float64 {
	return [4]float64{v.X, v.Y, v.Z, v.W}
}

// V4FromArray is the inverse of Array.
func V4FromArray(a [4]float64) Vec4 {
	return Vec4{a[0], a[1], a[2], a[3]}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
