package common

import "math"

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// GeoMean returns sqrt(a*b), treating negative products as zero.
func GeoMean(a, b float64) float64 {
	return math.Sqrt(math.Max(0, a*b))
}
