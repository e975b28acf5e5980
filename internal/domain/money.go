package domain

import "math"

// Round2 rounds half away from zero to cents. The epsilon absorbs binary
// representation error so 1.005 rounds to 1.01.
func Round2(v float64) float64 {
	if v < 0 {
		return -Round2(-v)
	}
	return math.Floor((v+1e-9)*100+0.5) / 100
}
