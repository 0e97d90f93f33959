package model

// Horizon is the number of projected years after the current (year 0) state.
const Horizon = 5

// ValidImplementationYear reports whether y is a year a change can take effect in.
func ValidImplementationYear(y int) bool {
	return y >= 1 && y <= Horizon
}

// YearsAffected is the number of projected years a change starting in year y is in effect.
func YearsAffected(y int) int {
	if !ValidImplementationYear(y) {
		return 0
	}
	return Horizon - y + 1
}
