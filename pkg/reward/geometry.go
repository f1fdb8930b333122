package reward

import "math"

// Waypoint is a single (x, y) sample of the closed-loop track centerline.
type Waypoint struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NextIndex returns the index following i on a closed loop of n points.
func NextIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i+1)%n + n) % n
}

// TrackDirection returns the bearing of the segment from -> to in degrees (-180, 180].
func TrackDirection(from, to Waypoint) float64 {
	return math.Atan2(to.Y-from.Y, to.X-from.X) * 180 / math.Pi
}

// DirectionDiff returns the absolute difference between two bearings folded
// into [0, 180], so 179 and -179 are 2 degrees apart.
func DirectionDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}
