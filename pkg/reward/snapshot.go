package reward

import "math"

// ClosestWaypoints holds the indices of the waypoints behind and ahead of the vehicle.
type ClosestWaypoints struct {
	Prev int `json:"prev" yaml:"prev"`
	Next int `json:"next" yaml:"next"`
}

// Snapshot is the vehicle telemetry for a single simulation step.
type Snapshot struct {
	AllWheelsOnTrack   bool             `json:"all_wheels_on_track" yaml:"allWheelsOnTrack"`
	Speed              float64          `json:"speed" yaml:"speed"`
	Heading            float64          `json:"heading" yaml:"heading"`
	SteeringAngle      float64          `json:"steering_angle" yaml:"steeringAngle"`
	TrackWidth         float64          `json:"track_width" yaml:"trackWidth"`
	DistanceFromCenter float64          `json:"distance_from_center" yaml:"distanceFromCenter"`
	Waypoints          []Waypoint       `json:"waypoints" yaml:"waypoints"`
	ClosestWaypoints   ClosestWaypoints `json:"closest_waypoints" yaml:"closestWaypoints"`
	Steps              int              `json:"steps" yaml:"steps"`
}

// Validate checks the snapshot against the input contract of the reward model.
func (s *Snapshot) Validate() error {
	if s == nil {
		return &MissingParameterError{Param: "snapshot"}
	}

	scalars := []struct {
		name string
		val  float64
	}{
		{"speed", s.Speed},
		{"heading", s.Heading},
		{"steering_angle", s.SteeringAngle},
	}
	for _, f := range scalars {
		if !finite(f.val) {
			return invalidParameter("%s is not a finite number: %v", f.name, f.val)
		}
	}

	if !finite(s.TrackWidth) || s.TrackWidth <= 0 {
		return invalidGeometry("track_width must be positive, got %v", s.TrackWidth)
	}
	if !finite(s.DistanceFromCenter) || s.DistanceFromCenter < 0 {
		return invalidGeometry("distance_from_center must be non-negative, got %v", s.DistanceFromCenter)
	}

	n := len(s.Waypoints)
	if n < 2 {
		return invalidGeometry("at least 2 waypoints required, got %d", n)
	}
	for i, w := range s.Waypoints {
		if !finite(w.X) || !finite(w.Y) {
			return invalidGeometry("waypoint %d is not finite: (%v, %v)", i, w.X, w.Y)
		}
	}

	cw := s.ClosestWaypoints
	if cw.Prev < 0 || cw.Prev >= n || cw.Next < 0 || cw.Next >= n {
		return invalidGeometry("closest_waypoints [%d, %d] out of range for %d waypoints", cw.Prev, cw.Next, n)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
