package telemetry

import (
	"fmt"

	"github.com/mchmarny/trackreward/pkg/reward"
)

// Params is the wire form of a step snapshot, keyed by the simulator's
// parameter names. Absent fields decode to nil so they can be reported.
type Params struct {
	AllWheelsOnTrack   *bool       `json:"all_wheels_on_track,omitempty" yaml:"all_wheels_on_track,omitempty"`
	Speed              *float64    `json:"speed,omitempty" yaml:"speed,omitempty"`
	Heading            *float64    `json:"heading,omitempty" yaml:"heading,omitempty"`
	SteeringAngle      *float64    `json:"steering_angle,omitempty" yaml:"steering_angle,omitempty"`
	TrackWidth         *float64    `json:"track_width,omitempty" yaml:"track_width,omitempty"`
	DistanceFromCenter *float64    `json:"distance_from_center,omitempty" yaml:"distance_from_center,omitempty"`
	Waypoints          [][]float64 `json:"waypoints,omitempty" yaml:"waypoints,omitempty"`
	ClosestWaypoints   []int       `json:"closest_waypoints,omitempty" yaml:"closest_waypoints,omitempty"`
	Steps              *float64    `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// Snapshot validates presence and shape of every field and converts p into
// the typed reward input. Geometry is checked by the evaluator.
func (p *Params) Snapshot() (*reward.Snapshot, error) {
	if p == nil {
		return nil, &reward.MissingParameterError{Param: "params"}
	}
	if err := p.checkPresent(); err != nil {
		return nil, err
	}

	wps := make([]reward.Waypoint, len(p.Waypoints))
	for i, w := range p.Waypoints {
		if len(w) != 2 {
			return nil, fmt.Errorf("%w: waypoint %d must be an [x, y] pair, got %d values",
				reward.ErrInvalidParameter, i, len(w))
		}
		wps[i] = reward.Waypoint{X: w[0], Y: w[1]}
	}

	if len(p.ClosestWaypoints) != 2 {
		return nil, fmt.Errorf("%w: closest_waypoints must be a [prev, next] pair, got %d values",
			reward.ErrInvalidParameter, len(p.ClosestWaypoints))
	}

	return &reward.Snapshot{
		AllWheelsOnTrack:   *p.AllWheelsOnTrack,
		Speed:              *p.Speed,
		Heading:            *p.Heading,
		SteeringAngle:      *p.SteeringAngle,
		TrackWidth:         *p.TrackWidth,
		DistanceFromCenter: *p.DistanceFromCenter,
		Waypoints:          wps,
		ClosestWaypoints: reward.ClosestWaypoints{
			Prev: p.ClosestWaypoints[0],
			Next: p.ClosestWaypoints[1],
		},
		Steps: int(*p.Steps),
	}, nil
}

func (p *Params) checkPresent() error {
	required := []struct {
		name    string
		present bool
	}{
		{"all_wheels_on_track", p.AllWheelsOnTrack != nil},
		{"speed", p.Speed != nil},
		{"heading", p.Heading != nil},
		{"steering_angle", p.SteeringAngle != nil},
		{"track_width", p.TrackWidth != nil},
		{"distance_from_center", p.DistanceFromCenter != nil},
		{"waypoints", p.Waypoints != nil},
		{"closest_waypoints", p.ClosestWaypoints != nil},
		{"steps", p.Steps != nil},
	}
	for _, r := range required {
		if !r.present {
			return &reward.MissingParameterError{Param: r.name}
		}
	}
	return nil
}

// FromSnapshot returns the wire form of s.
func FromSnapshot(s *reward.Snapshot) *Params {
	if s == nil {
		return nil
	}
	wps := make([][]float64, len(s.Waypoints))
	for i, w := range s.Waypoints {
		wps[i] = []float64{w.X, w.Y}
	}
	steps := float64(s.Steps)
	return &Params{
		AllWheelsOnTrack:   ptr(s.AllWheelsOnTrack),
		Speed:              ptr(s.Speed),
		Heading:            ptr(s.Heading),
		SteeringAngle:      ptr(s.SteeringAngle),
		TrackWidth:         ptr(s.TrackWidth),
		DistanceFromCenter: ptr(s.DistanceFromCenter),
		Waypoints:          wps,
		ClosestWaypoints:   []int{s.ClosestWaypoints.Prev, s.ClosestWaypoints.Next},
		Steps:              &steps,
	}
}

func ptr[T any](v T) *T { return &v }
