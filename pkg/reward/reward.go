package reward

import (
	"fmt"
	"math"
)

const baseReward = 1.0

// Breakdown records every intermediate of a single evaluation.
type Breakdown struct {
	Reward               float64 `json:"reward" yaml:"reward"`
	OffTrack             bool    `json:"off_track" yaml:"offTrack"`
	TrackDirection       float64 `json:"track_direction" yaml:"trackDirection"`
	NextTrackDirection   float64 `json:"next_track_direction" yaml:"nextTrackDirection"`
	DirectionDiff        float64 `json:"direction_diff" yaml:"directionDiff"`
	NextDirectionDiff    float64 `json:"next_direction_diff" yaml:"nextDirectionDiff"`
	CurvatureFactor      float64 `json:"curvature_factor" yaml:"curvatureFactor"`
	SpeedThreshold       float64 `json:"speed_threshold" yaml:"speedThreshold"`
	SteeringThreshold    float64 `json:"steering_threshold" yaml:"steeringThreshold"`
	SharpTurn            bool    `json:"sharp_turn" yaml:"sharpTurn"`
	StraightAwayBonus    bool    `json:"straight_away_bonus" yaml:"straightAwayBonus"`
	SpeedSteeringPenalty bool    `json:"speed_steering_penalty" yaml:"speedSteeringPenalty"`
	CenterlineRatio      float64 `json:"centerline_ratio" yaml:"centerlineRatio"`
	CenterlinePenalty    bool    `json:"centerline_penalty" yaml:"centerlinePenalty"`
}

// Evaluator scores snapshots. It holds no per-call state and is safe for
// concurrent use.
type Evaluator struct {
	thresholds Thresholds
}

// New returns an Evaluator for the given thresholds.
func New(t Thresholds) (*Evaluator, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}
	return &Evaluator{thresholds: t}, nil
}

// NewDefault returns an Evaluator using DefaultThresholds.
func NewDefault() *Evaluator {
	return &Evaluator{thresholds: DefaultThresholds()}
}

// Thresholds returns a copy of the active thresholds.
func (e *Evaluator) Thresholds() Thresholds {
	return e.thresholds
}

// Evaluate returns the reward for s, never less than the floor reward.
func (e *Evaluator) Evaluate(s *Snapshot) (float64, error) {
	b, err := e.Explain(s)
	if err != nil {
		return 0, err
	}
	return b.Reward, nil
}

// Explain scores s and returns the full breakdown of the computation.
func (e *Evaluator) Explain(s *Snapshot) (*Breakdown, error) {
	if s == nil {
		return nil, &MissingParameterError{Param: "snapshot"}
	}

	t := e.thresholds
	b := &Breakdown{
		Reward:            baseReward,
		SpeedThreshold:    t.SpeedThreshold,
		SteeringThreshold: t.SteeringThreshold,
	}

	if !s.AllWheelsOnTrack {
		b.OffTrack = true
		b.Reward = t.FloorReward
		return b, nil
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	wp := s.Waypoints
	prev := wp[s.ClosestWaypoints.Prev]
	next := wp[s.ClosestWaypoints.Next]
	nextNext := wp[NextIndex(s.ClosestWaypoints.Next, len(wp))]

	b.TrackDirection = TrackDirection(prev, next)
	b.NextTrackDirection = TrackDirection(next, nextNext)
	b.DirectionDiff = DirectionDiff(b.TrackDirection, s.Heading)
	b.NextDirectionDiff = DirectionDiff(b.NextTrackDirection, s.Heading)
	b.CurvatureFactor = b.NextDirectionDiff / t.CurvatureReferenceAngle

	// curvature of exactly 1 leaves thresholds and reward untouched
	switch {
	case b.CurvatureFactor > 1:
		b.SharpTurn = true
		b.SpeedThreshold *= math.Max(t.SharpTurnMinRetention, 1-b.CurvatureFactor)
		b.SteeringThreshold += t.SteeringIncrement * b.CurvatureFactor
	case b.CurvatureFactor < 1 && s.Speed < t.OptimalSpeed && b.NextDirectionDiff < t.DirectionThreshold:
		b.StraightAwayBonus = true
		b.Reward *= t.StraightAwayMultiplier
	}

	if s.Speed > b.SpeedThreshold || math.Abs(s.SteeringAngle) > b.SteeringThreshold {
		b.SpeedSteeringPenalty = true
		b.Reward *= t.PenaltyMultiplier
	}

	b.CenterlineRatio = s.DistanceFromCenter / (s.TrackWidth / 2)
	if b.CenterlineRatio > t.CenterlineRatioLimit {
		b.CenterlinePenalty = true
		b.Reward *= t.PenaltyMultiplier
	}

	b.Reward = math.Max(b.Reward, t.FloorReward)
	return b, nil
}
