package reward

import (
	"fmt"
	"math"
)

const (
	// Base thresholds.
	speedThreshold     = 2.5
	directionThreshold = 10.0
	steeringThreshold  = 15.0
	optimalSpeed       = 4.0

	// Reward composition.
	floorReward            = 1e-3
	straightAwayMultiplier = 1.5
	penaltyMultiplier      = 0.5
	sharpTurnMinRetention  = 0.5
	steeringIncrement      = 5.0

	// Geometry references.
	curvatureReferenceAngle = 45.0
	centerlineRatioLimit    = 0.5
)

// Thresholds holds every tunable constant of the reward model.
// The zero value is not usable, start from DefaultThresholds.
type Thresholds struct {
	SpeedThreshold          float64 `json:"speed_threshold" yaml:"speedThreshold"`
	DirectionThreshold      float64 `json:"direction_threshold" yaml:"directionThreshold"`
	SteeringThreshold       float64 `json:"steering_threshold" yaml:"steeringThreshold"`
	OptimalSpeed            float64 `json:"optimal_speed" yaml:"optimalSpeed"`
	FloorReward             float64 `json:"floor_reward" yaml:"floorReward"`
	StraightAwayMultiplier  float64 `json:"straight_away_multiplier" yaml:"straightAwayMultiplier"`
	PenaltyMultiplier       float64 `json:"penalty_multiplier" yaml:"penaltyMultiplier"`
	SharpTurnMinRetention   float64 `json:"sharp_turn_min_retention" yaml:"sharpTurnMinRetention"`
	SteeringIncrement       float64 `json:"steering_increment" yaml:"steeringIncrement"`
	CurvatureReferenceAngle float64 `json:"curvature_reference_angle" yaml:"curvatureReferenceAngle"`
	CenterlineRatioLimit    float64 `json:"centerline_ratio_limit" yaml:"centerlineRatioLimit"`
}

// DefaultThresholds returns the stock model constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SpeedThreshold:          speedThreshold,
		DirectionThreshold:      directionThreshold,
		SteeringThreshold:       steeringThreshold,
		OptimalSpeed:            optimalSpeed,
		FloorReward:             floorReward,
		StraightAwayMultiplier:  straightAwayMultiplier,
		PenaltyMultiplier:       penaltyMultiplier,
		SharpTurnMinRetention:   sharpTurnMinRetention,
		SteeringIncrement:       steeringIncrement,
		CurvatureReferenceAngle: curvatureReferenceAngle,
		CenterlineRatioLimit:    centerlineRatioLimit,
	}
}

// Validate checks that every value is finite and positive.
func (t Thresholds) Validate() error {
	fields := []struct {
		name string
		val  float64
	}{
		{"speed_threshold", t.SpeedThreshold},
		{"direction_threshold", t.DirectionThreshold},
		{"steering_threshold", t.SteeringThreshold},
		{"optimal_speed", t.OptimalSpeed},
		{"floor_reward", t.FloorReward},
		{"straight_away_multiplier", t.StraightAwayMultiplier},
		{"penalty_multiplier", t.PenaltyMultiplier},
		{"sharp_turn_min_retention", t.SharpTurnMinRetention},
		{"steering_increment", t.SteeringIncrement},
		{"curvature_reference_angle", t.CurvatureReferenceAngle},
		{"centerline_ratio_limit", t.CenterlineRatioLimit},
	}
	for _, f := range fields {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) || f.val <= 0 {
			return invalidParameter("threshold %s must be a positive number, got %v", f.name, f.val)
		}
	}
	if t.FloorReward > 1 {
		return invalidParameter("threshold floor_reward must not exceed the base reward, got %v", t.FloorReward)
	}
	return nil
}

func (t Thresholds) String() string {
	return fmt.Sprintf("speed=%.2f direction=%.2f steering=%.2f optimal=%.2f floor=%g",
		t.SpeedThreshold, t.DirectionThreshold, t.SteeringThreshold, t.OptimalSpeed, t.FloorReward)
}
