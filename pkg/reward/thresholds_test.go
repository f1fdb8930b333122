package reward

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultThresholds(t *testing.T) {
	d := DefaultThresholds()
	require.NoError(t, d.Validate())
	assert.Equal(t, 2.5, d.SpeedThreshold)
	assert.Equal(t, 10.0, d.DirectionThreshold)
	assert.Equal(t, 15.0, d.SteeringThreshold)
	assert.Equal(t, 4.0, d.OptimalSpeed)
	assert.Equal(t, 1e-3, d.FloorReward)
	assert.Equal(t, 1.5, d.StraightAwayMultiplier)
	assert.Equal(t, 0.5, d.PenaltyMultiplier)
	assert.Equal(t, 0.5, d.SharpTurnMinRetention)
	assert.Equal(t, 5.0, d.SteeringIncrement)
	assert.Equal(t, 45.0, d.CurvatureReferenceAngle)
	assert.Equal(t, 0.5, d.CenterlineRatioLimit)
	assert.Contains(t, d.String(), "speed=2.50")
}

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Thresholds)
	}{
		{"zero speed", func(t *Thresholds) { t.SpeedThreshold = 0 }},
		{"negative steering", func(t *Thresholds) { t.SteeringThreshold = -1 }},
		{"nan optimal", func(t *Thresholds) { t.OptimalSpeed = math.NaN() }},
		{"inf reference", func(t *Thresholds) { t.CurvatureReferenceAngle = math.Inf(1) }},
		{"zero floor", func(t *Thresholds) { t.FloorReward = 0 }},
		{"floor above base", func(t *Thresholds) { t.FloorReward = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultThresholds()
			tt.mutate(&th)
			err := th.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}
