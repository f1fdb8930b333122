package reward

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Snapshot)
		wantErr error
	}{
		{"valid", func(*Snapshot) {}, nil},
		{"zero track width", func(s *Snapshot) { s.TrackWidth = 0 }, ErrInvalidGeometry},
		{"negative track width", func(s *Snapshot) { s.TrackWidth = -1 }, ErrInvalidGeometry},
		{"negative distance", func(s *Snapshot) { s.DistanceFromCenter = -0.1 }, ErrInvalidGeometry},
		{"no waypoints", func(s *Snapshot) { s.Waypoints = nil }, ErrInvalidGeometry},
		{"single waypoint", func(s *Snapshot) { s.Waypoints = s.Waypoints[:1] }, ErrInvalidGeometry},
		{"nan waypoint", func(s *Snapshot) { s.Waypoints[2].X = math.NaN() }, ErrInvalidGeometry},
		{"prev out of range", func(s *Snapshot) { s.ClosestWaypoints.Prev = 4 }, ErrInvalidGeometry},
		{"next negative", func(s *Snapshot) { s.ClosestWaypoints.Next = -1 }, ErrInvalidGeometry},
		{"nan speed", func(s *Snapshot) { s.Speed = math.NaN() }, ErrInvalidParameter},
		{"inf heading", func(s *Snapshot) { s.Heading = math.Inf(-1) }, ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := straightSnapshot()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSnapshot_ValidateNil(t *testing.T) {
	var s *Snapshot
	err := s.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingParameter)

	var mpe *MissingParameterError
	require.ErrorAs(t, err, &mpe)
	assert.Equal(t, "snapshot", mpe.Param)
	assert.Contains(t, mpe.Error(), "snapshot")
}
