package telemetry

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLog = `{"episode": "ep-1", "all_wheels_on_track": true, "speed": 1, "heading": 0, "steering_angle": 0, "track_width": 1, "distance_from_center": 0, "waypoints": [[0,0],[1,0],[2,0]], "closest_waypoints": [0,1], "steps": 1}

{"episode": "ep-1", "all_wheels_on_track": false, "speed": 1, "heading": 0, "steering_angle": 0, "track_width": 1, "distance_from_center": 0.6, "closest_waypoints": [1,2], "steps": 2}
{"episode": "ep-2", "all_wheels_on_track": true, "speed": 2, "heading": 0, "steering_angle": 0, "track_width": 1, "distance_from_center": 0, "waypoints": [[0,0],[0,1]], "closest_waypoints": [0,1], "steps": 1}
`

func TestReader(t *testing.T) {
	r := NewReader(strings.NewReader(testLog))

	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "ep-1", rec.Episode)
	assert.Len(t, rec.Waypoints, 3)
	assert.Equal(t, 1, r.Line())

	rec, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, 3, r.Line())
	assert.Len(t, rec.Waypoints, 3, "waypoints carried over from previous record")
	s, err := rec.Snapshot()
	require.NoError(t, err)
	assert.False(t, s.AllWheelsOnTrack)
	assert.Equal(t, 2, s.Steps)

	rec, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "ep-2", rec.Episode)
	assert.Len(t, rec.Waypoints, 2)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_BadLine(t *testing.T) {
	r := NewReader(strings.NewReader("{\"speed\": 1}\nnot json\n"))
	_, err := r.Next()
	require.NoError(t, err)

	_, err = r.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
