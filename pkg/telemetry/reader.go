package telemetry

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mchmarny/trackreward/pkg/reward"
)

const maxLineBytes = 8 << 20

// Record is one line of a JSON-lines step log.
type Record struct {
	Episode string `json:"episode,omitempty"`
	Params
}

// Reader iterates the records of a JSON-lines step log. Records may omit
// waypoints after the first one, in which case the last seen track is reused.
type Reader struct {
	scanner   *bufio.Scanner
	line      int
	waypoints [][]float64
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Reader{scanner: s}
}

// Next returns the next record or io.EOF when the log is exhausted.
func (r *Reader) Next() (*Record, error) {
	for r.scanner.Scan() {
		r.line++
		b := bytes.TrimSpace(r.scanner.Bytes())
		if len(b) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", reward.ErrInvalidParameter, r.line, err)
		}

		if rec.Waypoints == nil {
			rec.Waypoints = r.waypoints
		} else {
			r.waypoints = rec.Waypoints
		}
		return &rec, nil
	}

	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading line %d: %w", r.line+1, err)
	}
	return nil, io.EOF
}

// Line returns the number of the last line read.
func (r *Reader) Line() int {
	return r.line
}
