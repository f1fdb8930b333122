package reward

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingParameter is returned when a required snapshot field is absent.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrInvalidParameter is returned for present but unusable values (NaN, Inf, bad shape).
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidGeometry is returned when the track geometry violates the input
	// contract, e.g. fewer than two waypoints or a zero track width.
	ErrInvalidGeometry = errors.New("invalid geometry")
)

// MissingParameterError names the absent field.
type MissingParameterError struct {
	Param string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingParameter, e.Param)
}

func (e *MissingParameterError) Is(target error) bool {
	return target == ErrMissingParameter
}

func invalidGeometry(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidGeometry, fmt.Sprintf(format, args...))
}

func invalidParameter(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}
