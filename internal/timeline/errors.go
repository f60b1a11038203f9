package timeline

import (
	"errors"
	"fmt"
)

// ErrInvalidDuration reports a non-positive total duration handed to the
// non-dialogue calculator.
var ErrInvalidDuration = errors.New("total duration must be positive")

// ErrSegmentation marks any failure while building the scene timeline.
// Callers need only test for this one error kind; the original cause stays
// reachable through errors.Unwrap.
var ErrSegmentation = errors.New("scene segmentation failed")

func segmentationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSegmentation, fmt.Sprintf(format, args...))
}

func wrapSegmentation(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrSegmentation) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrSegmentation, err)
}
