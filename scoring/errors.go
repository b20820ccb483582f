package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidData is matched by every *DataError via errors.Is.
var ErrInvalidData = errors.New("invalid league data")

// ErrInvalidConfig is returned when a scoring Config is unusable.
var ErrInvalidConfig = errors.New("invalid scoring config")

// DataError describes invalid schedule or points input. Week and Player are zero values when
// the problem is not tied to a specific week or player column.
type DataError struct {
	Week   int
	Player string
	Reason string
}

func (e *DataError) Error() string {
	var loc []string
	if e.Week > 0 {
		loc = append(loc, fmt.Sprintf("week %d", e.Week))
	}
	if e.Player != "" {
		loc = append(loc, fmt.Sprintf("player %q", e.Player))
	}
	if len(loc) == 0 {
		return "data error: " + e.Reason
	}
	return fmt.Sprintf("data error (%s): %s", strings.Join(loc, ", "), e.Reason)
}

func (e *DataError) Unwrap() error {
	return ErrInvalidData
}

func dataErrorf(week int, player string, format string, args ...interface{}) *DataError {
	return &DataError{Week: week, Player: player, Reason: fmt.Sprintf(format, args...)}
}
