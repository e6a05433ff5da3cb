package review

import (
	"encoding"
	"fmt"
	"strconv"
	"strings"
)

// Quality is a self-assessed recall grade from 0 (blackout) to 5 (perfect).
// Anything below PassingQuality is a lapse.
type Quality int

const (
	MinQuality     Quality = 0
	MaxQuality     Quality = 5
	PassingQuality Quality = 3
)

var (
	_ fmt.Stringer             = Quality(0)
	_ encoding.TextMarshaler   = Quality(0)
	_ encoding.TextUnmarshaler = (*Quality)(nil)
)

var qualityByLabel = map[string]Quality{
	"again": 1,
	"hard":  2,
	"good":  4,
	"easy":  5,
}

// Validate returns ErrInvalidQuality when q is outside [0, 5].
func (q Quality) Validate() error {
	if q < MinQuality || q > MaxQuality {
		return fmt.Errorf("%w: %d", ErrInvalidQuality, int(q))
	}
	return nil
}

// IsPass reports whether q keeps the repetition streak.
func (q Quality) IsPass() bool {
	return q >= PassingQuality
}

// Label is the button name a review UI shows for q.
func (q Quality) Label() string {
	switch {
	case q < 2:
		return "again"
	case q == 2:
		return "hard"
	case q < 5:
		return "good"
	default:
		return "easy"
	}
}

func (q Quality) String() string {
	return strconv.Itoa(int(q))
}

func (q Quality) MarshalText() ([]byte, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return []byte(q.String()), nil
}

func (q *Quality) UnmarshalText(text []byte) error {
	parsed, err := ParseQuality(string(text))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// ParseQuality accepts a digit from 0 to 5 or one of the labels again, hard, good and easy.
func ParseQuality(s string) (Quality, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if q, ok := qualityByLabel[s]; ok {
		return q, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuality, s)
	}
	q := Quality(n)
	if err := q.Validate(); err != nil {
		return 0, err
	}
	return q, nil
}
