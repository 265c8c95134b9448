package validation

import (
	"fmt"
	"strings"
)

// Level is a strictness policy. Levels are ordered by permissiveness:
// Strict < Moderate < Lenient.
type Level int

const (
	// Strict tolerates no unexplained mentions.
	Strict Level = iota
	// Moderate tolerates up to max_additional unexplained mentions.
	Moderate
	// Lenient tolerates up to twice max_additional unexplained mentions.
	Lenient
)

// DefaultMaxAdditional is the number of additions Moderate tolerates. Lenient
// tolerates twice as many. Both are tunable policy, not domain law.
const DefaultMaxAdditional = 3

// Levels returns all levels from strictest to most permissive.
func Levels() []Level { return []Level{Strict, Moderate, Lenient} }

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case Strict:
		return "strict"
	case Moderate:
		return "moderate"
	case Lenient:
		return "lenient"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel parses "strict", "moderate" or "lenient" (case-insensitive).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return Strict, nil
	case "moderate":
		return Moderate, nil
	case "lenient":
		return Lenient, nil
	default:
		return Strict, fmt.Errorf("unknown validation level %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(b []byte) error {
	v, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

func (l Level) penalty() float64 {
	switch l {
	case Moderate:
		return 0.7
	case Lenient:
		return 0.4
	default:
		return 1.0
	}
}

func (l Level) minConfidence() float64 {
	switch l {
	case Moderate:
		return 0.6
	case Lenient:
		return 0.4
	default:
		return 0.8
	}
}

// allowedUnexplained returns how many unexplained mentions the level tolerates.
func (l Level) allowedUnexplained(maxAdditional int) int {
	switch l {
	case Moderate:
		return maxAdditional
	case Lenient:
		return 2 * maxAdditional
	default:
		return 0
	}
}
