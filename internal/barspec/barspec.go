// Package barspec parses the "<family>_<param>" bar-spec grammar used by
// the CLI and swarm planner (spec.md §6), e.g. "tick_500", "time_5m",
// "tib_50". Unparseable specs are a fatal input error (exit code 2).
package barspec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Family enumerates the ten supported bar families.
type Family string

const (
	Tick   Family = "tick"
	Volume Family = "volume"
	Dollar Family = "dollar"
	Time   Family = "time"
	TIB    Family = "tib"
	VIB    Family = "vib"
	DIB    Family = "dib"
	TRB    Family = "trb"
	VRB    Family = "vrb"
	DRB    Family = "drb"
)

// ErrBadSpec is returned for any unparseable bar-spec string.
var ErrBadSpec = errors.New("bad bar spec")

// Spec is a parsed "<family>_<param>" bar specification.
type Spec struct {
	Family Family
	Raw    string // the original param substring, e.g. "500", "5m"

	// Populated depending on Family:
	IntParam     int64         // tick, tib, vib, dib, trb, vrb, drb window/threshold
	DecimalParam string        // volume, dollar raw decimal string threshold
	Period       time.Duration // time family bucket width
}

var adaptiveFamilies = map[Family]bool{
	TIB: true, VIB: true, DIB: true, TRB: true, VRB: true, DRB: true,
}

// IsAdaptive reports whether the family is one of the six EWMA-driven
// information families.
func (s Spec) IsAdaptive() bool { return adaptiveFamilies[s.Family] }

// Parse parses a "<family>_<param>" string.
func Parse(s string) (Spec, error) {
	idx := strings.IndexByte(s, '_')
	if idx < 0 {
		return Spec{}, fmt.Errorf("%w: %q: missing '_' separator", ErrBadSpec, s)
	}
	family := Family(s[:idx])
	param := s[idx+1:]
	if param == "" {
		return Spec{}, fmt.Errorf("%w: %q: empty parameter", ErrBadSpec, s)
	}

	switch family {
	case Tick, TIB, VIB, DIB, TRB, VRB, DRB:
		n, err := strconv.ParseInt(param, 10, 64)
		if err != nil || n <= 0 {
			return Spec{}, fmt.Errorf("%w: %q: expected positive integer parameter", ErrBadSpec, s)
		}
		return Spec{Family: family, Raw: param, IntParam: n}, nil

	case Volume, Dollar:
		if !isDecimalLiteral(param) {
			return Spec{}, fmt.Errorf("%w: %q: expected decimal parameter", ErrBadSpec, s)
		}
		return Spec{Family: family, Raw: param, DecimalParam: param}, nil

	case Time:
		d, err := parseTimeSuffix(param)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: %q: %v", ErrBadSpec, s, err)
		}
		return Spec{Family: family, Raw: param, Period: d}, nil

	default:
		return Spec{}, fmt.Errorf("%w: %q: unknown family %q", ErrBadSpec, s, family)
	}
}

func isDecimalLiteral(s string) bool {
	if s == "" {
		return false
	}
	seenDot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && !seenDot:
			seenDot = true
		case r == '-' && i == 0:
		default:
			return false
		}
	}
	return true
}

// parseTimeSuffix parses "30s", "5m", "1h", "1d" per spec.md's time-bar
// suffix grammar.
func parseTimeSuffix(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("too short")
	}
	unit := s[len(s)-1]
	numPart := s[:len(s)-1]
	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("expected positive integer before unit suffix")
	}
	switch unit {
	case 's':
		return time.Duration(n) * time.Second, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown time unit suffix %q (want s, m, h, d)", string(unit))
	}
}
