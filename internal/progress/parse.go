package progress

import (
	"regexp"
	"strconv"
	"strings"
)

// Update captures what a single engine output line revealed about progress.
// HasFraction and HasETA distinguish "parsed as zero" from "not present".
type Update struct {
	Fraction    float64
	HasFraction bool
	ETASeconds  int
	HasETA      bool
}

var (
	percentPattern  = regexp.MustCompile(`^\s*(\d+)%`)
	fractionPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)/(\d+(?:\.\d+)?)`)
	etaPattern      = regexp.MustCompile(`\[[0-9:]+\s*<\s*([0-9:]+)\s*,`)
)

// ParseLine extracts a progress fraction and an ETA from one line of engine
// output. Recognized forms, in priority order:
//
//	"61%|██ ..."           -> leading percentage
//	"146.25/239.85 ..."    -> current/total pair
//	"[01:14<00:47, 1.9x]"  -> bracketed elapsed<remaining pair (ETA only)
//
// A percentage suppresses fraction-pair parsing for the same line; the ETA is
// independent and may accompany either. Unrecognized lines yield a zero
// Update, never an error.
func ParseLine(line string) Update {
	s := strings.TrimSpace(line)
	var update Update

	if m := percentPattern.FindStringSubmatch(s); m != nil {
		if pct, err := strconv.Atoi(m[1]); err == nil {
			update.Fraction = clampFraction(float64(pct) / 100)
			update.HasFraction = true
		}
	} else if m := fractionPattern.FindStringSubmatch(s); m != nil {
		cur, errCur := strconv.ParseFloat(m[1], 64)
		total, errTotal := strconv.ParseFloat(m[2], 64)
		if errCur == nil && errTotal == nil && total > 0 {
			update.Fraction = clampFraction(cur / total)
			update.HasFraction = true
		}
	}

	if m := etaPattern.FindStringSubmatch(s); m != nil {
		if secs, ok := ParseClock(m[1]); ok {
			update.ETASeconds = secs
			update.HasETA = true
		}
	}

	return update
}

// ParseClock converts "H:MM:SS" or "MM:SS" into total seconds.
func ParseClock(value string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	var h, m, s int
	var err error
	switch len(parts) {
	case 3:
		if h, err = strconv.Atoi(parts[0]); err != nil {
			return 0, false
		}
		if m, err = strconv.Atoi(parts[1]); err != nil {
			return 0, false
		}
		if s, err = strconv.Atoi(parts[2]); err != nil {
			return 0, false
		}
	case 2:
		if m, err = strconv.Atoi(parts[0]); err != nil {
			return 0, false
		}
		if s, err = strconv.Atoi(parts[1]); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	total := h*3600 + m*60 + s
	if total < 0 {
		return 0, false
	}
	return total, true
}

// clampFraction keeps in-flight fractions inside [0, 0.99]; 1.0 is reserved
// for completed jobs.
func clampFraction(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 0.99 {
		return 0.99
	}
	return v
}
