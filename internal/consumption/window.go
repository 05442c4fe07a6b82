package consumption

import (
	"fmt"
	"strings"
)

// Window is a daily clock window [Start, End) in "HH:MM".
// Start == End is empty; Start > End wraps across midnight.
type Window struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// HourMask reports, for each hour of day, whether the hour starts inside the window.
func (w Window) HourMask() ([24]bool, error) {
	var mask [24]bool
	start, err := parseHHMM(w.Start)
	if err != nil {
		return mask, err
	}
	end, err := parseHHMM(w.End)
	if err != nil {
		return mask, err
	}
	for h := range mask {
		mask[h] = inWindow(h*60, start, end)
	}
	return mask, nil
}

// masks unions the hour masks of several windows.
func masks(ws []Window) ([24]bool, error) {
	var out [24]bool
	for _, w := range ws {
		m, err := w.HourMask()
		if err != nil {
			return out, err
		}
		for h := range out {
			out[h] = out[h] || m[h]
		}
	}
	return out, nil
}

func parseHHMM(s string) (int, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	var h, m int
	if _, err := fmt.Sscanf(parts[0], "%d", &h); err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &m); err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	// 24:00 closes a window at midnight.
	if h == 24 && m == 0 {
		return 24 * 60, nil
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}

// inWindow checks whether tMins is in [start, end) on a 24h clock.
// If start == end, the window is empty (always false).
// If start < end, it's a normal same-day window.
// If start > end, it wraps across midnight.
func inWindow(tMins, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return tMins >= start && tMins < end
	}
	// wrap
	return tMins >= start || tMins < end
}
