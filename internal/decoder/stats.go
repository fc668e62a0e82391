package decoder

import "fmt"

// Stats counts decode outcomes since startup.
type Stats struct {
	Captures  int
	Decoded   int
	Noise     int
	Unknown   int
	Stale     int
	Overflows int
}

// String returns the short form, e.g. "captures: 12, decoded: 10 (83.3%)".
func (s Stats) String() string {
	return fmt.Sprintf("captures: %d, decoded: %d (%s%%)",
		s.Captures, s.Decoded, percent(s.Decoded, s.Captures))
}

// Long returns every counter with its share of all captures.
func (s Stats) Long() string {
	return fmt.Sprintf("captures: %d, decoded: %d (%s%%), noise: %d (%s%%), unknown: %d (%s%%) [stale: %d, overflow: %d]",
		s.Captures,
		s.Decoded, percent(s.Decoded, s.Captures),
		s.Noise, percent(s.Noise, s.Captures),
		s.Unknown, percent(s.Unknown, s.Captures),
		s.Stale, s.Overflows)
}

func percent(n, total int) string {
	if total == 0 {
		return "-.-"
	}
	return fmt.Sprintf("%.1f", 100*float64(n)/float64(total))
}
