// Package humanize formats rates for the statistics summary. It is
// like dustin/go-humanize.SI but with a fixed-width output.
package humanize

import "fmt"

// SI formats value using SI prefixes and the given unit, e.g.,
// SI(1250, "pkt/s") returns "  1.25 kpkt/s".
func SI(value float64, unit string) string {
	value, prefix := reduce(value)
	return fmt.Sprintf("%6.2f %s%s", value, prefix, unit)
}

var prefixes = []string{"", "k", "M", "G"}

// reduce reduces value to a base value and a unit prefix.
func reduce(value float64) (float64, string) {
	idx := 0
	for value >= 1e03 && idx < len(prefixes)-1 {
		value /= 1e03
		idx++
	}
	return value, prefixes[idx]
}
