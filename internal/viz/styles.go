package viz

import (
	"strings"
)

var (
	eighths = []rune{'▏', '▎', '▍', '▌', '▋', '▊', '▉'}
	levels  = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
)

// ProgressBar renders fraction (0..1) as a bar of width cells, with eighth
// blocks for the partial cell.
func ProgressBar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	fraction = max(0, min(1, fraction))
	units := int(fraction * float64(width*8))
	full, part := units/8, units%8

	var b strings.Builder
	b.WriteString(strings.Repeat("█", full))
	rest := width - full
	if part > 0 {
		b.WriteRune(eighths[part-1])
		rest--
	}
	b.WriteString(strings.Repeat("░", rest))
	return b.String()
}

// Sparkline renders values as a one-line chart of at most width cells. Each
// cell shows the peak of its bucket so short spikes stay visible.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(0, width))
	}

	n := min(width, len(values))
	peaks := make([]float64, n)
	for i := range peaks {
		lo, hi := i*len(values)/n, (i+1)*len(values)/n
		peaks[i] = values[lo]
		for _, v := range values[lo:hi] {
			peaks[i] = max(peaks[i], v)
		}
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	out := make([]rune, n)
	for i, v := range peaks {
		idx := int((v - lo) / span * float64(len(levels)-1))
		out[i] = levels[max(0, min(len(levels)-1, idx))]
	}
	return string(out)
}
