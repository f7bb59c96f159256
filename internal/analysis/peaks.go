package analysis

// Peaks returns the indices of strict interior local maxima of series.
// A plateau at the top counts once, at its first index.
func Peaks(series []float64) []int {
	var peaks []int
	for i := 1; i < len(series)-1; i++ {
		if series[i] <= series[i-1] {
			continue
		}
		j := i
		for j+1 < len(series) && series[j+1] == series[i] {
			j++
		}
		if j+1 < len(series) && series[j+1] < series[i] {
			peaks = append(peaks, i)
		}
		i = j
	}
	return peaks
}

// ArgMax returns the index of the largest element, or -1 for an empty series.
func ArgMax(series []float64) int {
	if len(series) == 0 {
		return -1
	}
	best := 0
	for i, v := range series {
		if v > series[best] {
			best = i
		}
	}
	return best
}
