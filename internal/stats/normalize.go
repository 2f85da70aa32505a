package stats

import "math"

// ComputeDistribution returns the mean and sample standard deviation of
// every window and category across all entities of the table. NaN values
// are skipped. Fewer than two values leave the deviation NaN.
func ComputeDistribution(table Table) Distribution {
	columns := make(map[Window]map[string]struct{}, len(Windows))
	for _, p := range table {
		for w, row := range p {
			if columns[w] == nil {
				columns[w] = make(map[string]struct{}, len(row))
			}
			for name := range row {
				columns[w][name] = struct{}{}
			}
		}
	}

	dist := Distribution{
		Mean:      make(Profile, len(columns)),
		Deviation: make(Profile, len(columns)),
	}
	values := make([]float64, 0, len(table))
	for w, names := range columns {
		means := make(Row, len(names))
		devs := make(Row, len(names))
		for name := range names {
			values = values[:0]
			for _, p := range table {
				values = append(values, p.Value(w, name))
			}
			means[name], devs[name] = MeanDeviation(values)
		}
		dist.Mean[w] = means
		dist.Deviation[w] = devs
	}
	return dist
}

// MeanDeviation returns the mean and sample (n-1) standard deviation of the
// non-NaN values.
func MeanDeviation(values []float64) (mean, deviation float64) {
	var sum float64
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	mean = sum / float64(n)
	if n < 2 {
		return mean, math.NaN()
	}

	var sumSq float64
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		diff := v - mean
		sumSq += diff * diff
	}
	return mean, math.Sqrt(sumSq / float64(n-1))
}

// ZScore is NaN when any operand is NaN or the deviation is zero.
func ZScore(value, mean, deviation float64) float64 {
	if math.IsNaN(value) || math.IsNaN(mean) || math.IsNaN(deviation) || deviation == 0 {
		return math.NaN()
	}
	return (value - mean) / deviation
}

// Normalize rescales every value of the table against the distribution.
func Normalize(table Table, dist Distribution) Table {
	out := make(Table, len(table))
	for name, p := range table {
		np := make(Profile, len(p))
		for w, row := range p {
			nr := make(Row, len(row))
			for cat, v := range row {
				nr[cat] = ZScore(v, dist.Mean.Value(w, cat), dist.Deviation.Value(w, cat))
			}
			np[w] = nr
		}
		out[name] = np
	}
	return out
}
