package eval

import "time"

// startTimer returns a stop function yielding elapsed seconds, for
// feeding metrics.EvaluationDuration.
func startTimer() func() float64 {
	start := time.Now()
	return func() float64 {
		return time.Since(start).Seconds()
	}
}
