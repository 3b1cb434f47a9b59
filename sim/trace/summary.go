package trace

// Summary aggregates one episode's step records.
type Summary struct {
	Steps          int
	CompleteSteps  int
	ValidRatio     map[string]float64 // sensor name → fraction of steps with a valid sample
	FirstCompleteT float64            // sim time of the first complete step (-1 if never)
}

// Summarize computes aggregate statistics from step records.
// Safe for empty input (returns zero-value fields).
func Summarize(steps []StepRecord) Summary {
	summary := Summary{
		ValidRatio:     make(map[string]float64),
		FirstCompleteT: -1,
	}
	if len(steps) == 0 {
		return summary
	}

	counts := make(map[string]int)
	seen := make(map[string]bool)
	for _, s := range steps {
		summary.Steps++
		if s.Complete {
			summary.CompleteSteps++
			if summary.FirstCompleteT < 0 {
				summary.FirstCompleteT = s.Time
			}
		}
		for name, valid := range s.Valid {
			seen[name] = true
			if valid {
				counts[name]++
			}
		}
	}

	// Sensors that never produced a valid sample still appear, at 0.
	for name := range seen {
		summary.ValidRatio[name] = float64(counts[name]) / float64(summary.Steps)
	}
	return summary
}
