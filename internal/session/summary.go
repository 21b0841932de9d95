package session

// Summary holds the data displayed once a session is finished.
type Summary struct {
	TaskID   int
	Outcomes []bool
	Correct  int
	Total    int
	Accuracy int // percent, rounded

	// Reward as reported by the server. Zero when finalizing failed.
	Earned     int
	NewBalance int
	Accepted   bool // the server marked the task as passed

	// FinalizeErr is the completion call's failure. The summary is shown
	// regardless.
	FinalizeErr error
}

// Wrong returns the number of questions answered incorrectly.
func (s *Summary) Wrong() int {
	return s.Total - s.Correct
}

// Accuracy returns round(100 * correct / total), or 0 for an empty log.
func Accuracy(outcomes []bool, total int) int {
	if total <= 0 {
		return 0
	}
	correct := countTrue(outcomes)
	return int(float64(correct)*100/float64(total) + 0.5)
}

func countTrue(outcomes []bool) int {
	n := 0
	for _, ok := range outcomes {
		if ok {
			n++
		}
	}
	return n
}
