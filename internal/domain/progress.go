package domain

// Progress is reported after every block written
type Progress struct {
	Downloaded int64
	Total      int64
}

// TotalKnown returns true if the expected size is known
func (p Progress) TotalKnown() bool {
	return p.Total >= 0
}

// Fraction returns completion in [0,1], or -1 if the total is unknown
func (p Progress) Fraction() float64 {
	if !p.TotalKnown() {
		return -1
	}
	if p.Total == 0 {
		return 1
	}
	return float64(p.Downloaded) / float64(p.Total)
}
