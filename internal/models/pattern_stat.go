package models

import "time"

// PatternStat is the persisted reliability aggregate for a named heuristic
// pattern. It is written only by the settlement flow; the signal pipeline
// reads it to weight pattern-backed confidence.
type PatternStat struct {
	ID               int64     `db:"id" json:"id"`
	PatternName      string    `db:"pattern_name" json:"pattern_name" validate:"required"`
	Occurrences      int       `db:"occurrences" json:"occurrences"`
	Wins             int       `db:"wins" json:"wins"`
	Losses           int       `db:"losses" json:"losses"`
	ReliabilityScore float64   `db:"reliability_score" json:"reliability_score"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// WinRate returns the empirical win rate, or the 0.5 neutral prior when the
// pattern has never been observed
func (p *PatternStat) WinRate() float64 {
	if p.Occurrences == 0 {
		return 0.5
	}
	return float64(p.Wins) / float64(p.Occurrences)
}

// Record applies one resolved outcome to the aggregate
func (p *PatternStat) Record(won bool) {
	p.Occurrences++
	if won {
		p.Wins++
	} else {
		p.Losses++
	}
	p.ReliabilityScore = float64(p.Wins) / float64(p.Occurrences)
}
