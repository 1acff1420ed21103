package gesture

import (
	"math"
	"time"
)

// ActionStats counts accepted movement fires over a session.
type ActionStats struct {
	Counts   map[Action]int
	Duration time.Duration
}

// NewActionStats returns zeroed statistics.
func NewActionStats() ActionStats {
	counts := make(map[Action]int, len(Movements))
	for _, a := range Movements {
		counts[a] = 0
	}
	return ActionStats{Counts: counts}
}

// Record counts one fire of a. Only movements are counted.
func (s *ActionStats) Record(a Action) {
	if s.Counts == nil {
		*s = NewActionStats()
	}
	if _, ok := s.Counts[a]; ok {
		s.Counts[a]++
	}
}

// Count returns the number of fires of a.
func (s ActionStats) Count(a Action) int {
	return s.Counts[a]
}

// Total returns the number of counted fires.
func (s ActionStats) Total() int {
	total := 0
	for _, a := range Movements {
		total += s.Counts[a]
	}
	return total
}

// Clone returns a deep copy.
func (s ActionStats) Clone() ActionStats {
	c := NewActionStats()
	for a, n := range s.Counts {
		c.Counts[a] = n
	}
	c.Duration = s.Duration
	return c
}

// Report converts the statistics to the session summary record.
func (s ActionStats) Report() Report {
	return Report{
		Jump:      s.Counts[Jump],
		Duck:      s.Counts[Duck],
		Left:      s.Counts[Left],
		Right:     s.Counts[Right],
		TotalTime: int(math.Round(s.Duration.Seconds())),
	}
}

// Report is the session summary emitted once at session end.
type Report struct {
	Jump      int `json:"JUMP"`
	Duck      int `json:"DUCK"`
	Left      int `json:"LEFT"`
	Right     int `json:"RIGHT"`
	TotalTime int `json:"TOTAL_TIME"` // seconds
}

// Total returns the number of movement fires in the report.
func (r Report) Total() int {
	return r.Jump + r.Duck + r.Left + r.Right
}
