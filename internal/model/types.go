// Package model defines shared data structures.
package model

import "time"

// Settings defines play settings resolved from flags and the config file.
type Settings struct {
	Player       string
	TargetMs     int64
	ToleranceMs  int64
	TickMs       int64
	RandomTarget bool
	RandomMinMs  int64
	RandomMaxMs  int64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Player      string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// RoundRecord captures an evaluated round for the round log.
type RoundRecord struct {
	SessionID   string
	Player      string
	StartedAt   time.Time
	EndedAt     time.Time
	TargetMs    int64
	ToleranceMs int64
	FinalMs     int64
	DiffMs      int64
	Success     bool
}

// RoundAggregate is a logged round as read back for reporting.
type RoundAggregate struct {
	RoundID     int64
	SessionID   string
	EndedAt     time.Time
	TargetMs    int64
	ToleranceMs int64
	FinalMs     int64
	DiffMs      int64
	Success     bool
}

// SessionAggregate summarizes the rounds of one process run.
type SessionAggregate struct {
	SessionID   string
	Player      string
	StartedAt   time.Time
	EndedAt     time.Time
	Rounds      int
	Hits        int
	DiffSumMs   int64
	BestDiffMs  int64
	WorstDiffMs int64
}
