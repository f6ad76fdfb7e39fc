package game

import "sync"

// UserScore is the cumulative score of the single local player.
type UserScore struct {
	Player     string
	TotalScore int64
}

// ScoreStore owns the cumulative score. It outlives any single round.
type ScoreStore struct {
	mu    sync.RWMutex
	score UserScore
	watch latest[UserScore]
}

// NewScoreStore returns a store for player starting at zero.
func NewScoreStore(player string) *ScoreStore {
	return &ScoreStore{score: UserScore{Player: player}}
}

// Snapshot returns the current score.
func (s *ScoreStore) Snapshot() UserScore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.score
}

// AddPoint adds points to the total and returns the new total.
func (s *ScoreStore) AddPoint(points int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.score.TotalScore += points
	s.watch.publish(s.score)
	return s.score.TotalScore
}

// Subscribe returns a channel that always yields the newest score.
func (s *ScoreStore) Subscribe() <-chan UserScore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.watch.subscribe(s.score)
}
