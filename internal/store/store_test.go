package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tuistop/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "tuistop.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListRounds(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	records := []model.RoundRecord{
		{SessionID: "s1", Player: "ana", TargetMs: 1000, ToleranceMs: 50, FinalMs: 1020, DiffMs: 20, Success: true},
		{SessionID: "s1", Player: "ana", TargetMs: 1000, ToleranceMs: 50, FinalMs: 1100, DiffMs: 100},
		{SessionID: "s2", Player: "bo", TargetMs: 2000, ToleranceMs: 0, FinalMs: 2000, DiffMs: 0, Success: true},
	}
	for i := range records {
		records[i].StartedAt = base.Add(time.Duration(i) * time.Minute)
		records[i].EndedAt = records[i].StartedAt.Add(time.Second)
		if _, err := st.InsertRound(ctx, records[i]); err != nil {
			t.Fatalf("insert round %d: %v", i, err)
		}
	}

	rounds, err := st.ListRounds(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list rounds: %v", err)
	}
	if len(rounds) != 3 {
		t.Fatalf("expected 3 rounds, got %d", len(rounds))
	}
	if !rounds[0].Success || rounds[1].Success || rounds[1].DiffMs != 100 {
		t.Fatalf("unexpected rounds: %+v", rounds)
	}

	anaRounds, err := st.ListRounds(ctx, model.StatsConfig{Player: "ana"})
	if err != nil {
		t.Fatalf("list ana rounds: %v", err)
	}
	if len(anaRounds) != 2 {
		t.Fatalf("expected 2 rounds for ana, got %d", len(anaRounds))
	}

	since := base.Add(90 * time.Second)
	recent, err := st.ListRounds(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list recent rounds: %v", err)
	}
	if len(recent) != 1 || recent[0].SessionID != "s2" {
		t.Fatalf("unexpected recent rounds: %+v", recent)
	}
}

func TestListSessionsAggregates(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	diffs := []int64{30, 0, 120}
	for i, diff := range diffs {
		start := base.Add(time.Duration(i) * time.Second)
		_, err := st.InsertRound(ctx, model.RoundRecord{
			SessionID:   "s1",
			Player:      "ana",
			StartedAt:   start,
			EndedAt:     start.Add(500 * time.Millisecond),
			TargetMs:    1000,
			ToleranceMs: 50,
			FinalMs:     1000 + diff,
			DiffMs:      diff,
			Success:     diff <= 50,
		})
		if err != nil {
			t.Fatalf("insert round: %v", err)
		}
	}

	sessions, err := st.ListSessions(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	got := sessions[0]
	if got.Rounds != 3 || got.Hits != 2 || got.DiffSumMs != 150 || got.BestDiffMs != 0 || got.WorstDiffMs != 120 {
		t.Fatalf("unexpected aggregate: %+v", got)
	}
	if got.Player != "ana" || !got.StartedAt.Equal(base) {
		t.Fatalf("unexpected session metadata: %+v", got)
	}
}
