package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tuistop/internal/model"
	"github.com/verte-zerg/tuistop/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "tuistop.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).UTC().Add(time.Duration(i) * time.Minute)
		diff := int64(i * 40)
		id, err := st.InsertRound(ctx, model.RoundRecord{
			SessionID:   "session",
			Player:      "ana",
			StartedAt:   start,
			EndedAt:     start.Add(5 * time.Second),
			TargetMs:    5000,
			ToleranceMs: 50,
			FinalMs:     5000 + diff,
			DiffMs:      diff,
			Success:     diff <= 50,
		})
		if err != nil {
			t.Fatalf("insert round: %v", err)
		}
		ids = append(ids, id)
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Player: "ana", Last: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(report.Rounds))
	}
	if report.Rounds[0].RoundID != ids[1] || report.Rounds[1].RoundID != ids[2] {
		t.Fatalf("unexpected round ids: %+v", report.Rounds)
	}
	if report.Metrics.Rounds != 2 || report.Metrics.Hits != 1 {
		t.Fatalf("unexpected metrics: %+v", report.Metrics)
	}
	if len(report.Sessions) != 1 || report.Sessions[0].Rounds != 3 {
		t.Fatalf("unexpected sessions: %+v", report.Sessions)
	}
}
