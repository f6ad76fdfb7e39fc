package stats

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/tuistop/internal/model"
	"github.com/verte-zerg/tuistop/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Rounds   []model.RoundAggregate
	Sessions []model.SessionAggregate
	Metrics  Metrics
}

// BuildReport loads and prepares data for stats rendering. Rounds and
// sessions are queried concurrently.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	var (
		rounds   []model.RoundAggregate
		sessions []model.SessionAggregate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rounds, err = st.ListRounds(gctx, cfg)
		return err
	})
	g.Go(func() error {
		var err error
		sessions, err = st.ListSessions(gctx, cfg)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(rounds) > cfg.Last {
		rounds = rounds[len(rounds)-cfg.Last:]
	}
	return Report{
		Rounds:   rounds,
		Sessions: sessions,
		Metrics:  RoundMetrics(rounds),
	}, nil
}
