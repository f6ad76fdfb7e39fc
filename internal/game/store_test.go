package game

import "testing"

func TestConfigStoreSetReplacesWholesale(t *testing.T) {
	s := NewConfigStore(Config{TargetMs: 1000, ToleranceMs: 50})
	sub := s.Subscribe()
	if got := <-sub; got.TargetMs != 1000 {
		t.Fatalf("expected initial value on subscribe, got %+v", got)
	}

	s.Set(Config{TargetMs: 2000})
	s.Set(Config{TargetMs: 3000, ToleranceMs: 5})
	if got := s.Get(); got != (Config{TargetMs: 3000, ToleranceMs: 5}) {
		t.Fatalf("unexpected current config %+v", got)
	}
	if got := <-sub; got.TargetMs != 3000 {
		t.Fatalf("expected latest value only, got %+v", got)
	}
	select {
	case got := <-sub:
		t.Fatalf("expected no buffered history, got %+v", got)
	default:
	}
}

func TestScoreStoreAddPoint(t *testing.T) {
	s := NewScoreStore("ana")
	sub := s.Subscribe()
	<-sub
	if got := s.AddPoint(1); got != 1 {
		t.Fatalf("expected total 1, got %d", got)
	}
	if got := s.AddPoint(1); got != 2 {
		t.Fatalf("expected total 2, got %d", got)
	}
	snap := <-sub
	if snap.Player != "ana" || snap.TotalScore != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}
