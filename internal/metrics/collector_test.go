package metrics

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeSource struct{ p Progress }

func (f fakeSource) Progress() Progress { return f.p }

func TestCollectorCollectsOnStartBeforeFirstTick(t *testing.T) {
	c := NewCollector(time.Hour, zap.NewNop()).WithProgressSource(fakeSource{p: Progress{QueueDepth: 3, InFlight: 1, CellsEmitted: 7}})

	ctx, cancel := context.WithCancel(context.Background())
	go c.Start(ctx)
	defer cancel()

	deadline := time.After(time.Second)
	for {
		if snap := c.Last(); snap != nil {
			if snap.Progress.QueueDepth != 3 || snap.Progress.InFlight != 1 || snap.Progress.CellsEmitted != 7 {
				t.Fatalf("unexpected progress snapshot %+v", snap.Progress)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("collector never produced an initial snapshot")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestCollectorWithoutProgressSourceStillCollectsResourceMetrics(t *testing.T) {
	c := NewCollector(time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go c.Start(ctx)
	defer cancel()

	deadline := time.After(time.Second)
	for {
		if snap := c.Last(); snap != nil {
			if snap.Timestamp.IsZero() {
				t.Fatal("expected a stamped snapshot")
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("collector never produced a snapshot")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestNewCollectorRejectsSubSecondInterval(t *testing.T) {
	c := NewCollector(time.Millisecond, zap.NewNop())
	if c.interval != 30*time.Second {
		t.Fatalf("expected sub-second interval to fall back to 30s, got %v", c.interval)
	}
}
