package perf

import (
	"testing"
	"time"
)

func TestComputeP95(t *testing.T) {
	samples := []time.Duration{
		1 * time.Millisecond,
		2 * time.Millisecond,
		3 * time.Millisecond,
		4 * time.Millisecond,
		5 * time.Millisecond,
	}
	if got := computeP95(samples, len(samples), true); got != 5*time.Millisecond {
		t.Fatalf("expected p95=5ms, got %s", got)
	}

	partial := []time.Duration{9 * time.Millisecond, 1 * time.Millisecond, 5 * time.Millisecond, 0}
	if got := computeP95(partial, 3, false); got != 9*time.Millisecond {
		t.Fatalf("expected p95=9ms for partial window, got %s", got)
	}
	if got := computeP95(nil, 0, false); got != 0 {
		t.Fatalf("expected 0 for empty window, got %s", got)
	}
}

func TestSnapshotAndReset(t *testing.T) {
	restore := EnableForTest()
	defer restore()

	Record("b", 50*time.Millisecond)
	Record("a", 10*time.Millisecond)
	Record("b", 150*time.Millisecond)
	Count(CounterParseAnomaly, 1)
	Count(CounterParseAnomaly, 2)
	Count("zero", 0)

	stats, counters := Snapshot()
	if len(stats) != 2 || stats[0].Name != "a" || stats[1].Name != "b" {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats[1].Count != 2 || stats[1].Avg != 100*time.Millisecond {
		t.Fatalf("unexpected b stat: %+v", stats[1])
	}
	if stats[1].Min != 50*time.Millisecond || stats[1].Max != 150*time.Millisecond {
		t.Fatalf("unexpected b min/max: %+v", stats[1])
	}
	if len(counters) != 1 || counters[0].Name != CounterParseAnomaly || counters[0].Value != 3 {
		t.Fatalf("unexpected counters: %+v", counters)
	}

	stats, counters = Snapshot()
	if len(stats) != 0 || len(counters) != 0 {
		t.Fatalf("expected reset after snapshot, got %+v %+v", stats, counters)
	}
}

func TestDisabledIsNoop(t *testing.T) {
	restore := EnableForTest()
	enabled.Store(false)
	defer restore()

	Count("x", 5)
	Time("y")()
	stats, counters := Snapshot()
	if len(stats) != 0 || len(counters) != 0 {
		t.Fatalf("expected nothing collected while disabled")
	}
}

func TestEnvEnabled(t *testing.T) {
	for _, tc := range []struct {
		val  string
		want bool
	}{{"", false}, {"0", false}, {"no", false}, {"1", true}, {"yes", true}} {
		t.Setenv(envEnable, tc.val)
		if got := envEnabled(); got != tc.want {
			t.Errorf("envEnabled(%q) = %v, want %v", tc.val, got, tc.want)
		}
	}
}

func TestEnvLogInterval(t *testing.T) {
	t.Setenv(envIntervalMs, "250")
	if got := envLogInterval(); got != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", got)
	}
	t.Setenv(envIntervalMs, "bogus")
	if got := envLogInterval(); got != defaultLogIntervalMs*time.Millisecond {
		t.Fatalf("expected default interval, got %s", got)
	}
}
