package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, outcome := range []string{OutcomeOK, OutcomeDegraded, OutcomeLoadError} {
		_, err := store.Record(ctx, Run{
			TracePath: "frame.trace",
			Tracers:   "xgl",
			Packets:   10 + i,
			Replayed:  9,
			Failed:    i,
			Outcome:   outcome,
			Duration:  1500 * time.Millisecond,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].Outcome != OutcomeLoadError || runs[1].Outcome != OutcomeDegraded {
		t.Fatalf("order = %s, %s", runs[0].Outcome, runs[1].Outcome)
	}
	if runs[0].Packets != 12 || runs[0].Duration != 1500*time.Millisecond || !runs[0].CreatedAt.Equal(base.Add(2*time.Minute)) {
		t.Fatalf("run = %+v", runs[0])
	}
}

func TestRecordValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if _, err := store.Record(ctx, Run{Outcome: OutcomeOK}); err == nil {
		t.Fatal("expected error for missing trace path")
	}
	if _, err := store.Record(ctx, Run{TracePath: "x.trace"}); err == nil {
		t.Fatal("expected error for missing outcome")
	}
	if _, err := store.List(ctx, 0); err == nil {
		t.Fatal("expected error for zero limit")
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}
