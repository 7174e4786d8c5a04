package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shortsync/shortsync/internal/db"
)

func testLedger(t *testing.T) *Ledger {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "history.sqlite"))
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return New(database.DB)
}

func TestRecordAndRecent(t *testing.T) {
	l := testLedger(t)

	runs := []Run{
		{RunID: "run-1", StartedAt: time.Unix(1000, 0), Created: 1},
		{RunID: "run-2", StartedAt: time.Unix(2000, 0), DryRun: true, Updated: 2, Errors: []string{"Failed to delete x: 500"}},
	}
	for _, run := range runs {
		if err := l.Record(run); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := l.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent() returned %d runs, want 2", len(got))
	}
	// Newest first.
	if got[0].RunID != "run-2" || got[1].RunID != "run-1" {
		t.Errorf("order = %q, %q", got[0].RunID, got[1].RunID)
	}
	if !got[0].DryRun || got[0].Updated != 2 {
		t.Errorf("run-2 = %+v", got[0])
	}
	if len(got[0].Errors) != 1 || got[0].Errors[0] != "Failed to delete x: 500" {
		t.Errorf("Errors = %v", got[0].Errors)
	}
	if len(got[1].Errors) != 0 {
		t.Errorf("run-1 Errors = %v, want none", got[1].Errors)
	}
}

func TestRecent_Limit(t *testing.T) {
	l := testLedger(t)

	for i := 0; i < 5; i++ {
		run := Run{RunID: string(rune('a' + i)), StartedAt: time.Unix(int64(i*100), 0)}
		if err := l.Record(run); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := l.Recent(3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Recent(3) returned %d runs", len(got))
	}
}
