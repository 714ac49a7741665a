package journal

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/efreitasn/stockserver/internal/domain"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "data", "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournal_RecordAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	now := time.Now().UTC()

	recs := []domain.TransactionRecord{
		{RequestID: "r1", Kind: domain.TransactionCreate, Stock: "ACME", Amount: 100, Outcome: "created", Message: "Stock ACME created with balance = 100", CompletedAt: now},
		{RequestID: "r2", Kind: domain.TransactionBuy, Stock: "ACME", Amount: 40, Outcome: "ok", Message: "Stock ACME's balance updated", Duration: 3 * time.Millisecond, CompletedAt: now},
	}
	for _, rec := range recs {
		if err := j.Record(ctx, rec); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	entries, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].RequestID != "r2" || entries[1].RequestID != "r1" {
		t.Fatalf("expected newest first, got %q then %q", entries[0].RequestID, entries[1].RequestID)
	}
	if entries[0].Kind != "buy" || entries[0].Amount != 40 || entries[0].DurationMicros != 3000 {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestJournal_RecentLimit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = j.Record(ctx, domain.TransactionRecord{
			RequestID: fmt.Sprintf("r%d", i),
			Kind:      domain.TransactionStatus,
			Stock:     "ACME",
			Outcome:   "ok",
		})
	}

	entries, err := j.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
}

func TestJournal_ConcurrentRecord(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := j.Record(ctx, domain.TransactionRecord{RequestID: id, Kind: domain.TransactionSell, Outcome: "ok"}); err != nil {
				errs <- err
			}
		}(fmt.Sprintf("r%d", i))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent record: %v", err)
	}
	entries, _ := j.Recent(ctx, 100)
	if len(entries) != 50 {
		t.Fatalf("expected 50 entries, got %d", len(entries))
	}
}
