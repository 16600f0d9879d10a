package audit

import (
	"testing"
	"time"
)

func TestRecord_RequiresOperationAndTarget(t *testing.T) {
	rec := NewRecorder()

	if err := rec.Record(Entry{TargetID: 1}); err == nil {
		t.Fatal("expected error for missing operation")
	}
	if err := rec.Record(Entry{Operation: "delete_user"}); err == nil {
		t.Fatal("expected error for missing target id")
	}
	if rec.Len() != 0 {
		t.Fatalf("invalid entries must not be stored, got %d", rec.Len())
	}
}

func TestEntries_NewestFirst(t *testing.T) {
	rec := NewRecorder()

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := rec.Record(Entry{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Operation: "cancel_order",
			TargetID:  uint64(i + 1),
		})
		if err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	entries := rec.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].TargetID != 3 || entries[2].TargetID != 1 {
		t.Fatalf("expected newest first, got %v", entries)
	}
}

func TestEntries_ReturnsCopy(t *testing.T) {
	rec := NewRecorder()
	if err := rec.Record(Entry{Operation: "delete_user", TargetID: 9}); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	entries := rec.Entries()
	entries[0].Operation = "tampered"

	if got := rec.Entries()[0].Operation; got != "delete_user" {
		t.Fatalf("stored entry mutated through returned slice: %s", got)
	}
}

func TestRecord_DefaultsTimestamp(t *testing.T) {
	rec := NewRecorder()
	if err := rec.Record(Entry{Operation: "adjust_balance", TargetID: 4}); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if rec.Entries()[0].Timestamp.IsZero() {
		t.Fatal("expected timestamp to be filled in")
	}
}
