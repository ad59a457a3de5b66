package db

import (
	"testing"
	"time"
)

func TestInsertEvent_FillsIDAndTime(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	e := &Event{
		SessionID:    "abc",
		Action:       ActionSave,
		SessionPath:  "/p/abc.jsonl",
		BackupID:     "abc.2024-01-02T03-04-05.000Z.jsonl",
		LinesWritten: 3,
		LinesRemoved: 1,
	}
	if err := InsertEvent(db, e); err != nil {
		t.Fatalf("InsertEvent failed: %v", err)
	}
	if len(e.ID) != 26 {
		t.Errorf("ID length = %d, want 26 (ULID)", len(e.ID))
	}
	if e.CreatedAt == 0 {
		t.Error("CreatedAt should be set")
	}

	events, err := ListEvents(db, "abc", 10)
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	got := events[0]
	if got.ID != e.ID || got.BackupID != e.BackupID || got.LinesWritten != 3 || got.LinesRemoved != 1 {
		t.Errorf("event = %+v, want %+v", got, *e)
	}
}

func TestInsertEvent_NullBackupID(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	if err := InsertEvent(db, &Event{SessionID: "abc", Action: ActionRestore, SessionPath: "/p"}); err != nil {
		t.Fatalf("InsertEvent failed: %v", err)
	}

	var isNull bool
	if err := db.QueryRow("SELECT backup_id IS NULL FROM events").Scan(&isNull); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !isNull {
		t.Error("backup_id should be stored as NULL when empty")
	}
}

func TestListEvents_OrderAndLimit(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	for i := 0; i < 3; i++ {
		e := &Event{
			SessionID:   "abc",
			Action:      ActionSave,
			SessionPath: "/p",
			CreatedAt:   base + int64(i),
		}
		if err := InsertEvent(db, e); err != nil {
			t.Fatalf("InsertEvent failed: %v", err)
		}
	}
	if err := InsertEvent(db, &Event{SessionID: "other", Action: ActionSave, SessionPath: "/q"}); err != nil {
		t.Fatalf("InsertEvent failed: %v", err)
	}

	events, err := ListEvents(db, "abc", 2)
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].CreatedAt != base+2 || events[1].CreatedAt != base+1 {
		t.Errorf("events not newest-first: %d, %d", events[0].CreatedAt, events[1].CreatedAt)
	}

	all, err := ListEvents(db, "abc", 0)
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(all) = %d, want 3", len(all))
	}
}

func TestListEvents_Empty(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	events, err := ListEvents(db, "nobody", 0)
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if events == nil || len(events) != 0 {
		t.Errorf("events = %v, want empty non-nil slice", events)
	}
}

func TestNewEventID(t *testing.T) {
	a, err := NewEventID(time.Now())
	if err != nil {
		t.Fatalf("NewEventID failed: %v", err)
	}
	b, err := NewEventID(time.Now())
	if err != nil {
		t.Fatalf("NewEventID failed: %v", err)
	}
	if a == b {
		t.Errorf("NewEventID returned duplicate %q", a)
	}
}
