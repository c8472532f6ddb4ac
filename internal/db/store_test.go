package db

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
	"github.com/ALT-F4-LLC/rmaboard/internal/tracker"
)

func mustStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(mustInit(t))
}

func intPtr(v int) *int { return &v }

func sampleDocument() *model.Document {
	created := time.Date(2026, 5, 4, 8, 30, 0, 123456789, time.UTC)
	done := created.Add(48 * time.Hour)

	t1 := &model.Ticket{
		ID:         "T1",
		RMANumber:  "RMA-2026-001",
		CustomerID: "c1",
		Item:       "Tube amp",
		Reason:     "Hum at idle",
		Notes:      "Replaced filter caps",
		Priority:   model.PriorityHigh,
		AssignedTo: "sam",
		Status:     model.StatusCompleted,
		StatusHistory: []model.StatusEntry{
			{ColumnID: "backlog", EnteredAt: created},
			{ColumnID: "done", EnteredAt: done},
		},
		RelatedTickets: []model.RelationshipEdge{
			{TargetID: "T2", Type: model.RelationParent, Note: "same chassis"},
			{TargetID: "gone", Type: model.RelationRelated},
		},
		ExternalLinks: []model.ExternalLink{{URL: "https://example.test/schematic", Label: "schematic"}},
		CustomFields:  map[string]string{"serial": "SN-1"},
		Attachments:   []model.Attachment{{Filename: "hum.jpg", URL: "file:///tmp/hum.jpg", Type: "image/jpeg"}},
		GroupColor:    "#FF0000",
		GroupColors:   []model.GroupColor{{GroupID: "group-T1-T2", Color: "#FF0000"}},
		Activity: []model.Activity{
			{ID: "a1", Type: model.ActivityCreated, Author: "sam", Timestamp: created, Text: "created"},
			{ID: "a2", Type: model.ActivityNote, Timestamp: done, Text: "shipped"},
		},
		CreatedAt:   created,
		UpdatedAt:   done,
		CompletedAt: &done,
	}
	t2 := &model.Ticket{
		ID:        "T2",
		RMANumber: "RMA-2026-002",
		Item:      "Cabinet",
		Reason:    "Rattle",
		Status:    model.StatusNew,
		StatusHistory: []model.StatusEntry{
			{ColumnID: model.IncomingColumnID, EnteredAt: created},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
	t2.EnsureCollections()

	return &model.Document{
		Version: model.DocumentVersion,
		Tickets: []*model.Ticket{t1, t2},
		Customers: []*model.Customer{
			{ID: "c1", Slug: "acme", CompanyName: "Acme", ContactEmail: "ops@acme.test", City: "Austin"},
		},
		Board: &model.Board{
			Columns: []*model.Column{
				{ID: model.IncomingColumnID, Name: "Incoming", TicketIDs: []string{"T2"}, IsIncoming: true},
				{ID: "backlog", Name: "Backlog", WipLimit: intPtr(3), TicketIDs: []string{}, DefaultForNewTickets: true},
				{ID: "done", Name: "Done", TicketIDs: []string{"T1"}},
			},
			ColumnOrder: []string{model.IncomingColumnID, "backlog", "done"},
		},
	}
}

func TestLoadEmpty(t *testing.T) {
	s := mustStore(t)

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc != nil {
		t.Errorf("Load on empty database = %+v, want nil", doc)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := mustStore(t)
	want := sampleDocument()

	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil {
		t.Fatal("Load returned nil document")
	}

	if !reflect.DeepEqual(got.Customers, want.Customers) {
		t.Errorf("customers = %+v, want %+v", got.Customers, want.Customers)
	}
	if !reflect.DeepEqual(got.Board, want.Board) {
		t.Errorf("board = %+v, want %+v", got.Board, want.Board)
	}
	if len(got.Tickets) != 2 {
		t.Fatalf("got %d tickets, want 2", len(got.Tickets))
	}
	for i := range want.Tickets {
		if !reflect.DeepEqual(got.Tickets[i], want.Tickets[i]) {
			t.Errorf("ticket %d = %+v, want %+v", i, got.Tickets[i], want.Tickets[i])
		}
	}
}

func TestSaveReplacesPreviousState(t *testing.T) {
	s := mustStore(t)

	if err := s.Save(sampleDocument()); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	doc := sampleDocument()
	doc.Tickets = doc.Tickets[1:]
	doc.Board.Columns[2].TicketIDs = []string{}
	if err := s.Save(doc); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	n, err := CountTickets(s.DB())
	if err != nil {
		t.Fatalf("CountTickets: %v", err)
	}
	if n != 1 {
		t.Errorf("CountTickets = %d, want 1", n)
	}
}

func TestSaveRollsBackOnError(t *testing.T) {
	s := mustStore(t)
	if err := s.Save(sampleDocument()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	bad := sampleDocument()
	bad.Board.Columns[0].TicketIDs = []string{"T2", "nope"}
	if err := s.Save(bad); err == nil {
		t.Fatal("expected error placing an unknown ticket, got nil")
	}

	n, err := CountTickets(s.DB())
	if err != nil {
		t.Fatalf("CountTickets: %v", err)
	}
	if n != 2 {
		t.Errorf("CountTickets after failed save = %d, want 2", n)
	}
}

func TestLoadWithoutBoard(t *testing.T) {
	s := mustStore(t)
	doc := sampleDocument()
	doc.Board = nil
	if err := s.Save(doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Board != nil {
		t.Errorf("board = %+v, want nil so it is rebuilt from history", got.Board)
	}
}

func TestLoadKeepsEmptyBoard(t *testing.T) {
	s := mustStore(t)
	doc := &model.Document{
		Version:   model.DocumentVersion,
		Customers: []*model.Customer{{ID: "c1", Slug: "acme", CompanyName: "Acme"}},
		Board:     &model.Board{Columns: []*model.Column{}, ColumnOrder: []string{}},
	}
	if err := s.Save(doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Board == nil {
		t.Fatal("board = nil, want the saved empty layout")
	}
	if len(got.Board.Columns) != 0 || len(got.Board.ColumnOrder) != 0 {
		t.Errorf("board = %+v, want no columns", got.Board)
	}

	// Saving without a board drops the marker again.
	doc.Board = nil
	if err := s.Save(doc); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	got, err = s.Load()
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if got.Board != nil {
		t.Errorf("board = %+v after saving none, want nil", got.Board)
	}
}

func TestTrackerWithNoColumnsSurvivesReopen(t *testing.T) {
	s := mustStore(t)
	tr := tracker.New()
	for _, c := range tr.ListColumns() {
		if err := tr.RemoveColumn(c.ID); err != nil {
			t.Fatalf("RemoveColumn(%s): %v", c.ID, err)
		}
	}
	for _, c := range tr.ListColumns() {
		if err := tr.RemoveColumn(c.ID); err != nil {
			t.Fatalf("RemoveColumn(%s): %v", c.ID, err)
		}
	}
	if n := len(tr.ListColumns()); n != 0 {
		t.Fatalf("columns before save = %d, want 0", n)
	}
	if _, err := tr.AddCustomer(tracker.CustomerInput{CompanyName: "Acme"}); err != nil {
		t.Fatalf("AddCustomer: %v", err)
	}
	if err := tr.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := tracker.Open(s)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if cols := reopened.ListColumns(); len(cols) != 0 {
		names := make([]string, len(cols))
		for i, c := range cols {
			names[i] = c.Name
		}
		t.Errorf("columns after reopen = %v, want none", names)
	}
}

func TestLoadNormalizesStoredRelations(t *testing.T) {
	s := mustStore(t)
	doc := sampleDocument()
	if err := s.Save(doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.DB().Exec(
		"UPDATE ticket_relations SET relation_type = 'cousin' WHERE target_id = 'T2'",
	); err != nil {
		t.Fatalf("corrupting relation: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	edges := got.Tickets[0].RelatedTickets
	if len(edges) != 2 || edges[0].Type != model.RelationRelated || edges[0].Note != "same chassis" {
		t.Errorf("edges = %+v, want unknown type normalized to related", edges)
	}
}

func TestClearAllData(t *testing.T) {
	s := mustStore(t)
	if err := s.Save(sampleDocument()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := ClearAllData(s.DB()); err != nil {
		t.Fatalf("ClearAllData: %v", err)
	}

	for _, table := range dataTables {
		var count int
		if err := s.DB().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Fatalf("counting %s: %v", table, err)
		}
		if count != 0 {
			t.Errorf("%s has %d rows, want 0", table, count)
		}
	}

	v, err := SchemaVersion(s.DB())
	if err != nil {
		t.Fatalf("SchemaVersion after clear: %v", err)
	}
	if v != currentSchemaVersion {
		t.Errorf("schema_version = %d, want %d", v, currentSchemaVersion)
	}
}

func TestOpenStoreOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rmaboard.db")

	s, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	if err := s.Save(sampleDocument()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = OpenStore(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer s.Close()

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Tickets) != 2 {
		t.Errorf("got %d tickets after reopen, want 2", len(doc.Tickets))
	}
}
