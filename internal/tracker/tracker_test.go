package tracker

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ALT-F4-LLC/rmaboard/internal/filter"
	"github.com/ALT-F4-LLC/rmaboard/internal/kanban"
	"github.com/ALT-F4-LLC/rmaboard/internal/model"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func (c *clock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTracker(t *testing.T) (*Tracker, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)}
	return New(WithClock(c.Now), WithAuthor("tester")), c
}

func mustCreate(t *testing.T, tr *Tracker, item string) *model.Ticket {
	t.Helper()
	tk, err := tr.CreateTicket(TicketInput{CustomerID: "cust-1", Item: item, Reason: "broken"})
	require.NoError(t, err)
	return tk
}

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }

func columnTicketIDs(t *testing.T, tr *Tracker, colID string) []string {
	t.Helper()
	tickets, err := tr.TicketsInColumn(colID)
	require.NoError(t, err)
	ids := []string{}
	for _, tk := range tickets {
		ids = append(ids, tk.ID)
	}
	return ids
}

func TestCreateTicket(t *testing.T) {
	tr, _ := newTracker(t)

	tk, err := tr.CreateTicket(TicketInput{
		CustomerID:     "cust-1",
		Item:           " Tube amp ",
		Reason:         "hum",
		Priority:       model.PriorityHigh,
		RelatedTickets: []model.RawEdge{model.EdgeID("ghost")},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, tk.ID)
	assert.Equal(t, "RMA-2026-001", tk.RMANumber)
	assert.Equal(t, "Tube amp", tk.Item)
	assert.Equal(t, model.StatusNew, tk.Status)
	assert.Equal(t, tk.CreatedAt, tk.UpdatedAt)
	assert.Nil(t, tk.CompletedAt)
	assert.NotNil(t, tk.ExternalLinks)
	assert.NotNil(t, tk.CustomFields)
	require.Len(t, tk.RelatedTickets, 1)
	assert.Equal(t, model.RelationRelated, tk.RelatedTickets[0].Type)

	require.Len(t, tk.StatusHistory, 1)
	assert.Equal(t, model.IncomingColumnID, tk.StatusHistory[0].ColumnID)
	require.Len(t, tk.Activity, 1)
	assert.Equal(t, model.ActivityCreated, tk.Activity[0].Type)
	assert.Equal(t, "tester", tk.Activity[0].Author)

	assert.Len(t, tr.ListTickets(), 1)
	assert.Equal(t, []string{tk.ID}, columnTicketIDs(t, tr, model.IncomingColumnID))
	assert.Equal(t, uint64(1), tr.Version())
}

func TestCreateTicketValidation(t *testing.T) {
	tr, _ := newTracker(t)

	_, err := tr.CreateTicket(TicketInput{CustomerID: "c", Item: "  ", Priority: "Urgent"})
	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []string{"item", "reason", "priority"}, verr.Fields)
	assert.Contains(t, err.Error(), "item is required")

	assert.Empty(t, tr.ListTickets())
	_, ok := tr.board.Column(model.IncomingColumnID)
	assert.False(t, ok, "failed create must not touch the board")
	assert.Equal(t, uint64(0), tr.Version())
}

func TestCreateTicketRMANumbers(t *testing.T) {
	tr, c := newTracker(t)

	_, err := tr.CreateTicket(TicketInput{RMANumber: "RMA-2026-007", CustomerID: "c", Item: "a", Reason: "b"})
	require.NoError(t, err)
	next := mustCreate(t, tr, "b")
	assert.Equal(t, "RMA-2026-008", next.RMANumber)

	_, err = tr.CreateTicket(TicketInput{RMANumber: "rma-2026-008", CustomerID: "c", Item: "a", Reason: "b"})
	require.ErrorIs(t, err, ErrValidation)

	c.now = time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "RMA-2027-001", mustCreate(t, tr, "c").RMANumber)

	prefixed := New(WithClock(c.Now), WithRMAPrefix("RX"))
	tk, err := prefixed.CreateTicket(TicketInput{CustomerID: "c", Item: "a", Reason: "b"})
	require.NoError(t, err)
	assert.Equal(t, "RX-2027-001", tk.RMANumber)
}

func TestCreateTicketDefaultColumn(t *testing.T) {
	tr, _ := newTracker(t)
	require.NoError(t, tr.SetDefaultColumn("backlog"))

	tk := mustCreate(t, tr, "amp")
	assert.Equal(t, []string{tk.ID}, columnTicketIDs(t, tr, "backlog"))
	for _, col := range tr.ListColumns() {
		assert.NotEqual(t, model.IncomingColumnID, col.ID)
	}
}

func TestUpdateTicketCompletion(t *testing.T) {
	tr, c := newTracker(t)
	tk := mustCreate(t, tr, "amp")

	c.advance(time.Hour)
	done := c.now
	got, err := tr.UpdateTicket(tk.ID, TicketPatch{Status: strPtr(model.StatusCompleted), Notes: strPtr("replaced caps")})
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, done, *got.CompletedAt)
	assert.Equal(t, "replaced caps", got.Notes)
	assert.Equal(t, done, got.UpdatedAt)
	assert.Equal(t, model.ActivityStatus, got.Activity[len(got.Activity)-1].Type)

	// re-completing keeps the first completion time
	c.advance(time.Hour)
	got, err = tr.UpdateTicket(tk.ID, TicketPatch{Status: strPtr(model.StatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, done, *got.CompletedAt)

	got, err = tr.UpdateTicket(tk.ID, TicketPatch{Status: strPtr("Review")})
	require.NoError(t, err)
	assert.Nil(t, got.CompletedAt)

	// the board sees the same record
	boardTicket, _ := tr.board.Ticket(tk.ID)
	assert.Equal(t, "Review", boardTicket.Status)
}

func TestUpdateTicketValidation(t *testing.T) {
	tr, _ := newTracker(t)
	tk := mustCreate(t, tr, "amp")

	_, err := tr.UpdateTicket(tk.ID, TicketPatch{Item: strPtr(""), Priority: func() *model.Priority { p := model.Priority("Soon"); return &p }()})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"item", "priority"}, verr.Fields)

	got, _ := tr.GetTicket(tk.ID)
	assert.Equal(t, "amp", got.Item)

	_, err = tr.UpdateTicket("nope", TicketPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTicketRelationshipsCleaned(t *testing.T) {
	tr, _ := newTracker(t)
	a := mustCreate(t, tr, "a")
	b := mustCreate(t, tr, "b")

	edges := []model.RawEdge{
		model.EdgeID(b.ID),
		model.EdgeObject(b.ID, "child", "psu"),
		model.EdgeID(a.ID),
		{},
	}
	got, err := tr.UpdateTicket(a.ID, TicketPatch{RelatedTickets: &edges})
	require.NoError(t, err)
	assert.Equal(t, []model.RelationshipEdge{{TargetID: b.ID, Type: model.RelationChild, Note: "psu"}}, got.RelatedTickets)
}

func TestMergePatchTicket(t *testing.T) {
	tr, _ := newTracker(t)
	tk := mustCreate(t, tr, "amp")
	_, err := tr.UpdateTicket(tk.ID, TicketPatch{CustomFields: &map[string]string{"serial": "S1", "color": "red"}})
	require.NoError(t, err)

	got, err := tr.MergePatchTicket(tk.ID, []byte(`{"assigned_to":"sam","custom_fields":{"color":null,"bin":"7"},"priority":"Low"}`))
	require.NoError(t, err)
	assert.Equal(t, "sam", got.AssignedTo)
	assert.Equal(t, model.PriorityLow, got.Priority)
	assert.Equal(t, map[string]string{"serial": "S1", "bin": "7"}, got.CustomFields)
	assert.Equal(t, "amp", got.Item)

	_, err = tr.MergePatchTicket(tk.ID, []byte(`{"rma_number":"X"}`))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = tr.MergePatchTicket(tk.ID, []byte(`{"item":null}`))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = tr.MergePatchTicket(tk.ID, []byte(`[1]`))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteTicket(t *testing.T) {
	tr, _ := newTracker(t)
	a := mustCreate(t, tr, "a")
	b := mustCreate(t, tr, "b")
	require.NoError(t, tr.AddRelationship(a.ID, b.ID, model.RelationParent, ""))

	require.NoError(t, tr.DeleteTicket(b.ID))
	for _, tk := range tr.ListTickets() {
		assert.NotEqual(t, b.ID, tk.ID)
	}
	_, err := tr.GetTicket(b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{a.ID}, columnTicketIDs(t, tr, model.IncomingColumnID))

	// the edge on A is left dangling and skipped on read
	got, _ := tr.GetTicket(a.ID)
	assert.Len(t, got.RelatedTickets, 1)
	rows, err := tr.ResolvedRelationships(a.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	assert.ErrorIs(t, tr.DeleteTicket(b.ID), ErrNotFound)
	require.NoError(t, tr.board.Validate())
}

func TestMoveTicketWipLimit(t *testing.T) {
	tr, _ := newTracker(t)
	backlog, err := tr.AddColumn("Bench")
	require.NoError(t, err)
	require.NoError(t, tr.SetWipLimit(backlog, intPtr(2)))

	t1 := mustCreate(t, tr, "t1")
	t2 := mustCreate(t, tr, "t2")
	t3 := mustCreate(t, tr, "t3")

	require.NoError(t, tr.MoveTicket(t1.ID, backlog, 0))
	require.NoError(t, tr.MoveTicket(t2.ID, backlog, 1))

	version := tr.Version()
	err = tr.MoveTicket(t3.ID, backlog, 0)
	require.ErrorIs(t, err, kanban.ErrWipLimitExceeded)
	assert.Equal(t, version, tr.Version())
	assert.Equal(t, []string{t1.ID, t2.ID}, columnTicketIDs(t, tr, backlog))
	assert.Equal(t, []string{t3.ID}, columnTicketIDs(t, tr, model.IncomingColumnID))

	require.NoError(t, tr.MoveTicket(t2.ID, backlog, 0))
	assert.Equal(t, []string{t2.ID, t1.ID}, columnTicketIDs(t, tr, backlog))
}

func TestMoveTicketUpdatesStatus(t *testing.T) {
	tr, c := newTracker(t)
	tk := mustCreate(t, tr, "amp")

	c.advance(time.Minute)
	require.NoError(t, tr.MoveTicket(tk.ID, "review", 0))
	got, _ := tr.GetTicket(tk.ID)
	assert.Equal(t, "Review", got.Status)
	require.Len(t, got.StatusHistory, 2)
	assert.Equal(t, model.StatusEntry{ColumnID: "review", EnteredAt: c.now}, got.StatusHistory[1])
	assert.Equal(t, model.ActivityMove, got.Activity[1].Type)
	assert.Equal(t, "Moved from Incoming to Review", got.Activity[1].Text)

	col, err := tr.ColumnOf(tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "review", col.ID)

	assert.ErrorIs(t, tr.MoveTicket(tk.ID, "nowhere", 0), ErrNotFound)
	assert.ErrorIs(t, tr.MoveTicket("ghost", "review", 0), ErrNotFound)
}

func TestRemoveColumnHolding(t *testing.T) {
	tr, _ := newTracker(t)
	require.NoError(t, tr.SetDefaultColumn("review"))
	t5 := mustCreate(t, tr, "t5")
	t6 := mustCreate(t, tr, "t6")

	require.NoError(t, tr.RemoveColumn("review"))
	assert.Equal(t, []string{t5.ID, t6.ID}, columnTicketIDs(t, tr, model.HoldingColumnID))
	for _, col := range tr.ListColumns() {
		assert.NotEqual(t, "review", col.ID)
	}

	err := tr.RemoveColumn(model.HoldingColumnID)
	assert.ErrorIs(t, err, kanban.ErrHoldingColumnNotEmpty)
	assert.ErrorIs(t, tr.RemoveColumn("review"), ErrNotFound)
}

func TestColumnOperations(t *testing.T) {
	tr, _ := newTracker(t)

	_, err := tr.AddColumn(" ")
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, tr.RenameColumn("backlog", ""), ErrValidation)
	assert.ErrorIs(t, tr.RenameColumn("nope", "x"), ErrNotFound)
	assert.ErrorIs(t, tr.SetWipLimit("backlog", intPtr(0)), ErrValidation)
	assert.ErrorIs(t, tr.SetWipLimit("nope", intPtr(1)), ErrNotFound)
	assert.ErrorIs(t, tr.SetDefaultColumn("nope"), ErrNotFound)
	assert.ErrorIs(t, tr.MoveColumn("nope", 1), ErrNotFound)

	require.NoError(t, tr.RenameColumn("backlog", "Queue"))
	col, err := tr.ResolveColumn("queue")
	require.NoError(t, err)
	assert.Equal(t, "backlog", col.ID)

	version := tr.Version()
	require.NoError(t, tr.MoveColumn("backlog", -1))
	assert.Equal(t, version, tr.Version(), "boundary move is a no-op")
	require.NoError(t, tr.MoveColumn("backlog", 1))
	assert.Equal(t, "inProgress", tr.ListColumns()[0].ID)
}

func TestRelationships(t *testing.T) {
	tr, _ := newTracker(t)
	a := mustCreate(t, tr, "a")
	b := mustCreate(t, tr, "b")

	require.NoError(t, tr.AddRelationship(a.ID, b.ID, model.RelationParent, ""))
	in, err := tr.IncomingRelationships(b.ID)
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, model.IncomingEdge{SourceID: a.ID, Type: model.RelationChild}, in[0])

	// merging keeps the more specific type and takes the new note
	require.NoError(t, tr.AddRelationship(a.ID, b.ID, model.RelationRelated, "same batch"))
	got, _ := tr.GetTicket(a.ID)
	require.Len(t, got.RelatedTickets, 1)
	assert.Equal(t, model.RelationshipEdge{TargetID: b.ID, Type: model.RelationParent, Note: "same batch"}, got.RelatedTickets[0])

	sibling := model.RelationSibling
	require.NoError(t, tr.UpdateRelationship(a.ID, b.ID, RelationshipPatch{Type: &sibling}))
	got, _ = tr.GetTicket(a.ID)
	assert.Equal(t, model.RelationSibling, got.RelatedTickets[0].Type)

	bogus := model.RelationType("cousin")
	assert.ErrorIs(t, tr.UpdateRelationship(a.ID, b.ID, RelationshipPatch{Type: &bogus}), ErrValidation)
	assert.ErrorIs(t, tr.UpdateRelationship(b.ID, a.ID, RelationshipPatch{}), ErrNotFound)
	assert.ErrorIs(t, tr.AddRelationship(a.ID, a.ID, model.RelationRelated, ""), ErrSelfRelation)
	assert.ErrorIs(t, tr.AddRelationship(a.ID, "ghost", model.RelationRelated, ""), ErrNotFound)
	assert.ErrorIs(t, tr.AddRelationship(a.ID, b.ID, "cousin", ""), ErrValidation)

	cluster, err := tr.Cluster(b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID}, cluster)

	require.NoError(t, tr.RemoveRelationship(a.ID, b.ID))
	in, _ = tr.IncomingRelationships(b.ID)
	assert.Empty(t, in)
	assert.ErrorIs(t, tr.RemoveRelationship(a.ID, b.ID), ErrNotFound)
}

func TestGroupColors(t *testing.T) {
	tr, _ := newTracker(t)
	a := mustCreate(t, tr, "a")
	b := mustCreate(t, tr, "b")
	c := mustCreate(t, tr, "c")

	gid, err := tr.AssignGroupColor([]string{a.ID, b.ID, c.ID}, "#FF0000", "")
	require.NoError(t, err)
	_, err = tr.AssignGroupColor([]string{a.ID, b.ID}, "#00FF00", gid)
	require.NoError(t, err)

	gotC, _ := tr.GetTicket(c.ID)
	assert.Equal(t, []model.GroupColor{{GroupID: gid, Color: "#FF0000"}}, gotC.GroupColors)
	for _, id := range []string{a.ID, b.ID} {
		got, _ := tr.GetTicket(id)
		assert.Equal(t, []model.GroupColor{{GroupID: gid, Color: "#00FF00"}}, got.GroupColors)
		assert.Equal(t, "#00FF00", got.GroupColor)
	}

	// the canonical list and the board read the same record
	for _, tk := range tr.ListTickets() {
		boardTk, _ := tr.board.Ticket(tk.ID)
		assert.Equal(t, boardTk.GroupColors, tk.GroupColors)
	}

	_, err = tr.AssignGroupColor([]string{a.ID}, "", "")
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, 1, tr.ClearGroupColor([]string{a.ID, "ghost"}))
	got, _ := tr.GetTicket(a.ID)
	assert.Empty(t, got.GroupColors)
	assert.Empty(t, got.GroupColor)
}

func TestActivity(t *testing.T) {
	tr, _ := newTracker(t)
	tk := mustCreate(t, tr, "amp")

	entry, err := tr.AddActivity(tk.ID, ActivityInput{Text: " called customer "})
	require.NoError(t, err)
	assert.Equal(t, model.ActivityNote, entry.Type)
	assert.Equal(t, "tester", entry.Author)
	assert.Equal(t, "called customer", entry.Text)
	assert.NotEmpty(t, entry.ID)

	_, err = tr.AddActivity(tk.ID, ActivityInput{Text: ""})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = tr.AddActivity("ghost", ActivityInput{Text: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	log, err := tr.ListActivity(tk.ID)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, entry, log[1])
}

func TestCustomers(t *testing.T) {
	tr, _ := newTracker(t)

	acme, err := tr.AddCustomer(CustomerInput{CompanyName: "Acme Audio, Inc.", ContactEmail: "ops@acme.test"})
	require.NoError(t, err)
	assert.Equal(t, "acme-audio-inc", acme.Slug)

	_, err = tr.AddCustomer(CustomerInput{CompanyName: "ACME AUDIO, INC."})
	assert.ErrorIs(t, err, ErrDuplicateCustomer)
	_, err = tr.AddCustomer(CustomerInput{CompanyName: ""})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = tr.AddCustomer(CustomerInput{CompanyName: "Bad Mail", ContactEmail: "nope"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"contact_email"}, verr.Fields)

	other, err := tr.AddCustomer(CustomerInput{CompanyName: "acme audio inc"})
	require.NoError(t, err)
	assert.Equal(t, "acme-audio-inc-2", other.Slug)

	got, err := tr.GetCustomer("acme-audio-inc")
	require.NoError(t, err)
	assert.Equal(t, acme.ID, got.ID)

	updated, err := tr.UpdateCustomer(acme.ID, CustomerPatch{CompanyName: strPtr("Zed Amps"), City: strPtr(" Austin ")})
	require.NoError(t, err)
	assert.Equal(t, "zed-amps", updated.Slug)
	assert.Equal(t, "Austin", updated.City)
	_, err = tr.UpdateCustomer(acme.ID, CustomerPatch{CompanyName: strPtr("ACME audio inc")})
	assert.ErrorIs(t, err, ErrDuplicateCustomer)

	list := tr.ListCustomers()
	require.Len(t, list, 2)
	assert.Equal(t, "acme audio inc", list[0].CompanyName)

	open := mustCreateFor(t, tr, acme.ID)
	closed := mustCreateFor(t, tr, acme.ID)
	_, err = tr.UpdateTicket(closed.ID, TicketPatch{Status: strPtr(model.StatusCompleted)})
	require.NoError(t, err)

	active, completed, err := tr.CustomerTickets("zed-amps")
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Len(t, completed, 1)
	assert.Equal(t, open.ID, active[0].ID)
	assert.Equal(t, closed.ID, completed[0].ID)

	assert.Equal(t, "Zed Amps", tr.CustomerName(acme.ID))
	require.NoError(t, tr.DeleteCustomer(acme.ID))
	assert.Equal(t, model.UnknownCustomer, tr.CustomerName(acme.ID))
	assert.ErrorIs(t, tr.DeleteCustomer(acme.ID), ErrNotFound)
}

func mustCreateFor(t *testing.T, tr *Tracker, customerID string) *model.Ticket {
	t.Helper()
	tk, err := tr.CreateTicket(TicketInput{CustomerID: customerID, Item: "x", Reason: "y"})
	require.NoError(t, err)
	return tk
}

func TestSearch(t *testing.T) {
	tr, _ := newTracker(t)
	a := mustCreate(t, tr, "Fender amp")
	mustCreate(t, tr, "Mixer")
	_, err := tr.UpdateTicket(a.ID, TicketPatch{AssignedTo: strPtr("sam")})
	require.NoError(t, err)

	views := tr.Search(filter.Query{Text: "FENDER"})
	require.Equal(t, model.IncomingColumnID, views[0].Column.ID)
	assert.Equal(t, 2, views[0].Total)
	require.Len(t, views[0].Tickets, 1)
	assert.Equal(t, a.ID, views[0].Tickets[0].ID)
	assert.Len(t, views, 5)

	views = tr.Search(filter.Query{Assignee: "kim"})
	assert.Empty(t, views[0].Tickets)
}

func TestSnapshotsAndObservers(t *testing.T) {
	tr, _ := newTracker(t)
	var seen []uint64
	unsubscribe := tr.Subscribe(func(s Snapshot) { seen = append(seen, s.Version) })

	tk := mustCreate(t, tr, "amp")
	snap := tr.Snapshot()
	_, err := tr.UpdateTicket(tk.ID, TicketPatch{Item: strPtr("changed")})
	require.NoError(t, err)

	assert.Equal(t, "amp", snap.Tickets[0].Item, "snapshots are copies")
	assert.Equal(t, []uint64{1, 2}, seen)

	unsubscribe()
	mustCreate(t, tr, "b")
	assert.Equal(t, []uint64{1, 2}, seen)

	// returned tickets are copies too
	got, _ := tr.GetTicket(tk.ID)
	got.Item = "mutated"
	again, _ := tr.GetTicket(tk.ID)
	assert.Equal(t, "changed", again.Item)
}

func TestObserverUnsubscribesAnother(t *testing.T) {
	tr, _ := newTracker(t)
	var stopSecond func()
	var firstCalls, secondCalls int
	tr.Subscribe(func(Snapshot) {
		firstCalls++
		stopSecond()
	})
	stopSecond = tr.Subscribe(func(Snapshot) { secondCalls++ })

	_, err := tr.AddColumn("x")
	require.NoError(t, err)
	_, err = tr.AddColumn("y")
	require.NoError(t, err)

	assert.Equal(t, 2, firstCalls)
	assert.Equal(t, 0, secondCalls)
}

func TestGroupColorUnknownTicketsDoNotCommit(t *testing.T) {
	tr, _ := newTracker(t)
	before := tr.Version()

	_, err := tr.AssignGroupColor([]string{"missing"}, "red", "")
	require.NoError(t, err)
	assert.Equal(t, 0, tr.ClearGroupColor([]string{"missing"}))
	assert.Equal(t, before, tr.Version())

	tk := mustCreate(t, tr, "amp")
	v := tr.Version()
	_, err = tr.AssignGroupColor([]string{tk.ID}, "red", "")
	require.NoError(t, err)
	assert.Equal(t, v+1, tr.Version())
}

func TestLogsBlockedMoves(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	tr := New(WithLogger(logger))
	col, err := tr.AddColumn("Tiny")
	require.NoError(t, err)
	require.NoError(t, tr.SetWipLimit(col, intPtr(1)))
	require.NoError(t, tr.SetDefaultColumn(col))
	mustCreate(t, tr, "a")
	require.NoError(t, tr.SetDefaultColumn(""))
	b := mustCreate(t, tr, "b")

	require.Error(t, tr.MoveTicket(b.ID, col, 0))
	assert.Contains(t, buf.String(), "move blocked")
}
