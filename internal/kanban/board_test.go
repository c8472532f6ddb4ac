package kanban

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func newTicket(id string) *model.Ticket {
	t := &model.Ticket{ID: id}
	t.EnsureCollections()
	return t
}

// bareBoard returns a board with no columns and deterministic column IDs.
func bareBoard() *Board {
	b := empty()
	n := 0
	b.newID = func() string {
		n++
		return fmt.Sprintf("col-%d", n)
	}
	return b
}

func ticketIDs(t *testing.T, b *Board, colID string) []string {
	t.Helper()
	c, ok := b.Column(colID)
	require.True(t, ok, "column %s", colID)
	return c.TicketIDs
}

func columnIDs(b *Board) []string {
	var ids []string
	for _, c := range b.Columns() {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestNewDefaultColumns(t *testing.T) {
	b := New()
	assert.Equal(t, []string{"backlog", "inProgress", "review", "done"}, columnIDs(b))
	_, ok := b.DefaultColumn()
	assert.False(t, ok)
	require.NoError(t, b.Validate())
}

func TestWipLimitScenario(t *testing.T) {
	b := bareBoard()
	backlog := b.AddColumn("Backlog")
	require.NoError(t, b.SetWipLimit(backlog, intPtr(2)))

	for _, id := range []string{"T1", "T2", "T3"} {
		assert.Equal(t, model.IncomingColumnID, b.Place(newTicket(id), t0))
	}
	assert.Equal(t, []string{model.IncomingColumnID, backlog}, columnIDs(b))

	require.NoError(t, b.Move("T1", backlog, 0, t0))
	require.NoError(t, b.Move("T2", backlog, 1, t0))

	err := b.Move("T3", backlog, 0, t0)
	require.ErrorIs(t, err, ErrWipLimitExceeded)
	var wipErr *WipLimitError
	require.True(t, errors.As(err, &wipErr))
	assert.Equal(t, backlog, wipErr.ColumnID)
	assert.Equal(t, 2, wipErr.Limit)

	assert.Equal(t, []string{"T1", "T2"}, ticketIDs(t, b, backlog))
	assert.Equal(t, []string{"T3"}, ticketIDs(t, b, model.IncomingColumnID))
	require.NoError(t, b.Validate())
}

func TestMoveWithinFullColumnNotBlocked(t *testing.T) {
	b := bareBoard()
	col := b.AddColumn("Bench")
	require.True(t, b.SetDefaultColumn(col))
	b.Place(newTicket("A"), t0)
	b.Place(newTicket("B"), t0)
	require.NoError(t, b.SetWipLimit(col, intPtr(2)))

	require.NoError(t, b.Move("B", col, 0, t0))
	assert.Equal(t, []string{"B", "A"}, ticketIDs(t, b, col))
}

func TestMoveAppendsHistoryOncePerColumn(t *testing.T) {
	b := New()
	tk := newTicket("A")
	b.Place(tk, t0)
	require.Len(t, tk.StatusHistory, 1)
	assert.Equal(t, model.IncomingColumnID, tk.StatusHistory[0].ColumnID)

	later := t0.Add(time.Hour)
	require.NoError(t, b.Move("A", "review", 0, later))
	require.NoError(t, b.Move("A", "review", 0, later.Add(time.Minute)))

	require.Len(t, tk.StatusHistory, 2)
	assert.Equal(t, model.StatusEntry{ColumnID: "review", EnteredAt: later}, tk.StatusHistory[1])
}

func TestMoveRemovesEmptiedIncoming(t *testing.T) {
	b := New()
	b.Place(newTicket("A"), t0)
	b.Place(newTicket("B"), t0)
	assert.Equal(t, model.IncomingColumnID, columnIDs(b)[0])

	require.NoError(t, b.Move("A", "backlog", 0, t0))
	_, ok := b.Column(model.IncomingColumnID)
	assert.True(t, ok, "incoming still holds B")

	require.NoError(t, b.Move("B", "backlog", 5, t0))
	_, ok = b.Column(model.IncomingColumnID)
	assert.False(t, ok)
	assert.NotContains(t, columnIDs(b), model.IncomingColumnID)
	assert.Equal(t, []string{"A", "B"}, ticketIDs(t, b, "backlog"))
}

func TestMoveClampsIndex(t *testing.T) {
	b := New()
	require.True(t, b.SetDefaultColumn("backlog"))
	for _, id := range []string{"A", "B", "C"} {
		b.Place(newTicket(id), t0)
	}

	require.NoError(t, b.Move("C", "backlog", -4, t0))
	assert.Equal(t, []string{"C", "A", "B"}, ticketIDs(t, b, "backlog"))
	require.NoError(t, b.Move("C", "backlog", 99, t0))
	assert.Equal(t, []string{"A", "B", "C"}, ticketIDs(t, b, "backlog"))
}

func TestMoveErrors(t *testing.T) {
	b := New()
	b.Place(newTicket("A"), t0)

	assert.ErrorIs(t, b.Move("ghost", "backlog", 0, t0), ErrTicketNotPlaced)
	assert.ErrorIs(t, b.Move("A", "nowhere", 0, t0), ErrColumnNotFound)
	assert.Equal(t, []string{"A"}, ticketIDs(t, b, model.IncomingColumnID))
}

func TestPlaceUsesDefaultColumn(t *testing.T) {
	b := New()
	require.True(t, b.SetDefaultColumn("inProgress"))
	assert.Equal(t, "inProgress", b.Place(newTicket("A"), t0))
	assert.NotContains(t, columnIDs(b), model.IncomingColumnID)

	// placing again does not duplicate
	assert.Equal(t, "inProgress", b.Place(newTicket("A"), t0))
	assert.Equal(t, []string{"A"}, ticketIDs(t, b, "inProgress"))
}

func TestSetDefaultColumnExclusive(t *testing.T) {
	b := New()
	require.True(t, b.SetDefaultColumn("backlog"))
	require.True(t, b.SetDefaultColumn("done"))

	var defaults []string
	for _, c := range b.Columns() {
		if c.DefaultForNewTickets {
			defaults = append(defaults, c.ID)
		}
	}
	assert.Equal(t, []string{"done"}, defaults)

	assert.False(t, b.SetDefaultColumn("nope"))
	id, _ := b.DefaultColumn()
	assert.Equal(t, "done", id)

	require.True(t, b.SetDefaultColumn(""))
	_, ok := b.DefaultColumn()
	assert.False(t, ok)
}

func TestRemoveColumnMovesToHolding(t *testing.T) {
	b := New()
	require.True(t, b.SetDefaultColumn("review"))
	b.Place(newTicket("T5"), t0)
	b.Place(newTicket("T6"), t0)

	require.NoError(t, b.RemoveColumn("review"))
	assert.NotContains(t, columnIDs(b), "review")
	assert.Equal(t, []string{"backlog", "inProgress", "done", model.HoldingColumnID}, columnIDs(b))
	assert.Equal(t, []string{"T5", "T6"}, ticketIDs(t, b, model.HoldingColumnID))
	require.NoError(t, b.Validate())

	// a second removal appends to the existing holding column
	require.NoError(t, b.Move("T5", "done", 0, t0))
	require.NoError(t, b.RemoveColumn("done"))
	assert.Equal(t, []string{"T6", "T5"}, ticketIDs(t, b, model.HoldingColumnID))
	assert.Equal(t, []string{"backlog", "inProgress", model.HoldingColumnID}, columnIDs(b))
}

func TestRemoveHoldingColumn(t *testing.T) {
	b := New()
	require.True(t, b.SetDefaultColumn("backlog"))
	b.Place(newTicket("A"), t0)
	require.NoError(t, b.RemoveColumn("backlog"))

	before := columnIDs(b)
	assert.ErrorIs(t, b.RemoveColumn(model.HoldingColumnID), ErrHoldingColumnNotEmpty)
	assert.Equal(t, before, columnIDs(b))
	assert.Equal(t, []string{"A"}, ticketIDs(t, b, model.HoldingColumnID))

	require.NoError(t, b.Move("A", "done", 0, t0))
	require.NoError(t, b.RemoveColumn(model.HoldingColumnID))
	assert.NotContains(t, columnIDs(b), model.HoldingColumnID)
}

func TestRemoveUnknownColumn(t *testing.T) {
	assert.ErrorIs(t, New().RemoveColumn("nope"), ErrColumnNotFound)
}

func TestAddRenameMoveColumn(t *testing.T) {
	b := bareBoard()
	a := b.AddColumn(" Intake ")
	c := b.AddColumn("Repair")
	assert.Equal(t, "col-1", a)

	col, _ := b.Column(a)
	assert.Equal(t, "Intake", col.Name)
	assert.Nil(t, col.WipLimit)
	assert.Empty(t, col.TicketIDs)

	assert.True(t, b.RenameColumn(c, "Bench"))
	assert.False(t, b.RenameColumn("nope", "x"))

	assert.False(t, b.MoveColumn(a, -1))
	assert.False(t, b.MoveColumn(c, 1))
	assert.False(t, b.MoveColumn("nope", 1))
	assert.True(t, b.MoveColumn(a, 1))
	assert.Equal(t, []string{c, a}, columnIDs(b))
}

func TestSetWipLimit(t *testing.T) {
	b := New()
	assert.ErrorIs(t, b.SetWipLimit("backlog", intPtr(0)), ErrInvalidWipLimit)
	assert.ErrorIs(t, b.SetWipLimit("backlog", intPtr(-3)), ErrInvalidWipLimit)
	assert.NoError(t, b.SetWipLimit("nope", intPtr(3)))

	limit := 3
	require.NoError(t, b.SetWipLimit("backlog", &limit))
	limit = 9
	col, _ := b.Column("backlog")
	assert.Equal(t, 3, *col.WipLimit)

	require.NoError(t, b.SetWipLimit("backlog", nil))
	col, _ = b.Column("backlog")
	assert.Nil(t, col.WipLimit)
}

func TestRemoveTicket(t *testing.T) {
	b := New()
	b.Place(newTicket("A"), t0)
	b.Place(newTicket("B"), t0)
	require.NoError(t, b.Move("B", "done", 0, t0))

	b.Remove("B")
	_, ok := b.ColumnOf("B")
	assert.False(t, ok)
	_, ok = b.Ticket("B")
	assert.False(t, ok)

	b.Remove("A")
	assert.NotContains(t, columnIDs(b), model.IncomingColumnID)
	require.NoError(t, b.Validate())
}

func TestRebuildFromHistory(t *testing.T) {
	b := New()
	a := newTicket("A")
	a.StatusHistory = []model.StatusEntry{{ColumnID: "backlog"}, {ColumnID: "review"}}
	c := newTicket("C")
	c.StatusHistory = []model.StatusEntry{{ColumnID: "gone"}}
	d := newTicket("D")

	b.Rebuild([]*model.Ticket{a, c, d})
	assert.Equal(t, []string{"A"}, ticketIDs(t, b, "review"))
	assert.Equal(t, []string{"C", "D"}, ticketIDs(t, b, "backlog"))
	require.NoError(t, b.Validate())
}

func TestRestoreRepairsLayout(t *testing.T) {
	a, c := newTicket("A"), newTicket("C")
	layout := &model.Board{
		Columns: []*model.Column{
			{ID: "one", Name: "One", TicketIDs: []string{"A", "ghost", "A"}, DefaultForNewTickets: true},
			{ID: "two", Name: "Two", TicketIDs: []string{"A"}, WipLimit: intPtr(0), DefaultForNewTickets: true},
			{ID: "three", Name: "Three"},
		},
		ColumnOrder: []string{"two", "missing", "one"},
	}

	b := Restore(layout, []*model.Ticket{a, c})
	require.NoError(t, b.Validate())
	assert.Equal(t, []string{"two", "one", "three"}, columnIDs(b))
	// C was not placed anywhere and has no history, so it joins the first column.
	assert.Equal(t, []string{"A", "C"}, ticketIDs(t, b, "two"))
	assert.Empty(t, ticketIDs(t, b, "one"))

	two, _ := b.Column("two")
	assert.Nil(t, two.WipLimit)
	assert.True(t, two.DefaultForNewTickets)
	one, _ := b.Column("one")
	assert.False(t, one.DefaultForNewTickets)
}

func TestRestoreNilLayout(t *testing.T) {
	a := newTicket("A")
	a.StatusHistory = []model.StatusEntry{{ColumnID: "done"}}
	b := Restore(nil, []*model.Ticket{a})
	assert.Equal(t, []string{"A"}, ticketIDs(t, b, "done"))
}

func TestCloneIsIndependent(t *testing.T) {
	b := New()
	b.Place(newTicket("A"), t0)
	c := b.Clone()

	require.NoError(t, b.Move("A", "done", 0, t0))
	assert.Equal(t, []string{"A"}, ticketIDs(t, c, model.IncomingColumnID))
	ct, _ := c.Ticket("A")
	assert.Len(t, ct.StatusHistory, 1)
}

func TestLayout(t *testing.T) {
	b := New()
	l := b.Layout()
	assert.Equal(t, []string{"backlog", "inProgress", "review", "done"}, l.ColumnOrder)
	l.ColumnOrder[0] = "changed"
	assert.Equal(t, "backlog", columnIDs(b)[0])
}

func TestValidateDetectsDoublePlacement(t *testing.T) {
	b := New()
	b.Place(newTicket("A"), t0)
	b.columns["done"].TicketIDs = append(b.columns["done"].TicketIDs, "A")
	b.columns["done"].TicketIDs = append(b.columns["done"].TicketIDs, "ghost")

	err := b.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "placed in both")
	assert.Contains(t, err.Error(), "unknown ticket ghost")
}
