// Package kanban holds the board projection: columns, their left-to-right
// order, the ticket IDs placed in each column and the ticket records the
// board tracks. A ticket ID is placed in at most one column at a time.
package kanban

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
)

// Board is the mutable Kanban state. It is not safe for concurrent use.
type Board struct {
	columns map[string]*model.Column
	order   []string
	tickets map[string]*model.Ticket
	newID   func() string
}

// defaultColumns mirrors the layout a fresh board starts with.
var defaultColumns = []struct{ id, name string }{
	{"backlog", "Backlog"},
	{"inProgress", "In Progress"},
	{"review", "Review"},
	{"done", "Done"},
}

// New returns a board with the default columns and no tickets.
func New() *Board {
	b := empty()
	for _, dc := range defaultColumns {
		b.insertColumn(&model.Column{ID: dc.id, Name: dc.name, TicketIDs: []string{}}, false)
	}
	return b
}

func empty() *Board {
	return &Board{
		columns: make(map[string]*model.Column),
		tickets: make(map[string]*model.Ticket),
		newID:   uuid.NewString,
	}
}

func (b *Board) insertColumn(c *model.Column, front bool) {
	b.columns[c.ID] = c
	if front {
		b.order = append([]string{c.ID}, b.order...)
	} else {
		b.order = append(b.order, c.ID)
	}
}

func (b *Board) dropColumn(id string) {
	delete(b.columns, id)
	b.order = slices.DeleteFunc(b.order, func(s string) bool { return s == id })
}

// Columns returns copies of the columns in presentation order.
func (b *Board) Columns() []*model.Column {
	out := make([]*model.Column, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.columns[id].Clone())
	}
	return out
}

// Column returns a copy of the column with the given ID.
func (b *Board) Column(id string) (*model.Column, bool) {
	c, ok := b.columns[id]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// ColumnOf returns the ID of the column holding ticketID.
func (b *Board) ColumnOf(ticketID string) (string, bool) {
	for _, id := range b.order {
		if slices.Contains(b.columns[id].TicketIDs, ticketID) {
			return id, true
		}
	}
	return "", false
}

// Ticket returns the board's record for a ticket.
func (b *Board) Ticket(id string) (*model.Ticket, bool) {
	t, ok := b.tickets[id]
	return t, ok
}

// TicketsIn returns the tickets of a column in column order.
func (b *Board) TicketsIn(columnID string) ([]*model.Ticket, error) {
	c, ok := b.columns[columnID]
	if !ok {
		return nil, fmt.Errorf("column %q: %w", columnID, ErrColumnNotFound)
	}
	out := make([]*model.Ticket, 0, len(c.TicketIDs))
	for _, id := range c.TicketIDs {
		if t, ok := b.tickets[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// DefaultColumn returns the column new tickets are placed in, if one is set.
func (b *Board) DefaultColumn() (string, bool) {
	for _, id := range b.order {
		if b.columns[id].DefaultForNewTickets {
			return id, true
		}
	}
	return "", false
}

// Place registers a new ticket and puts it in the default column, or in the
// Incoming column when no default is set. The Incoming column is created at
// the front of the board when missing. A status history entry is appended
// unless the ticket's last entry already names the column. Placing a ticket
// that is already on the board only refreshes its record.
func (b *Board) Place(t *model.Ticket, now time.Time) string {
	b.tickets[t.ID] = t
	if colID, ok := b.ColumnOf(t.ID); ok {
		return colID
	}

	colID, ok := b.DefaultColumn()
	if !ok {
		colID = b.ensureIncoming()
	}
	c := b.columns[colID]
	c.TicketIDs = append(c.TicketIDs, t.ID)
	enter(t, colID, now)
	return colID
}

func (b *Board) ensureIncoming() string {
	if _, ok := b.columns[model.IncomingColumnID]; !ok {
		b.insertColumn(&model.Column{
			ID:         model.IncomingColumnID,
			Name:       "Incoming",
			TicketIDs:  []string{},
			IsIncoming: true,
		}, true)
	}
	return model.IncomingColumnID
}

func enter(t *model.Ticket, columnID string, now time.Time) bool {
	if t.LastColumn() == columnID {
		return false
	}
	t.StatusHistory = append(t.StatusHistory, model.StatusEntry{ColumnID: columnID, EnteredAt: now})
	return true
}

// Move places ticketID at toIndex in the destination column. The WIP limit
// is only checked when the destination differs from the current column, so
// reordering within a column is never blocked. toIndex is clamped to the
// destination's bounds. A blocked move leaves the board unchanged.
//
// When the ticket leaves the Incoming column and that column becomes empty,
// the column is removed.
func (b *Board) Move(ticketID, toColumnID string, toIndex int, now time.Time) error {
	fromID, ok := b.ColumnOf(ticketID)
	if !ok {
		return fmt.Errorf("ticket %s: %w", ticketID, ErrTicketNotPlaced)
	}
	to, ok := b.columns[toColumnID]
	if !ok {
		return fmt.Errorf("column %q: %w", toColumnID, ErrColumnNotFound)
	}
	if fromID != toColumnID && to.AtCapacity() {
		return &WipLimitError{ColumnID: to.ID, ColumnName: to.Name, Limit: *to.WipLimit}
	}

	from := b.columns[fromID]
	from.TicketIDs = slices.DeleteFunc(from.TicketIDs, func(s string) bool { return s == ticketID })
	toIndex = max(0, min(toIndex, len(to.TicketIDs)))
	to.TicketIDs = slices.Insert(to.TicketIDs, toIndex, ticketID)

	if t, ok := b.tickets[ticketID]; ok {
		enter(t, toColumnID, now)
	}
	if from.IsIncoming && len(from.TicketIDs) == 0 {
		b.dropColumn(from.ID)
	}
	return nil
}

// Remove drops a ticket from the board and from every column. An Incoming
// column left empty is removed as well.
func (b *Board) Remove(ticketID string) {
	delete(b.tickets, ticketID)
	for _, id := range slices.Clone(b.order) {
		c := b.columns[id]
		c.TicketIDs = slices.DeleteFunc(c.TicketIDs, func(s string) bool { return s == ticketID })
		if c.IsIncoming && len(c.TicketIDs) == 0 {
			b.dropColumn(id)
		}
	}
}

// AddColumn appends a new unlimited, empty column and returns its ID.
func (b *Board) AddColumn(name string) string {
	id := b.newID()
	for b.columns[id] != nil {
		id = b.newID()
	}
	b.insertColumn(&model.Column{ID: id, Name: strings.TrimSpace(name), TicketIDs: []string{}}, false)
	return id
}

// RenameColumn sets a column's display name. It reports whether the column
// exists.
func (b *Board) RenameColumn(id, name string) bool {
	c, ok := b.columns[id]
	if !ok {
		return false
	}
	c.Name = strings.TrimSpace(name)
	return true
}

// MoveColumn swaps a column with its left (dir < 0) or right (dir > 0)
// neighbour. It reports whether anything moved; unknown columns and moves
// past either edge are no-ops.
func (b *Board) MoveColumn(id string, dir int) bool {
	i := slices.Index(b.order, id)
	if i < 0 || dir == 0 {
		return false
	}
	j := i + 1
	if dir < 0 {
		j = i - 1
	}
	if j < 0 || j >= len(b.order) {
		return false
	}
	b.order[i], b.order[j] = b.order[j], b.order[i]
	return true
}

// SetWipLimit sets a column's WIP limit. nil means unlimited. Unknown
// columns are ignored.
func (b *Board) SetWipLimit(id string, limit *int) error {
	if limit != nil && *limit < 1 {
		return fmt.Errorf("%d: %w", *limit, ErrInvalidWipLimit)
	}
	c, ok := b.columns[id]
	if !ok {
		return nil
	}
	if limit == nil {
		c.WipLimit = nil
		return nil
	}
	v := *limit
	c.WipLimit = &v
	return nil
}

// SetDefaultColumn marks id as the only column new tickets are placed in.
// An empty id clears the default. It reports false, changing nothing, when
// id does not name a column.
func (b *Board) SetDefaultColumn(id string) bool {
	if _, ok := b.columns[id]; id != "" && !ok {
		return false
	}
	for cid, c := range b.columns {
		c.DefaultForNewTickets = cid == id
	}
	return true
}

// RemoveColumn deletes a column. Its tickets move to the end of the
// holding column, which is created at the end of the board if it does not
// exist yet. The
// holding column itself can only be removed once it is empty.
func (b *Board) RemoveColumn(id string) error {
	c, ok := b.columns[id]
	if !ok {
		return fmt.Errorf("column %q: %w", id, ErrColumnNotFound)
	}
	if id == model.HoldingColumnID {
		if len(c.TicketIDs) > 0 {
			return fmt.Errorf("%d tickets still in %q: %w", len(c.TicketIDs), c.Name, ErrHoldingColumnNotEmpty)
		}
		b.dropColumn(id)
		return nil
	}

	b.dropColumn(id)
	holding, ok := b.columns[model.HoldingColumnID]
	if !ok {
		holding = &model.Column{ID: model.HoldingColumnID, Name: "Holding", TicketIDs: []string{}}
		b.insertColumn(holding, false)
	}
	holding.TicketIDs = append(holding.TicketIDs, c.TicketIDs...)
	return nil
}
