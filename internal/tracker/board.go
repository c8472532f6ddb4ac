package tracker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ALT-F4-LLC/rmaboard/internal/filter"
	"github.com/ALT-F4-LLC/rmaboard/internal/kanban"
	"github.com/ALT-F4-LLC/rmaboard/internal/model"
)

// ColumnView is a board column with the tickets it shows.
type ColumnView struct {
	Column  *model.Column
	Tickets []*model.Ticket
	// Total counts every ticket in the column, including ones the query hid.
	Total int
}

func (t *Tracker) column(id string) (*model.Column, error) {
	c, ok := t.board.Column(id)
	if !ok {
		return nil, fmt.Errorf("column %q: %w", id, ErrNotFound)
	}
	return c, nil
}

// ResolveColumn accepts a column ID or a column name, ignoring case for the
// name.
func (t *Tracker) ResolveColumn(ref string) (*model.Column, error) {
	if c, ok := t.board.Column(ref); ok {
		return c, nil
	}
	for _, c := range t.board.Columns() {
		if strings.EqualFold(c.Name, strings.TrimSpace(ref)) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("column %q: %w", ref, ErrNotFound)
}

// ListColumns returns the columns in board order.
func (t *Tracker) ListColumns() []*model.Column {
	return t.board.Columns()
}

// TicketsInColumn returns copies of a column's tickets in column order.
func (t *Tracker) TicketsInColumn(columnID string) ([]*model.Ticket, error) {
	tickets, err := t.board.TicketsIn(columnID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return cloneTickets(tickets), nil
}

// ColumnOf returns the column a ticket is placed in.
func (t *Tracker) ColumnOf(ticketID string) (*model.Column, error) {
	if _, err := t.ticket(ticketID); err != nil {
		return nil, err
	}
	id, ok := t.board.ColumnOf(ticketID)
	if !ok {
		return nil, fmt.Errorf("ticket %s: %w", ticketID, kanban.ErrTicketNotPlaced)
	}
	return t.column(id)
}

// AddColumn appends a new column and returns its ID.
func (t *Tracker) AddColumn(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "name is required")
	}
	id := t.board.AddColumn(name)
	t.commit("column added", "column", id, "name", name)
	return id, nil
}

// RenameColumn changes a column's display name.
func (t *Tracker) RenameColumn(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("name", "name is required")
	}
	if !t.board.RenameColumn(id, name) {
		return fmt.Errorf("column %q: %w", id, ErrNotFound)
	}
	t.commit("column renamed", "column", id, "name", name)
	return nil
}

// RemoveColumn deletes a column, moving its tickets to the holding column.
func (t *Tracker) RemoveColumn(id string) error {
	if err := t.board.RemoveColumn(id); err != nil {
		if errors.Is(err, kanban.ErrColumnNotFound) {
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		t.log.Info("column removal blocked", "column", id, "err", err)
		return err
	}
	t.commit("column removed", "column", id)
	return nil
}

// MoveColumn shifts a column one position left (dir < 0) or right
// (dir > 0). Moving past either edge is a no-op.
func (t *Tracker) MoveColumn(id string, dir int) error {
	if _, err := t.column(id); err != nil {
		return err
	}
	if t.board.MoveColumn(id, dir) {
		t.commit("column moved", "column", id, "dir", dir)
	}
	return nil
}

// SetWipLimit sets a column's WIP limit; nil removes it.
func (t *Tracker) SetWipLimit(id string, limit *int) error {
	if _, err := t.column(id); err != nil {
		return err
	}
	if err := t.board.SetWipLimit(id, limit); err != nil {
		return &ValidationError{Fields: []string{"wip_limit"}, Messages: []string{err.Error()}}
	}
	t.commit("wip limit set", "column", id)
	return nil
}

// SetDefaultColumn makes id the column new tickets are placed in. An empty
// id clears the default so new tickets go to the Incoming column.
func (t *Tracker) SetDefaultColumn(id string) error {
	if !t.board.SetDefaultColumn(id) {
		return fmt.Errorf("column %q: %w", id, ErrNotFound)
	}
	t.commit("default column set", "column", id)
	return nil
}

// MoveTicket moves a ticket to position toIndex of a column. When the
// ticket changes column its status becomes the column's name and the move
// is written to its activity log. A move into a column at its WIP limit
// fails with an error wrapping kanban.ErrWipLimitExceeded and changes
// nothing.
func (t *Tracker) MoveTicket(ticketID, toColumnID string, toIndex int) error {
	tk, err := t.ticket(ticketID)
	if err != nil {
		return err
	}
	from, _ := t.board.ColumnOf(ticketID)
	fromCol, _ := t.board.Column(from)

	now := t.now()
	if err := t.board.Move(ticketID, toColumnID, toIndex, now); err != nil {
		if errors.Is(err, kanban.ErrColumnNotFound) {
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		if errors.Is(err, kanban.ErrWipLimitExceeded) {
			t.log.Info("move blocked", "ticket", ticketID, "column", toColumnID, "err", err)
		}
		return err
	}

	if from != toColumnID {
		to, _ := t.board.Column(toColumnID)
		fromName := from
		if fromCol != nil {
			fromName = fromCol.Name
		}
		t.logActivity(tk, model.ActivityMove, now, "Moved from %s to %s", fromName, to.Name)
		t.setStatus(tk, to.Name, now)
		tk.UpdatedAt = now
	}
	t.commit("ticket moved", "ticket", ticketID, "from", from, "to", toColumnID, "index", toIndex)
	return nil
}

// Search returns every column in board order with the tickets matching q,
// sorted by q.SortBy within each column.
func (t *Tracker) Search(q filter.Query) []ColumnView {
	cols := t.board.Columns()
	views := make([]ColumnView, 0, len(cols))
	for _, c := range cols {
		tickets, _ := t.board.TicketsIn(c.ID)
		views = append(views, ColumnView{
			Column:  c,
			Tickets: cloneTickets(filter.Apply(tickets, q)),
			Total:   len(c.TicketIDs),
		})
	}
	return views
}
