package kanban

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
)

// Restore builds a board from a persisted layout and the ticket records it
// tracks. Stale layout data is repaired rather than rejected: unknown and
// repeated ticket IDs are dropped, order entries without a column are
// skipped, columns missing from the order are appended, and tickets not
// placed anywhere are assigned the way Rebuild assigns them. A nil layout
// starts from the default columns.
func Restore(layout *model.Board, tickets []*model.Ticket) *Board {
	if layout == nil {
		b := New()
		b.Rebuild(tickets)
		return b
	}

	b := empty()
	for _, t := range tickets {
		b.tickets[t.ID] = t
	}

	byID := make(map[string]*model.Column, len(layout.Columns))
	for _, c := range layout.Columns {
		if c == nil || c.ID == "" || byID[c.ID] != nil {
			continue
		}
		byID[c.ID] = c
	}
	ids := make([]string, 0, len(byID))
	for _, id := range layout.ColumnOrder {
		if byID[id] != nil && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	for _, c := range layout.Columns {
		if c != nil && byID[c.ID] == c && !slices.Contains(ids, c.ID) {
			ids = append(ids, c.ID)
		}
	}

	placed := make(map[string]bool)
	hasDefault := false
	for _, id := range ids {
		c := byID[id].Clone()
		if c.WipLimit != nil && *c.WipLimit < 1 {
			c.WipLimit = nil
		}
		if c.DefaultForNewTickets {
			c.DefaultForNewTickets = !hasDefault
			hasDefault = true
		}
		c.TicketIDs = slices.DeleteFunc(c.TicketIDs, func(tid string) bool {
			if _, known := b.tickets[tid]; !known || placed[tid] {
				return true
			}
			placed[tid] = true
			return false
		})
		b.insertColumn(c, false)
	}

	for _, t := range tickets {
		if !placed[t.ID] {
			b.assign(t)
		}
	}
	return b
}

// Rebuild clears every column and re-places the given tickets by the last
// column in their status history. Tickets with no history, or whose last
// column no longer exists, go to the first column. Status history is not
// modified.
func (b *Board) Rebuild(tickets []*model.Ticket) {
	for _, c := range b.columns {
		c.TicketIDs = []string{}
	}
	b.tickets = make(map[string]*model.Ticket, len(tickets))
	for _, t := range tickets {
		b.tickets[t.ID] = t
		b.assign(t)
	}
	for _, id := range slices.Clone(b.order) {
		if c := b.columns[id]; c.IsIncoming && len(c.TicketIDs) == 0 {
			b.dropColumn(id)
		}
	}
}

func (b *Board) assign(t *model.Ticket) {
	colID := t.LastColumn()
	if _, ok := b.columns[colID]; !ok {
		if len(b.order) == 0 {
			b.ensureIncoming()
		}
		colID = b.order[0]
	}
	c := b.columns[colID]
	c.TicketIDs = append(c.TicketIDs, t.ID)
}

// Layout returns a copy of the board layout for persistence.
func (b *Board) Layout() *model.Board {
	return &model.Board{
		Columns:     b.Columns(),
		ColumnOrder: slices.Clone(b.order),
	}
}

// Clone returns a deep copy of the board, including its ticket records.
func (b *Board) Clone() *Board {
	c := &Board{
		columns: make(map[string]*model.Column, len(b.columns)),
		order:   slices.Clone(b.order),
		tickets: make(map[string]*model.Ticket, len(b.tickets)),
		newID:   b.newID,
	}
	for id, col := range b.columns {
		c.columns[id] = col.Clone()
	}
	for id, t := range b.tickets {
		c.tickets[id] = t.Clone()
	}
	return c
}

// Validate checks the board invariants: column order and column set agree,
// at most one default column, every placed ID is a tracked ticket placed in
// exactly one column, and every tracked ticket is placed.
func (b *Board) Validate() error {
	var errs []error

	if len(b.order) != len(b.columns) {
		errs = append(errs, fmt.Errorf("column order has %d entries for %d columns", len(b.order), len(b.columns)))
	}
	defaults := 0
	seen := make(map[string]string)
	for _, id := range b.order {
		c, ok := b.columns[id]
		if !ok {
			errs = append(errs, fmt.Errorf("column order names unknown column %q", id))
			continue
		}
		if c.DefaultForNewTickets {
			defaults++
		}
		if c.WipLimit != nil && *c.WipLimit < 1 {
			errs = append(errs, fmt.Errorf("column %q: %w", id, ErrInvalidWipLimit))
		}
		for _, tid := range c.TicketIDs {
			if prev, dup := seen[tid]; dup {
				errs = append(errs, fmt.Errorf("ticket %s placed in both %q and %q", tid, prev, id))
				continue
			}
			seen[tid] = id
			if _, ok := b.tickets[tid]; !ok {
				errs = append(errs, fmt.Errorf("column %q holds unknown ticket %s", id, tid))
			}
		}
	}
	if defaults > 1 {
		errs = append(errs, fmt.Errorf("%d columns marked default for new tickets", defaults))
	}
	for id := range b.tickets {
		if _, ok := seen[id]; !ok {
			errs = append(errs, fmt.Errorf("ticket %s: %w", id, ErrTicketNotPlaced))
		}
	}
	return errors.Join(errs...)
}
