package model

// Reserved column IDs managed by the board itself.
const (
	IncomingColumnID = "incoming"
	HoldingColumnID  = "holding"
)

// Column is a Kanban column. A nil WipLimit means unlimited.
type Column struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	WipLimit             *int     `json:"wip_limit"`
	TicketIDs            []string `json:"ticket_ids"`
	DefaultForNewTickets bool     `json:"default_for_new_tickets"`
	IsIncoming           bool     `json:"is_incoming,omitempty"`
}

// AtCapacity reports whether the column cannot accept another ticket.
func (c *Column) AtCapacity() bool {
	return c.WipLimit != nil && len(c.TicketIDs) >= *c.WipLimit
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	cp := *c
	cp.TicketIDs = append([]string{}, c.TicketIDs...)
	if c.WipLimit != nil {
		limit := *c.WipLimit
		cp.WipLimit = &limit
	}
	return &cp
}

// Board is the serialized Kanban layout. ColumnOrder is the source of truth
// for left-to-right iteration.
type Board struct {
	Columns     []*Column `json:"columns"`
	ColumnOrder []string  `json:"column_order"`
}
