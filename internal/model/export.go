package model

// DocumentVersion is the current version of the persisted document layout.
const DocumentVersion = 1

// Document is the single serializable unit handed to a storage backend.
// Board is optional: when absent the layout is rebuilt from each ticket's
// status history.
type Document struct {
	Version   int         `json:"version"`
	Tickets   []*Ticket   `json:"tickets"`
	Customers []*Customer `json:"customers"`
	Board     *Board      `json:"board,omitempty"`
}
