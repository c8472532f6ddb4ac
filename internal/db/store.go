package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
	"github.com/ALT-F4-LLC/rmaboard/internal/relation"
)

// execer abstracts *sql.DB and *sql.Tx for executing statements.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// scanner abstracts *sql.Row and *sql.Rows for scanning a single row.
type scanner interface {
	Scan(dest ...any) error
}

// Store saves and loads the full tracker document.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open, initialized database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// dataTables lists every data table, children before parents.
var dataTables = []string{
	"board_column_tickets",
	"board_columns",
	"ticket_activity",
	"ticket_relations",
	"tickets",
	"customers",
}

// boardSavedKey marks in the meta table that a board layout was saved, so an
// empty layout loads as empty rather than as missing.
const boardSavedKey = "board_saved"

func clearTables(ex execer) error {
	for _, table := range dataTables {
		if _, err := ex.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	if _, err := ex.Exec(`DELETE FROM meta WHERE key = ?`, boardSavedKey); err != nil {
		return fmt.Errorf("clearing board marker: %w", err)
	}
	return nil
}

// ClearAllData deletes all rows from every data table within a single
// transaction. The schema and meta table are preserved.
func ClearAllData(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := clearTables(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// CountTickets returns the total number of tickets in the database.
func CountTickets(db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM tickets`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting tickets: %w", err)
	}
	return count, nil
}

// Save replaces the stored document with doc in one transaction.
func (s *Store) Save(doc *model.Document) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := clearTables(tx); err != nil {
		return err
	}
	for i, c := range doc.Customers {
		if err := insertCustomer(tx, i, c); err != nil {
			return err
		}
	}
	for i, t := range doc.Tickets {
		if err := insertTicket(tx, i, t); err != nil {
			return err
		}
	}
	if doc.Board != nil {
		if err := insertBoard(tx, doc.Board); err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, '1')`, boardSavedKey); err != nil {
			return fmt.Errorf("marking board saved: %w", err)
		}
	}
	return tx.Commit()
}

func insertCustomer(ex execer, pos int, c *model.Customer) error {
	_, err := ex.Exec(
		`INSERT INTO customers (id, position, slug, company_name, contact_name, contact_email, contact_phone, address, city, state, zip, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, pos, c.Slug, c.CompanyName, c.ContactName, c.ContactEmail, c.ContactPhone,
		c.Address, c.City, c.State, c.Zip, c.Notes,
	)
	if err != nil {
		return fmt.Errorf("inserting customer %s: %w", c.ID, err)
	}
	return nil
}

func insertTicket(ex execer, pos int, t *model.Ticket) error {
	history, err := encodeJSON(t.StatusHistory, "[]")
	if err != nil {
		return err
	}
	links, err := encodeJSON(t.ExternalLinks, "[]")
	if err != nil {
		return err
	}
	fields, err := encodeJSON(t.CustomFields, "{}")
	if err != nil {
		return err
	}
	attachments, err := encodeJSON(t.Attachments, "[]")
	if err != nil {
		return err
	}
	groups, err := encodeJSON(t.GroupColors, "[]")
	if err != nil {
		return err
	}

	var completedAt *string
	if t.CompletedAt != nil {
		s := formatTime(*t.CompletedAt)
		completedAt = &s
	}

	_, err = ex.Exec(
		`INSERT INTO tickets (id, position, rma_number, customer_id, item, reason, notes, priority, assigned_to, status,
		 group_color, status_history, external_links, custom_fields, attachments, group_colors, created_at, updated_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, pos, t.RMANumber, t.CustomerID, t.Item, t.Reason, t.Notes, string(t.Priority), t.AssignedTo, t.Status,
		t.GroupColor, history, links, fields, attachments, groups,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt), completedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting ticket %s: %w", t.ID, err)
	}

	for i, e := range t.RelatedTickets {
		if _, err := ex.Exec(
			`INSERT OR IGNORE INTO ticket_relations (ticket_id, target_id, relation_type, note, position) VALUES (?, ?, ?, ?, ?)`,
			t.ID, e.TargetID, string(e.Type), e.Note, i,
		); err != nil {
			return fmt.Errorf("inserting relation %s -> %s: %w", t.ID, e.TargetID, err)
		}
	}
	for i, a := range t.Activity {
		if _, err := ex.Exec(
			`INSERT INTO ticket_activity (id, ticket_id, position, type, author, body, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, t.ID, i, string(a.Type), a.Author, a.Text, formatTime(a.Timestamp),
		); err != nil {
			return fmt.Errorf("inserting activity for %s: %w", t.ID, err)
		}
	}
	return nil
}

func insertBoard(ex execer, b *model.Board) error {
	byID := make(map[string]*model.Column, len(b.Columns))
	for _, c := range b.Columns {
		byID[c.ID] = c
	}
	for pos, id := range b.ColumnOrder {
		c, ok := byID[id]
		if !ok {
			continue
		}
		var wip *int
		if c.WipLimit != nil {
			v := *c.WipLimit
			wip = &v
		}
		if _, err := ex.Exec(
			`INSERT INTO board_columns (id, position, name, wip_limit, default_for_new_tickets, is_incoming) VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, pos, c.Name, wip, boolToInt(c.DefaultForNewTickets), boolToInt(c.IsIncoming),
		); err != nil {
			return fmt.Errorf("inserting column %s: %w", c.ID, err)
		}
		for i, tid := range c.TicketIDs {
			if _, err := ex.Exec(
				`INSERT INTO board_column_tickets (column_id, ticket_id, position) VALUES (?, ?, ?)`,
				c.ID, tid, i,
			); err != nil {
				return fmt.Errorf("placing ticket %s in column %s: %w", tid, c.ID, err)
			}
		}
	}
	return nil
}

// Load reads the stored document. It returns nil when nothing has been
// saved. Relationship edges are normalized on the way out.
func (s *Store) Load() (*model.Document, error) {
	customers, err := s.loadCustomers()
	if err != nil {
		return nil, err
	}
	tickets, err := s.loadTickets()
	if err != nil {
		return nil, err
	}
	board, err := s.loadBoard()
	if err != nil {
		return nil, err
	}
	if len(customers) == 0 && len(tickets) == 0 && board == nil {
		return nil, nil
	}
	return &model.Document{
		Version:   model.DocumentVersion,
		Tickets:   tickets,
		Customers: customers,
		Board:     board,
	}, nil
}

func (s *Store) loadCustomers() ([]*model.Customer, error) {
	rows, err := s.db.Query(
		`SELECT id, slug, company_name, contact_name, contact_email, contact_phone, address, city, state, zip, notes
		 FROM customers ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	var out []*model.Customer
	for rows.Next() {
		var c model.Customer
		var contactName, email, phone, address, city, state, zip, notes sql.NullString
		if err := rows.Scan(&c.ID, &c.Slug, &c.CompanyName, &contactName, &email, &phone, &address, &city, &state, &zip, &notes); err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}
		c.ContactName = contactName.String
		c.ContactEmail = email.String
		c.ContactPhone = phone.String
		c.Address = address.String
		c.City = city.String
		c.State = state.String
		c.Zip = zip.String
		c.Notes = notes.String
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (s *Store) loadTickets() ([]*model.Ticket, error) {
	rows, err := s.db.Query(
		`SELECT id, rma_number, customer_id, item, reason, notes, priority, assigned_to, status, group_color,
		 status_history, external_links, custom_fields, attachments, group_colors, created_at, updated_at, completed_at
		 FROM tickets ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}
	defer rows.Close()

	var out []*model.Ticket
	byID := make(map[string]*model.Ticket)
	for rows.Next() {
		t, err := scanTicketFrom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		byID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := s.hydrateRelations(byID); err != nil {
		return nil, err
	}
	if err := s.hydrateActivity(byID); err != nil {
		return nil, err
	}
	for _, t := range out {
		t.EnsureCollections()
	}
	return out, nil
}

func scanTicketFrom(s scanner) (*model.Ticket, error) {
	var t model.Ticket
	var customerID, notes, priority, assignedTo, groupColor, completedAt sql.NullString
	var history, links, fields, attachments, groups string
	var createdAt, updatedAt string

	if err := s.Scan(
		&t.ID, &t.RMANumber, &customerID, &t.Item, &t.Reason, &notes, &priority, &assignedTo, &t.Status, &groupColor,
		&history, &links, &fields, &attachments, &groups, &createdAt, &updatedAt, &completedAt,
	); err != nil {
		return nil, fmt.Errorf("scanning ticket: %w", err)
	}

	t.CustomerID = customerID.String
	t.Notes = notes.String
	t.Priority = model.Priority(priority.String)
	t.AssignedTo = assignedTo.String
	t.GroupColor = groupColor.String

	decode := []struct {
		name string
		raw  string
		dst  any
	}{
		{"status_history", history, &t.StatusHistory},
		{"external_links", links, &t.ExternalLinks},
		{"custom_fields", fields, &t.CustomFields},
		{"attachments", attachments, &t.Attachments},
		{"group_colors", groups, &t.GroupColors},
	}
	for _, d := range decode {
		if err := json.Unmarshal([]byte(d.raw), d.dst); err != nil {
			return nil, fmt.Errorf("decoding %s for ticket %s: %w", d.name, t.ID, err)
		}
	}

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at for ticket %s: %w", t.ID, err)
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at for ticket %s: %w", t.ID, err)
	}
	if completedAt.Valid && completedAt.String != "" {
		ts, err := parseTime(completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing completed_at for ticket %s: %w", t.ID, err)
		}
		t.CompletedAt = &ts
	}
	return &t, nil
}

func (s *Store) hydrateRelations(byID map[string]*model.Ticket) error {
	rows, err := s.db.Query(
		`SELECT ticket_id, target_id, relation_type, note FROM ticket_relations ORDER BY ticket_id, position`,
	)
	if err != nil {
		return fmt.Errorf("listing relations: %w", err)
	}
	defer rows.Close()

	raw := make(map[string][]model.RawEdge)
	for rows.Next() {
		var ticketID, targetID, relType string
		var note sql.NullString
		if err := rows.Scan(&ticketID, &targetID, &relType, &note); err != nil {
			return fmt.Errorf("scanning relation: %w", err)
		}
		raw[ticketID] = append(raw[ticketID], model.EdgeObject(targetID, relType, note.String))
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for id, edges := range raw {
		if t, ok := byID[id]; ok {
			t.RelatedTickets = relation.Clean(edges)
		}
	}
	return nil
}

func (s *Store) hydrateActivity(byID map[string]*model.Ticket) error {
	rows, err := s.db.Query(
		`SELECT id, ticket_id, type, author, body, created_at FROM ticket_activity ORDER BY ticket_id, position`,
	)
	if err != nil {
		return fmt.Errorf("listing activity: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a model.Activity
		var ticketID, typ, createdAt string
		var author sql.NullString
		if err := rows.Scan(&a.ID, &ticketID, &typ, &author, &a.Text, &createdAt); err != nil {
			return fmt.Errorf("scanning activity: %w", err)
		}
		a.Type = model.ActivityType(typ)
		a.Author = author.String
		ts, err := parseTime(createdAt)
		if err != nil {
			return fmt.Errorf("parsing activity timestamp: %w", err)
		}
		a.Timestamp = ts
		if t, ok := byID[ticketID]; ok {
			t.Activity = append(t.Activity, a)
		}
	}
	return rows.Err()
}

func (s *Store) loadBoard() (*model.Board, error) {
	rows, err := s.db.Query(
		`SELECT id, name, wip_limit, default_for_new_tickets, is_incoming FROM board_columns ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing columns: %w", err)
	}
	defer rows.Close()

	b := &model.Board{}
	byID := make(map[string]*model.Column)
	for rows.Next() {
		var c model.Column
		var wip sql.NullInt64
		var def, incoming int
		if err := rows.Scan(&c.ID, &c.Name, &wip, &def, &incoming); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		if wip.Valid {
			v := int(wip.Int64)
			c.WipLimit = &v
		}
		c.DefaultForNewTickets = def != 0
		c.IsIncoming = incoming != 0
		c.TicketIDs = []string{}
		b.Columns = append(b.Columns, &c)
		b.ColumnOrder = append(b.ColumnOrder, c.ID)
		byID[c.ID] = &c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()
	if len(b.Columns) == 0 {
		return s.emptyBoard()
	}

	placed, err := s.db.Query(`SELECT column_id, ticket_id FROM board_column_tickets ORDER BY column_id, position`)
	if err != nil {
		return nil, fmt.Errorf("listing placements: %w", err)
	}
	defer placed.Close()
	for placed.Next() {
		var colID, ticketID string
		if err := placed.Scan(&colID, &ticketID); err != nil {
			return nil, fmt.Errorf("scanning placement: %w", err)
		}
		if c, ok := byID[colID]; ok {
			c.TicketIDs = append(c.TicketIDs, ticketID)
		}
	}
	return b, placed.Err()
}

// emptyBoard returns an empty layout when one was saved, and nil when no
// layout was ever written.
func (s *Store) emptyBoard() (*model.Board, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM meta WHERE key = ?`, boardSavedKey).Scan(&n); err != nil {
		return nil, fmt.Errorf("reading board marker: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return &model.Board{Columns: []*model.Column{}, ColumnOrder: []string{}}, nil
}

func encodeJSON(v any, empty string) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding json: %w", err)
	}
	if string(data) == "null" {
		return empty, nil
	}
	return string(data), nil
}

// boolToInt converts a bool to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
