package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultRMAPrefix is the prefix used for generated RMA numbers.
const DefaultRMAPrefix = "RMA"

// Well-known ticket statuses. Status is otherwise free-form and mirrors the
// name of the board column a ticket sits in.
const (
	StatusNew       = "New"
	StatusCompleted = "Completed"
)

// Priority represents the urgency of a repair.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
	PriorityNone   Priority = ""
)

var validPriorities = []Priority{
	PriorityHigh,
	PriorityMedium,
	PriorityLow,
	PriorityNone,
}

// ValidatePriority returns an error if p is not a recognized priority.
func ValidatePriority(p Priority) error {
	for _, v := range validPriorities {
		if p == v {
			return nil
		}
	}
	return fmt.Errorf("invalid priority %q: must be one of High, Medium, Low", p)
}

// Rank orders priorities for sorting, highest first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Color returns a color name string suitable for terminal rendering.
func (p Priority) Color() string {
	switch p {
	case PriorityHigh:
		return "red"
	case PriorityMedium:
		return "yellow"
	case PriorityLow:
		return "gray"
	default:
		return "white"
	}
}

// FormatRMA returns the display form of an RMA number, e.g. "RMA-2026-007".
func FormatRMA(prefix string, year, seq int) string {
	if prefix == "" {
		prefix = DefaultRMAPrefix
	}
	return fmt.Sprintf("%s-%d-%03d", prefix, year, seq)
}

// ParseRMA splits an RMA number of the form PREFIX-YYYY-NNN into its parts.
// The prefix comparison is case-insensitive.
func ParseRMA(prefix, input string) (year, seq int, err error) {
	if prefix == "" {
		prefix = DefaultRMAPrefix
	}
	s := strings.TrimSpace(input)
	head := strings.ToUpper(prefix) + "-"
	if !strings.HasPrefix(strings.ToUpper(s), head) {
		return 0, 0, fmt.Errorf("invalid RMA number %q: missing %s prefix", input, prefix)
	}
	parts := strings.Split(s[len(head):], "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid RMA number %q: want %s-YYYY-NNN", input, prefix)
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid RMA number %q: %w", input, err)
	}
	seq, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid RMA number %q: %w", input, err)
	}
	if seq <= 0 {
		return 0, 0, fmt.Errorf("invalid RMA number %q: sequence must be positive", input)
	}
	return year, seq, nil
}

// StatusEntry records a ticket entering a board column.
type StatusEntry struct {
	ColumnID  string    `json:"column_id"`
	EnteredAt time.Time `json:"entered_at"`
}

// ExternalLink is a labelled URL attached to a ticket.
type ExternalLink struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

// Attachment describes a file attached to a ticket.
type Attachment struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Type     string `json:"type"`
}

// IsImage reports whether the attachment has an image MIME type.
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.Type, "image")
}

// GroupColor tags a ticket as a member of a visual group.
type GroupColor struct {
	GroupID string `json:"group_id"`
	Color   string `json:"color"`
}

// Ticket is a repair ticket.
type Ticket struct {
	ID             string             `json:"id"`
	RMANumber      string             `json:"rma_number"`
	CustomerID     string             `json:"customer_id"`
	Item           string             `json:"item"`
	Reason         string             `json:"reason"`
	Notes          string             `json:"notes,omitempty"`
	Priority       Priority           `json:"priority,omitempty"`
	AssignedTo     string             `json:"assigned_to,omitempty"`
	Status         string             `json:"status"`
	StatusHistory  []StatusEntry      `json:"status_history"`
	RelatedTickets []RelationshipEdge `json:"related_tickets"`
	ExternalLinks  []ExternalLink     `json:"external_links"`
	CustomFields   map[string]string  `json:"custom_fields"`
	Attachments    []Attachment       `json:"attachments"`
	GroupColor     string             `json:"group_color,omitempty"`
	GroupColors    []GroupColor       `json:"group_colors"`
	Activity       []Activity         `json:"activity"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
}

// LastColumn returns the column ID of the most recent status history entry,
// or "" when the ticket has never been placed.
func (t *Ticket) LastColumn() string {
	if len(t.StatusHistory) == 0 {
		return ""
	}
	return t.StatusHistory[len(t.StatusHistory)-1].ColumnID
}

// OutgoingTo returns the stored edge pointing at targetID, if any.
func (t *Ticket) OutgoingTo(targetID string) (RelationshipEdge, bool) {
	for _, e := range t.RelatedTickets {
		if e.TargetID == targetID {
			return e, true
		}
	}
	return RelationshipEdge{}, false
}

// IsCompleted reports whether the ticket carries the Completed status.
func (t *Ticket) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// EnsureCollections replaces nil collections with empty ones so the ticket
// serializes with [] and {} rather than null.
func (t *Ticket) EnsureCollections() {
	if t.StatusHistory == nil {
		t.StatusHistory = []StatusEntry{}
	}
	if t.RelatedTickets == nil {
		t.RelatedTickets = []RelationshipEdge{}
	}
	if t.ExternalLinks == nil {
		t.ExternalLinks = []ExternalLink{}
	}
	if t.CustomFields == nil {
		t.CustomFields = map[string]string{}
	}
	if t.Attachments == nil {
		t.Attachments = []Attachment{}
	}
	if t.GroupColors == nil {
		t.GroupColors = []GroupColor{}
	}
	if t.Activity == nil {
		t.Activity = []Activity{}
	}
}

// Clone returns a deep copy of the ticket.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	c := *t
	c.StatusHistory = append([]StatusEntry(nil), t.StatusHistory...)
	c.RelatedTickets = append([]RelationshipEdge(nil), t.RelatedTickets...)
	c.ExternalLinks = append([]ExternalLink(nil), t.ExternalLinks...)
	c.Attachments = append([]Attachment(nil), t.Attachments...)
	c.GroupColors = append([]GroupColor(nil), t.GroupColors...)
	c.Activity = append([]Activity(nil), t.Activity...)
	if t.CustomFields != nil {
		c.CustomFields = make(map[string]string, len(t.CustomFields))
		for k, v := range t.CustomFields {
			c.CustomFields[k] = v
		}
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	c.EnsureCollections()
	return &c
}
