package tracker

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
	"github.com/ALT-F4-LLC/rmaboard/internal/relation"
)

// TicketInput holds the fields accepted when creating a ticket.
type TicketInput struct {
	RMANumber      string               `json:"rma_number"`
	CustomerID     string               `json:"customer_id" validate:"required"`
	Item           string               `json:"item" validate:"required"`
	Reason         string               `json:"reason" validate:"required"`
	Notes          string               `json:"notes"`
	Priority       model.Priority       `json:"priority" validate:"omitempty,oneof=High Medium Low"`
	AssignedTo     string               `json:"assigned_to"`
	Status         string               `json:"status"`
	RelatedTickets []model.RawEdge      `json:"related_tickets"`
	ExternalLinks  []model.ExternalLink `json:"external_links"`
	CustomFields   map[string]string    `json:"custom_fields"`
	Attachments    []model.Attachment   `json:"attachments"`
}

// TicketPatch holds the fields of an edit. Nil fields are left unchanged.
type TicketPatch struct {
	CustomerID     *string               `json:"customer_id,omitempty"`
	Item           *string               `json:"item,omitempty"`
	Reason         *string               `json:"reason,omitempty"`
	Notes          *string               `json:"notes,omitempty"`
	Priority       *model.Priority       `json:"priority,omitempty"`
	AssignedTo     *string               `json:"assigned_to,omitempty"`
	Status         *string               `json:"status,omitempty"`
	RelatedTickets *[]model.RawEdge      `json:"related_tickets,omitempty"`
	ExternalLinks  *[]model.ExternalLink `json:"external_links,omitempty"`
	CustomFields   *map[string]string    `json:"custom_fields,omitempty"`
	Attachments    *[]model.Attachment   `json:"attachments,omitempty"`
}

// immutableFields may not appear in a merge patch.
var immutableFields = []string{"id", "rma_number", "created_at", "updated_at", "completed_at", "status_history", "activity", "group_color", "group_colors"}

// CreateTicket validates in, assigns an ID and RMA number, and registers the
// ticket with both the canonical list and the board. Nothing is changed
// when validation fails.
func (t *Tracker) CreateTicket(in TicketInput) (*model.Ticket, error) {
	in.CustomerID = strings.TrimSpace(in.CustomerID)
	in.Item = strings.TrimSpace(in.Item)
	in.Reason = strings.TrimSpace(in.Reason)
	in.RMANumber = strings.TrimSpace(in.RMANumber)
	in.Status = strings.TrimSpace(in.Status)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	now := t.now()
	rma := in.RMANumber
	if rma == "" {
		rma = t.nextRMA(now)
	} else if _, exists := t.findByRMA(rma); exists {
		return nil, invalid("rma_number", fmt.Sprintf("rma_number %s is already in use", rma))
	}

	id := t.newID()
	tk := &model.Ticket{
		ID:            id,
		RMANumber:     rma,
		CustomerID:    in.CustomerID,
		Item:          in.Item,
		Reason:        in.Reason,
		Notes:         in.Notes,
		Priority:      in.Priority,
		AssignedTo:    strings.TrimSpace(in.AssignedTo),
		Status:        in.Status,
		ExternalLinks: slices.Clone(in.ExternalLinks),
		CustomFields:  cloneFields(in.CustomFields),
		Attachments:   slices.Clone(in.Attachments),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	tk.RelatedTickets = cleanEdges(id, in.RelatedTickets)
	if tk.Status == "" {
		tk.Status = model.StatusNew
	}
	if tk.IsCompleted() {
		tk.CompletedAt = &now
	}
	tk.EnsureCollections()
	tk.Activity = append(tk.Activity, t.activity(model.ActivityCreated, "", "Ticket "+rma+" created", now))

	t.tickets = append(t.tickets, tk)
	col := t.board.Place(tk, now)
	t.commit("ticket created", "ticket", id, "rma", rma, "column", col)
	return tk.Clone(), nil
}

// nextRMA returns the next unused RMA number for the year of now.
func (t *Tracker) nextRMA(now time.Time) string {
	year := now.Year()
	seq := 0
	for _, tk := range t.tickets {
		y, s, err := model.ParseRMA(t.rmaPrefix, tk.RMANumber)
		if err == nil && y == year && s > seq {
			seq = s
		}
	}
	for {
		seq++
		rma := model.FormatRMA(t.rmaPrefix, year, seq)
		if _, taken := t.findByRMA(rma); !taken {
			return rma
		}
	}
}

func (t *Tracker) findByRMA(rma string) (*model.Ticket, bool) {
	for _, tk := range t.tickets {
		if strings.EqualFold(tk.RMANumber, rma) {
			return tk, true
		}
	}
	return nil, false
}

func (t *Tracker) ticket(id string) (*model.Ticket, error) {
	tk, ok := t.board.Ticket(id)
	if !ok {
		return nil, fmt.Errorf("ticket %s: %w", id, ErrNotFound)
	}
	return tk, nil
}

// cleanEdges normalizes raw edges and drops edges pointing back at owner.
func cleanEdges(owner string, raw []model.RawEdge) []model.RelationshipEdge {
	edges := relation.Clean(raw)
	return slices.DeleteFunc(edges, func(e model.RelationshipEdge) bool { return e.TargetID == owner })
}

func cloneFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// GetTicket returns a copy of the ticket with the given ID.
func (t *Tracker) GetTicket(id string) (*model.Ticket, error) {
	tk, err := t.ticket(id)
	if err != nil {
		return nil, err
	}
	return tk.Clone(), nil
}

// GetTicketByRMA looks a ticket up by RMA number, ignoring case.
func (t *Tracker) GetTicketByRMA(rma string) (*model.Ticket, error) {
	tk, ok := t.findByRMA(strings.TrimSpace(rma))
	if !ok {
		return nil, fmt.Errorf("ticket %s: %w", rma, ErrNotFound)
	}
	return tk.Clone(), nil
}

// ResolveTicket accepts either a ticket ID or an RMA number.
func (t *Tracker) ResolveTicket(ref string) (*model.Ticket, error) {
	if tk, ok := t.board.Ticket(ref); ok {
		return tk.Clone(), nil
	}
	return t.GetTicketByRMA(ref)
}

// ListTickets returns copies of every ticket in creation order.
func (t *Tracker) ListTickets() []*model.Ticket {
	return cloneTickets(t.tickets)
}

// UpdateTicket applies patch to a ticket. Setting status to Completed
// stamps the completion time once; moving away from Completed clears it.
func (t *Tracker) UpdateTicket(id string, patch TicketPatch) (*model.Ticket, error) {
	tk, err := t.ticket(id)
	if err != nil {
		return nil, err
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	now := t.now()
	if patch.CustomerID != nil {
		tk.CustomerID = strings.TrimSpace(*patch.CustomerID)
	}
	if patch.Item != nil {
		tk.Item = strings.TrimSpace(*patch.Item)
	}
	if patch.Reason != nil {
		tk.Reason = strings.TrimSpace(*patch.Reason)
	}
	if patch.Notes != nil {
		tk.Notes = *patch.Notes
	}
	if patch.Priority != nil {
		tk.Priority = *patch.Priority
	}
	if patch.AssignedTo != nil {
		tk.AssignedTo = strings.TrimSpace(*patch.AssignedTo)
	}
	if patch.RelatedTickets != nil {
		tk.RelatedTickets = cleanEdges(id, *patch.RelatedTickets)
	}
	if patch.ExternalLinks != nil {
		tk.ExternalLinks = slices.Clone(*patch.ExternalLinks)
	}
	if patch.CustomFields != nil {
		tk.CustomFields = cloneFields(*patch.CustomFields)
	}
	if patch.Attachments != nil {
		tk.Attachments = slices.Clone(*patch.Attachments)
	}
	if patch.Status != nil {
		t.setStatus(tk, strings.TrimSpace(*patch.Status), now)
	}
	tk.UpdatedAt = now
	tk.EnsureCollections()

	t.commit("ticket updated", "ticket", id)
	return tk.Clone(), nil
}

func validatePatch(p TicketPatch) error {
	verr := &ValidationError{}
	blank := func(field string, v *string) {
		if v != nil && strings.TrimSpace(*v) == "" {
			verr.add(field, field+" is required")
		}
	}
	blank("customer_id", p.CustomerID)
	blank("item", p.Item)
	blank("reason", p.Reason)
	blank("status", p.Status)
	if p.Priority != nil {
		if err := model.ValidatePriority(*p.Priority); err != nil {
			verr.add("priority", err.Error())
		}
	}
	return verr.orNil()
}

// setStatus changes a ticket's status, maintaining CompletedAt and logging a
// status activity entry when the status actually changes.
func (t *Tracker) setStatus(tk *model.Ticket, status string, now time.Time) {
	prev := tk.Status
	tk.Status = status
	switch {
	case tk.IsCompleted() && tk.CompletedAt == nil:
		tk.CompletedAt = &now
	case !tk.IsCompleted():
		tk.CompletedAt = nil
	}
	if prev == status {
		return
	}
	tk.Activity = append(tk.Activity, t.activity(model.ActivityStatus, "", fmt.Sprintf("Status changed from %s to %s", prev, status), now))
}

// editableTicket is the document a merge patch is applied to.
type editableTicket struct {
	CustomerID     string               `json:"customer_id"`
	Item           string               `json:"item"`
	Reason         string               `json:"reason"`
	Notes          string               `json:"notes"`
	Priority       model.Priority       `json:"priority"`
	AssignedTo     string               `json:"assigned_to"`
	Status         string               `json:"status"`
	RelatedTickets []model.RawEdge      `json:"related_tickets"`
	ExternalLinks  []model.ExternalLink `json:"external_links"`
	CustomFields   map[string]string    `json:"custom_fields"`
	Attachments    []model.Attachment   `json:"attachments"`
}

func editableOf(tk *model.Ticket) editableTicket {
	edges := make([]model.RawEdge, 0, len(tk.RelatedTickets))
	for _, e := range tk.RelatedTickets {
		edges = append(edges, model.EdgeObject(e.TargetID, string(e.Type), e.Note))
	}
	return editableTicket{
		CustomerID:     tk.CustomerID,
		Item:           tk.Item,
		Reason:         tk.Reason,
		Notes:          tk.Notes,
		Priority:       tk.Priority,
		AssignedTo:     tk.AssignedTo,
		Status:         tk.Status,
		RelatedTickets: edges,
		ExternalLinks:  tk.ExternalLinks,
		CustomFields:   tk.CustomFields,
		Attachments:    tk.Attachments,
	}
}

// MergePatchTicket applies an RFC 7396 JSON merge patch to the editable
// fields of a ticket, then updates it as UpdateTicket does.
func (t *Tracker) MergePatchTicket(id string, patch []byte) (*model.Ticket, error) {
	tk, err := t.ticket(id)
	if err != nil {
		return nil, err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(patch, &keys); err != nil {
		return nil, invalid("patch", fmt.Sprintf("patch must be a JSON object: %v", err))
	}
	verr := &ValidationError{}
	for _, f := range immutableFields {
		if _, ok := keys[f]; ok {
			verr.add(f, f+" cannot be changed")
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	original, err := json.Marshal(editableOf(tk))
	if err != nil {
		return nil, fmt.Errorf("encoding ticket %s: %w", id, err)
	}
	merged, err := jsonpatch.MergePatch(original, patch)
	if err != nil {
		return nil, invalid("patch", fmt.Sprintf("applying merge patch: %v", err))
	}
	var e editableTicket
	if err := json.Unmarshal(merged, &e); err != nil {
		return nil, invalid("patch", fmt.Sprintf("patched ticket is malformed: %v", err))
	}

	if e.RelatedTickets == nil {
		e.RelatedTickets = []model.RawEdge{}
	}
	return t.UpdateTicket(id, TicketPatch{
		CustomerID:     &e.CustomerID,
		Item:           &e.Item,
		Reason:         &e.Reason,
		Notes:          &e.Notes,
		Priority:       &e.Priority,
		AssignedTo:     &e.AssignedTo,
		Status:         &e.Status,
		RelatedTickets: &e.RelatedTickets,
		ExternalLinks:  &e.ExternalLinks,
		CustomFields:   &e.CustomFields,
		Attachments:    &e.Attachments,
	})
}

// DeleteTicket removes a ticket from the canonical list and the board.
// Edges on other tickets that point at it are left in place and skipped
// on read.
func (t *Tracker) DeleteTicket(id string) error {
	if _, err := t.ticket(id); err != nil {
		return err
	}
	t.tickets = slices.DeleteFunc(t.tickets, func(tk *model.Ticket) bool { return tk.ID == id })
	t.board.Remove(id)
	t.commit("ticket deleted", "ticket", id)
	return nil
}
