package tracker

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
)

// ActivityInput is a manual entry added to a ticket's activity log.
type ActivityInput struct {
	Type   model.ActivityType `json:"type"`
	Author string             `json:"author"`
	Text   string             `json:"text" validate:"required"`
}

// activity builds an entry stamped with now. An empty author falls back to
// the tracker's configured author.
func (t *Tracker) activity(typ model.ActivityType, author, text string, now time.Time) model.Activity {
	if author == "" {
		author = t.author
	}
	return model.Activity{
		ID:        uuid.NewString(),
		Type:      typ,
		Author:    author,
		Timestamp: now,
		Text:      text,
	}
}

// AddActivity appends an entry to a ticket's activity log. The type
// defaults to note.
func (t *Tracker) AddActivity(ticketID string, in ActivityInput) (model.Activity, error) {
	tk, err := t.ticket(ticketID)
	if err != nil {
		return model.Activity{}, err
	}
	in.Text = strings.TrimSpace(in.Text)
	if err := validateStruct(in); err != nil {
		return model.Activity{}, err
	}
	if in.Type == "" {
		in.Type = model.ActivityNote
	}

	now := t.now()
	entry := t.activity(in.Type, strings.TrimSpace(in.Author), in.Text, now)
	tk.Activity = append(tk.Activity, entry)
	tk.UpdatedAt = now
	t.commit("activity added", "ticket", ticketID, "type", string(in.Type))
	return entry, nil
}

// ListActivity returns a ticket's activity log, oldest first.
func (t *Tracker) ListActivity(ticketID string) ([]model.Activity, error) {
	tk, err := t.ticket(ticketID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(tk.Activity), nil
}

// logActivity appends a system entry without committing.
func (t *Tracker) logActivity(tk *model.Ticket, typ model.ActivityType, now time.Time, format string, args ...any) {
	tk.Activity = append(tk.Activity, t.activity(typ, "", fmt.Sprintf(format, args...), now))
}
