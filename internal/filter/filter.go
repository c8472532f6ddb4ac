package filter

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
)

// Sort keys accepted by Query.SortBy.
const (
	SortNone     = ""
	SortPriority = "priority"
	SortDate     = "date"
	SortAssignee = "assignee"
)

var validSorts = []string{SortPriority, SortDate, SortAssignee}

// ValidateSort returns an error if by is not a recognized sort key.
func ValidateSort(by string) error {
	if by == SortNone || slices.Contains(validSorts, by) {
		return nil
	}
	return fmt.Errorf("invalid sort %q: must be one of %s", by, strings.Join(validSorts, ", "))
}

// Query narrows and orders the tickets shown on the board.
type Query struct {
	Text       string   // case-insensitive substring
	Assignee   string   // exact match
	Priorities []string // multiple = OR
	SortBy     string
}

// IsZero reports whether the query neither filters nor sorts.
func (q Query) IsZero() bool {
	return q.Text == "" && q.Assignee == "" && len(q.Priorities) == 0 && q.SortBy == SortNone
}

// ToStringSet converts a slice of strings to a set for O(1) membership checks.
func ToStringSet(ss []string) map[string]struct{} {
	if len(ss) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		set[s] = struct{}{}
	}
	return set
}

// Matches reports whether a ticket satisfies the query. Text is matched
// against the ticket ID, RMA number, item, reason, notes and the values of
// its custom fields.
func Matches(t *model.Ticket, q Query) bool {
	if q.Assignee != "" && t.AssignedTo != q.Assignee {
		return false
	}
	if set := ToStringSet(q.Priorities); set != nil {
		if _, ok := set[string(t.Priority)]; !ok {
			return false
		}
	}
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	if needle == "" {
		return true
	}
	for _, hay := range searchable(t) {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

func searchable(t *model.Ticket) []string {
	fields := []string{t.ID, t.RMANumber, t.Item, t.Reason, t.Notes}
	for _, v := range t.CustomFields {
		fields = append(fields, v)
	}
	return fields
}

// Apply filters tickets by q and orders the survivors by q.SortBy. The input
// slice is not modified.
func Apply(tickets []*model.Ticket, q Query) []*model.Ticket {
	out := make([]*model.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if Matches(t, q) {
			out = append(out, t)
		}
	}
	Sort(out, q.SortBy)
	return out
}

// Sort orders tickets in place. priority puts High first, date puts the
// newest first and assignee is lexicographic with unassigned tickets last.
// The sort is stable, so equal tickets keep their board order. Unknown keys
// leave the slice untouched.
func Sort(tickets []*model.Ticket, by string) {
	var less func(a, b *model.Ticket) int
	switch by {
	case SortPriority:
		less = func(a, b *model.Ticket) int {
			return cmp.Compare(b.Priority.Rank(), a.Priority.Rank())
		}
	case SortDate:
		less = func(a, b *model.Ticket) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	case SortAssignee:
		less = func(a, b *model.Ticket) int {
			switch {
			case a.AssignedTo == b.AssignedTo:
				return 0
			case a.AssignedTo == "":
				return 1
			case b.AssignedTo == "":
				return -1
			}
			return strings.Compare(a.AssignedTo, b.AssignedTo)
		}
	default:
		return
	}
	slices.SortStableFunc(tickets, less)
}
