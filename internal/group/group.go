// Package group tags clusters of related tickets with a shared display
// color. A ticket may belong to several groups at once; it keeps one
// (groupID, color) entry per group plus a legacy scalar color that mirrors
// the most recently written one.
package group

import (
	"sort"
	"strings"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
)

// Lookup resolves ticket IDs to the canonical, mutable ticket records.
type Lookup interface {
	Ticket(id string) (*model.Ticket, bool)
}

// DeriveGroupID returns a stable group identifier for a member set:
// "group-" followed by the sorted, de-duplicated IDs joined with "-".
func DeriveGroupID(ids []string) string {
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		uniq = append(uniq, id)
	}
	sort.Strings(uniq)
	return "group-" + strings.Join(uniq, "-")
}

// Assign upserts (groupID, color) on every listed ticket that exists and
// sets each one's legacy color to color. An empty groupID is derived from
// ids. Unknown tickets are skipped. It returns the group ID used and the
// IDs of the tickets that were updated.
func Assign(l Lookup, ids []string, color, groupID string) (string, []string) {
	if groupID == "" {
		groupID = DeriveGroupID(ids)
	}

	var updated []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		t, ok := l.Ticket(id)
		if !ok {
			continue
		}
		upsert(t, groupID, color)
		t.GroupColor = color
		updated = append(updated, id)
	}
	return groupID, updated
}

func upsert(t *model.Ticket, groupID, color string) {
	for i := range t.GroupColors {
		if t.GroupColors[i].GroupID == groupID {
			t.GroupColors[i].Color = color
			return
		}
	}
	t.GroupColors = append(t.GroupColors, model.GroupColor{GroupID: groupID, Color: color})
}

// Clear removes every group membership from the listed tickets and unsets
// their legacy color. Unknown tickets are skipped.
func Clear(l Lookup, ids []string) []string {
	var cleared []string
	for _, id := range ids {
		t, ok := l.Ticket(id)
		if !ok {
			continue
		}
		t.GroupColors = []model.GroupColor{}
		t.GroupColor = ""
		cleared = append(cleared, id)
	}
	return cleared
}

// Primary returns the color a ticket is drawn with: its first group entry,
// else the legacy color, else "".
func Primary(t *model.Ticket) string {
	if len(t.GroupColors) > 0 {
		return t.GroupColors[0].Color
	}
	return t.GroupColor
}

// Colors returns the distinct colors of a ticket's groups in membership
// order.
func Colors(t *model.Ticket) []string {
	var out []string
	seen := map[string]bool{}
	for _, gc := range t.GroupColors {
		if gc.Color == "" || seen[gc.Color] {
			continue
		}
		seen[gc.Color] = true
		out = append(out, gc.Color)
	}
	if len(out) == 0 && t.GroupColor != "" {
		out = append(out, t.GroupColor)
	}
	return out
}
