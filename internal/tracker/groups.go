package tracker

import (
	"strings"

	"github.com/ALT-F4-LLC/rmaboard/internal/group"
)

// AssignGroupColor tags the listed tickets with color under groupID, which
// is derived from the member IDs when empty. Unknown tickets are skipped.
// It returns the group ID used.
func (t *Tracker) AssignGroupColor(ids []string, color, groupID string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return "", invalid("color", "color is required")
	}
	gid, updated := group.Assign(t.board, ids, color, strings.TrimSpace(groupID))
	now := t.now()
	for _, id := range updated {
		tk, _ := t.board.Ticket(id)
		tk.UpdatedAt = now
	}
	if len(updated) > 0 {
		t.commit("group color assigned", "group", gid, "color", color, "tickets", len(updated))
	}
	return gid, nil
}

// ClearGroupColor removes every group color from the listed tickets and
// returns how many were found.
func (t *Tracker) ClearGroupColor(ids []string) int {
	cleared := group.Clear(t.board, ids)
	now := t.now()
	for _, id := range cleared {
		tk, _ := t.board.Ticket(id)
		tk.UpdatedAt = now
	}
	if len(cleared) > 0 {
		t.commit("group color cleared", "tickets", len(cleared))
	}
	return len(cleared)
}
