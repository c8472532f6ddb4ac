// Package relation normalizes, deduplicates and inverts ticket relationship
// edges. Edges are stored one-directional on the owning ticket; the inverse
// view is computed on read by scanning every ticket.
//
// Every function here is lenient: malformed or dangling edges are dropped,
// never reported as errors, since relationship data may come from stale
// persisted state.
package relation

import (
	"strings"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
)

// Direction distinguishes a stored edge from a computed one.
type Direction string

const (
	Outgoing Direction = "outgoing"
	Incoming Direction = "incoming"
)

// ResolvedRelation is one display row for a ticket's relationships: the
// counterpart ticket and the relation type as seen from the viewing ticket.
type ResolvedRelation struct {
	TicketID  string             `json:"ticket_id"`
	Type      model.RelationType `json:"type"`
	Note      string             `json:"note"`
	Direction Direction          `json:"direction"`
}

// Normalize coerces raw boundary edges into typed edges. Missing types
// default to related and missing notes to "". Unrecognized types also fall
// back to related. Entries without a usable target ID are dropped.
func Normalize(raw []model.RawEdge) []model.RelationshipEdge {
	edges := make([]model.RelationshipEdge, 0, len(raw))
	for _, r := range raw {
		if !r.Valid {
			continue
		}
		id := strings.TrimSpace(r.ID)
		if id == "" {
			continue
		}
		rt, err := model.ParseRelationType(r.Type)
		if err != nil {
			rt = model.RelationRelated
		}
		edges = append(edges, model.RelationshipEdge{TargetID: id, Type: rt, Note: r.Note})
	}
	return edges
}

// Deduplicate keeps a single edge per target: the one with the highest
// specificity, with the first occurrence winning ties. Surviving edges keep
// the position of the first occurrence of their target.
func Deduplicate(edges []model.RelationshipEdge) []model.RelationshipEdge {
	order := make([]string, 0, len(edges))
	best := make(map[string]model.RelationshipEdge, len(edges))

	for _, e := range edges {
		if e.TargetID == "" {
			continue
		}
		cur, seen := best[e.TargetID]
		if !seen {
			order = append(order, e.TargetID)
			best[e.TargetID] = e
			continue
		}
		if e.Type.Specificity() > cur.Type.Specificity() {
			best[e.TargetID] = e
		}
	}

	out := make([]model.RelationshipEdge, 0, len(order))
	for _, id := range order {
		out = append(out, best[id])
	}
	return out
}

// Clean normalizes and deduplicates raw edges in one pass.
func Clean(raw []model.RawEdge) []model.RelationshipEdge {
	return Deduplicate(Normalize(raw))
}

// MostSpecific returns the edge with the highest specificity, first
// occurrence winning ties. ok is false when edges is empty.
func MostSpecific(edges []model.RelationshipEdge) (edge model.RelationshipEdge, ok bool) {
	for i, e := range edges {
		if i == 0 || e.Type.Specificity() > edge.Type.Specificity() {
			edge = e
			ok = true
		}
	}
	return edge, ok
}

// ComputeIncoming scans every ticket's outgoing edges for ones that target
// selfID and returns them inverted. An incoming edge is omitted when selfID
// already stores an outgoing edge to the source ticket, so the same logical
// relationship is never listed from both directions. Self-loops are skipped.
func ComputeIncoming(tickets []*model.Ticket, selfID string) []model.IncomingEdge {
	var self *model.Ticket
	for _, t := range tickets {
		if t != nil && t.ID == selfID {
			self = t
			break
		}
	}
	return incoming(tickets, selfID, func(sourceID string) bool {
		if self == nil {
			return false
		}
		_, ok := self.OutgoingTo(sourceID)
		return ok
	})
}

func incoming(tickets []*model.Ticket, selfID string, skip func(sourceID string) bool) []model.IncomingEdge {
	var out []model.IncomingEdge
	for _, t := range tickets {
		if t == nil || t.ID == selfID || skip(t.ID) {
			continue
		}
		var edges []model.RelationshipEdge
		for _, e := range t.RelatedTickets {
			if e.TargetID == selfID {
				edges = append(edges, e)
			}
		}
		e, ok := MostSpecific(edges)
		if !ok {
			continue
		}
		out = append(out, model.IncomingEdge{
			SourceID: t.ID,
			Type:     e.Type.Inverse(),
			Note:     e.Note,
		})
	}
	return out
}

// Resolve builds the display list of a ticket's relationships: stored
// outgoing edges whose target still exists, followed by incoming edges from
// tickets with no outgoing counterpart. When both directions exist for the
// same counterpart a single row is kept, the most specific of the two, in
// the position of the outgoing edge. Outgoing wins ties.
func Resolve(tickets []*model.Ticket, selfID string) []ResolvedRelation {
	exists := make(map[string]*model.Ticket, len(tickets))
	for _, t := range tickets {
		if t != nil {
			exists[t.ID] = t
		}
	}
	self, ok := exists[selfID]
	if !ok {
		return nil
	}

	rows := []ResolvedRelation{}
	index := make(map[string]int)
	for _, e := range Deduplicate(self.RelatedTickets) {
		if _, ok := exists[e.TargetID]; !ok || e.TargetID == selfID {
			continue
		}
		index[e.TargetID] = len(rows)
		rows = append(rows, ResolvedRelation{
			TicketID:  e.TargetID,
			Type:      e.Type,
			Note:      e.Note,
			Direction: Outgoing,
		})
	}

	never := func(string) bool { return false }
	for _, in := range incoming(tickets, selfID, never) {
		row := ResolvedRelation{
			TicketID:  in.SourceID,
			Type:      in.Type,
			Note:      in.Note,
			Direction: Incoming,
		}
		i, dup := index[in.SourceID]
		if !dup {
			index[in.SourceID] = len(rows)
			rows = append(rows, row)
			continue
		}
		out := model.RelationshipEdge{TargetID: rows[i].TicketID, Type: rows[i].Type}
		inv := model.RelationshipEdge{TargetID: in.SourceID, Type: in.Type}
		if best, _ := MostSpecific([]model.RelationshipEdge{out, inv}); best.Type != out.Type {
			rows[i] = row
		}
	}
	return rows
}

// Cluster returns the IDs of a ticket and every existing ticket it is
// directly related to in either direction, self first.
func Cluster(tickets []*model.Ticket, selfID string) []string {
	rows := Resolve(tickets, selfID)
	if rows == nil {
		return nil
	}
	ids := make([]string, 0, len(rows)+1)
	ids = append(ids, selfID)
	for _, r := range rows {
		ids = append(ids, r.TicketID)
	}
	return ids
}
