package tracker

import (
	"fmt"
	"slices"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
	"github.com/ALT-F4-LLC/rmaboard/internal/relation"
)

// RelationshipPatch edits a stored edge. Nil fields are left unchanged.
type RelationshipPatch struct {
	Type *model.RelationType `json:"type,omitempty"`
	Note *string             `json:"note,omitempty"`
}

func (t *Tracker) relationPair(ownerID, targetID string) (*model.Ticket, error) {
	if ownerID == targetID {
		return nil, fmt.Errorf("ticket %s: %w", ownerID, ErrSelfRelation)
	}
	owner, err := t.ticket(ownerID)
	if err != nil {
		return nil, err
	}
	if _, err := t.ticket(targetID); err != nil {
		return nil, err
	}
	return owner, nil
}

// AddRelationship stores an outgoing edge from owner to target. When an
// edge to target already exists the two are merged: the more specific type
// is kept and a non-empty note replaces the old one.
func (t *Tracker) AddRelationship(ownerID, targetID string, rt model.RelationType, note string) error {
	owner, err := t.relationPair(ownerID, targetID)
	if err != nil {
		return err
	}
	if err := model.ValidateRelationType(rt); err != nil {
		return invalid("type", err.Error())
	}

	edge := model.RelationshipEdge{TargetID: targetID, Type: rt, Note: note}
	if i := slices.IndexFunc(owner.RelatedTickets, func(e model.RelationshipEdge) bool { return e.TargetID == targetID }); i >= 0 {
		cur := owner.RelatedTickets[i]
		best, _ := relation.MostSpecific([]model.RelationshipEdge{cur, edge})
		cur.Type = best.Type
		if note != "" {
			cur.Note = note
		}
		owner.RelatedTickets[i] = cur
	} else {
		owner.RelatedTickets = append(owner.RelatedTickets, edge)
	}
	owner.RelatedTickets = relation.Deduplicate(owner.RelatedTickets)

	now := t.now()
	t.logActivity(owner, model.ActivityRelation, now, "Linked %s as %s", t.label(targetID), rt)
	owner.UpdatedAt = now
	t.commit("relationship added", "owner", ownerID, "target", targetID, "type", string(rt))
	return nil
}

// UpdateRelationship edits the stored edge from owner to target.
func (t *Tracker) UpdateRelationship(ownerID, targetID string, patch RelationshipPatch) error {
	owner, err := t.ticket(ownerID)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(owner.RelatedTickets, func(e model.RelationshipEdge) bool { return e.TargetID == targetID })
	if i < 0 {
		return fmt.Errorf("relationship %s -> %s: %w", ownerID, targetID, ErrNotFound)
	}
	if patch.Type != nil {
		if err := model.ValidateRelationType(*patch.Type); err != nil {
			return invalid("type", err.Error())
		}
		owner.RelatedTickets[i].Type = *patch.Type
	}
	if patch.Note != nil {
		owner.RelatedTickets[i].Note = *patch.Note
	}
	owner.UpdatedAt = t.now()
	t.commit("relationship updated", "owner", ownerID, "target", targetID)
	return nil
}

// RemoveRelationship deletes the stored edge from owner to target. Edges
// stored on target are not touched.
func (t *Tracker) RemoveRelationship(ownerID, targetID string) error {
	owner, err := t.ticket(ownerID)
	if err != nil {
		return err
	}
	n := len(owner.RelatedTickets)
	owner.RelatedTickets = slices.DeleteFunc(owner.RelatedTickets, func(e model.RelationshipEdge) bool { return e.TargetID == targetID })
	if len(owner.RelatedTickets) == n {
		return fmt.Errorf("relationship %s -> %s: %w", ownerID, targetID, ErrNotFound)
	}

	now := t.now()
	t.logActivity(owner, model.ActivityRelation, now, "Unlinked %s", t.label(targetID))
	owner.UpdatedAt = now
	t.commit("relationship removed", "owner", ownerID, "target", targetID)
	return nil
}

// IncomingRelationships returns the edges other tickets store toward id,
// inverted to id's point of view.
func (t *Tracker) IncomingRelationships(id string) ([]model.IncomingEdge, error) {
	if _, err := t.ticket(id); err != nil {
		return nil, err
	}
	return relation.ComputeIncoming(t.tickets, id), nil
}

// ResolvedRelationships returns one display row per related ticket, with
// dangling edges removed.
func (t *Tracker) ResolvedRelationships(id string) ([]relation.ResolvedRelation, error) {
	if _, err := t.ticket(id); err != nil {
		return nil, err
	}
	return relation.Resolve(t.tickets, id), nil
}

// Cluster returns id followed by every ticket directly related to it.
func (t *Tracker) Cluster(id string) ([]string, error) {
	if _, err := t.ticket(id); err != nil {
		return nil, err
	}
	return relation.Cluster(t.tickets, id), nil
}

// label returns a ticket's RMA number, or its ID when that is unset.
func (t *Tracker) label(id string) string {
	if tk, ok := t.board.Ticket(id); ok && tk.RMANumber != "" {
		return tk.RMANumber
	}
	return id
}
