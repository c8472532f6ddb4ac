package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RelationType represents the kind of relationship between two tickets.
type RelationType string

const (
	RelationRelated RelationType = "related"
	RelationParent  RelationType = "parent"
	RelationChild   RelationType = "child"
	RelationSibling RelationType = "sibling"
)

var validRelationTypes = []RelationType{
	RelationRelated,
	RelationParent,
	RelationChild,
	RelationSibling,
}

// ValidateRelationType returns an error if rt is not a recognized relation type.
func ValidateRelationType(rt RelationType) error {
	for _, v := range validRelationTypes {
		if rt == v {
			return nil
		}
	}
	return fmt.Errorf("invalid relation type %q: must be one of %v", rt, validRelationTypes)
}

// ParseRelationType accepts any casing and surrounding whitespace and returns
// the canonical RelationType.
func ParseRelationType(input string) (RelationType, error) {
	normalized := RelationType(strings.ToLower(strings.TrimSpace(input)))
	if err := ValidateRelationType(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// Specificity ranks relation types when two edges describe the same pair of
// tickets. parent and child outrank sibling, which outranks related.
// Unknown types rank below related.
func (rt RelationType) Specificity() int {
	switch rt {
	case RelationParent, RelationChild:
		return 3
	case RelationSibling:
		return 2
	case RelationRelated:
		return 1
	default:
		return 0
	}
}

// Inverse returns the relation type seen from the other end of an edge.
// parent and child swap; related and sibling are symmetric.
func (rt RelationType) Inverse() RelationType {
	switch rt {
	case RelationParent:
		return RelationChild
	case RelationChild:
		return RelationParent
	default:
		return rt
	}
}

// Color returns a color name string suitable for terminal rendering.
func (rt RelationType) Color() string {
	switch rt {
	case RelationParent:
		return "magenta"
	case RelationChild:
		return "blue"
	case RelationSibling:
		return "yellow"
	default:
		return "gray"
	}
}

// RelationshipEdge is an outgoing relationship stored on the owning ticket.
type RelationshipEdge struct {
	TargetID string       `json:"id"`
	Type     RelationType `json:"type"`
	Note     string       `json:"note"`
}

// IncomingEdge is the inverse of another ticket's outgoing edge, computed on
// read and never persisted.
type IncomingEdge struct {
	SourceID string       `json:"source"`
	Type     RelationType `json:"type"`
	Note     string       `json:"note"`
}

// RawEdge is a relationship edge as it arrives at the boundary: either a bare
// ticket ID or a partial {id, type, note} object. Valid is false for entries
// that could not be decoded at all (null, arrays, booleans).
type RawEdge struct {
	ID    string
	Type  string
	Note  string
	Valid bool
}

// EdgeID returns a RawEdge for a bare ticket ID.
func EdgeID(id string) RawEdge {
	return RawEdge{ID: id, Valid: true}
}

// EdgeObject returns a RawEdge for a partially specified edge.
func EdgeObject(id, relType, note string) RawEdge {
	return RawEdge{ID: id, Type: relType, Note: note, Valid: true}
}

// rawEdgeObject is the object form of a RawEdge. ID is kept as raw JSON since
// stale data may carry numeric IDs.
type rawEdgeObject struct {
	ID   json.RawMessage `json:"id"`
	Type string          `json:"type"`
	Note string          `json:"note"`
}

// UnmarshalJSON decodes a RawEdge leniently. It never fails on well-formed
// JSON; shapes that carry no usable ID leave the edge invalid.
func (e *RawEdge) UnmarshalJSON(data []byte) error {
	*e = RawEdge{}

	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*e = EdgeID(s)
	case '{':
		var obj rawEdgeObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil
		}
		*e = EdgeObject(scalarString(obj.ID), obj.Type, obj.Note)
	default:
		if s := scalarString(data); s != "" {
			*e = EdgeID(s)
		}
	}
	return nil
}

// MarshalJSON encodes a RawEdge in its object form.
func (e RawEdge) MarshalJSON() ([]byte, error) {
	if !e.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		ID   string `json:"id"`
		Type string `json:"type,omitempty"`
		Note string `json:"note,omitempty"`
	}{e.ID, e.Type, e.Note})
}

// scalarString renders a JSON string or number as a plain string. Anything
// else yields "".
func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}
