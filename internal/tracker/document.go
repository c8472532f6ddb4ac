package tracker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ALT-F4-LLC/rmaboard/internal/kanban"
	"github.com/ALT-F4-LLC/rmaboard/internal/model"
)

// Document exports the full state for persistence.
func (t *Tracker) Document() *model.Document {
	return &model.Document{
		Version:   model.DocumentVersion,
		Tickets:   cloneTickets(t.tickets),
		Customers: cloneCustomers(t.customers),
		Board:     t.board.Layout(),
	}
}

// Load replaces the tracker state with doc. Records are repaired rather than
// rejected: tickets without an ID and repeated IDs are dropped, relationship
// edges are re-normalized, and the board is rebuilt from status history when
// doc carries no layout.
func (t *Tracker) Load(doc *model.Document) error {
	if doc == nil {
		doc = &model.Document{}
	}
	if doc.Version > model.DocumentVersion {
		return fmt.Errorf("document version %d is newer than supported version %d", doc.Version, model.DocumentVersion)
	}

	tickets := make([]*model.Ticket, 0, len(doc.Tickets))
	seen := make(map[string]bool, len(doc.Tickets))
	for _, tk := range doc.Tickets {
		if tk == nil || tk.ID == "" || seen[tk.ID] {
			continue
		}
		seen[tk.ID] = true
		tk = tk.Clone()
		tk.RelatedTickets = repairEdges(tk.ID, tk.RelatedTickets)
		tickets = append(tickets, tk)
	}

	customers := make([]*model.Customer, 0, len(doc.Customers))
	for _, c := range doc.Customers {
		if c == nil || c.ID == "" || slices.ContainsFunc(customers, func(x *model.Customer) bool { return x.ID == c.ID }) {
			continue
		}
		cp := *c
		if cp.Slug == "" {
			cp.Slug = model.Slugify(cp.CompanyName)
		}
		customers = append(customers, &cp)
	}

	board := kanban.Restore(doc.Board, tickets)
	if err := board.Validate(); err != nil {
		return fmt.Errorf("restoring board: %w", err)
	}

	t.tickets = tickets
	t.customers = customers
	t.board = board
	t.commit("state loaded", "tickets", len(tickets), "customers", len(customers))
	return nil
}

// repairEdges re-runs edge normalization over already typed edges, so
// unknown types collapse to related and duplicates are merged.
func repairEdges(owner string, edges []model.RelationshipEdge) []model.RelationshipEdge {
	raw := make([]model.RawEdge, 0, len(edges))
	for _, e := range edges {
		raw = append(raw, model.EdgeObject(e.TargetID, string(e.Type), e.Note))
	}
	return cleanEdges(owner, raw)
}

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// wireTicket decodes a ticket whose relationship edges may be stale: bare
// IDs, numeric IDs or partial objects.
type wireTicket struct {
	model.Ticket
	RelatedTickets []model.RawEdge `json:"related_tickets"`
}

type wireDocument struct {
	Version   int               `json:"version"`
	Tickets   []*wireTicket     `json:"tickets"`
	Customers []*model.Customer `json:"customers"`
	Board     *model.Board      `json:"board,omitempty"`
}

// DecodeDocument parses a JSON or YAML document. Relationship edges are
// accepted in any of their loose historical shapes.
func DecodeDocument(data []byte, format string) (*model.Document, error) {
	if format == FormatYAML {
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
		js, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("converting yaml: %w", err)
		}
		data = js
	}

	var wire wireDocument
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	doc := &model.Document{
		Version:   wire.Version,
		Customers: wire.Customers,
		Board:     wire.Board,
	}
	for _, wt := range wire.Tickets {
		if wt == nil {
			continue
		}
		tk := wt.Ticket
		tk.RelatedTickets = cleanEdges(tk.ID, wt.RelatedTickets)
		doc.Tickets = append(doc.Tickets, &tk)
	}
	return doc, nil
}

// EncodeDocument renders doc as indented JSON or as YAML. YAML output is
// produced from the JSON form so both share field names.
func EncodeDocument(doc *model.Document, format string) ([]byte, error) {
	js, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	switch format {
	case "", FormatJSON:
		return append(js, '\n'), nil
	case FormatYAML:
		var v any
		if err := json.Unmarshal(js, &v); err != nil {
			return nil, fmt.Errorf("encoding document: %w", err)
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q: must be one of %s", format, strings.Join([]string{FormatJSON, FormatYAML}, ", "))
	}
}
