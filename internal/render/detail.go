package render

import (
	"fmt"
	"sort"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/ALT-F4-LLC/rmaboard/internal/group"
	"github.com/ALT-F4-LLC/rmaboard/internal/model"
	"github.com/ALT-F4-LLC/rmaboard/internal/relation"
)

// LabelFunc resolves a ticket ID to the label shown for it, usually its RMA
// number.
type LabelFunc func(ticketID string) string

// DetailOptions carries the lookups a detail view needs beyond the ticket.
type DetailOptions struct {
	CustomerName string
	ColumnName   string
	Relations    []relation.ResolvedRelation
	Label        LabelFunc
	// ColumnLabel names a column ID in the status history. Columns that no
	// longer exist may be shown by ID.
	ColumnLabel func(columnID string) string
}

func (o DetailOptions) label(id string) string {
	if o.Label == nil {
		return id
	}
	return o.Label(id)
}

func (o DetailOptions) columnLabel(id string) string {
	if o.ColumnLabel == nil {
		return id
	}
	return o.ColumnLabel(id)
}

const historyTimeFormat = "2006-01-02 15:04"

// historyLines lists the columns a ticket passed through, oldest first.
func historyLines(t *model.Ticket, opts DetailOptions) []string {
	lines := make([]string, 0, len(t.StatusHistory))
	for _, e := range t.StatusHistory {
		lines = append(lines, fmt.Sprintf("  %s  %s", e.EnteredAt.Local().Format(historyTimeFormat), opts.columnLabel(e.ColumnID)))
	}
	return lines
}

// RenderDetail renders a full ticket view including metadata, notes, links,
// relationships, groups, the column history and the activity log.
func RenderDetail(t *model.Ticket, opts DetailOptions) string {
	if !ColorsEnabled() {
		return renderPlainDetail(t, opts)
	}

	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	var sections []string

	header := fmt.Sprintf("%s  %s\n%s  %s",
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Render(t.RMANumber),
		lipgloss.NewStyle().Bold(true).Render(t.Item),
		lipgloss.NewStyle().Bold(true).Render(t.Status),
		lipgloss.NewStyle().Bold(true).Foreground(ColorFromName(t.Priority.Color())).Render(priorityLabel(t.Priority)),
	)
	sections = append(sections, header)

	var meta []string
	for _, kv := range metadata(t, opts) {
		meta = append(meta, fmt.Sprintf("%s %s", labelStyle.Render(kv[0]+":"), kv[1]))
	}
	sections = append(sections, strings.Join(meta, "\n"))

	if t.Notes != "" {
		rendered, err := RenderMarkdown(t.Notes)
		if err != nil {
			rendered = t.Notes
		}
		sections = append(sections, sectionStyle.Render("Notes")+"\n"+rendered)
	}

	if lines := linkLines(t); len(lines) > 0 {
		sections = append(sections, sectionStyle.Render("Links")+"\n"+strings.Join(lines, "\n"))
	}

	if len(opts.Relations) > 0 {
		var lines []string
		for _, r := range opts.Relations {
			typeStyle := lipgloss.NewStyle().Foreground(ColorFromName(r.Type.Color()))
			lines = append(lines, fmt.Sprintf("  %s %s %s%s",
				RelationArrow(r.Direction),
				typeStyle.Render(string(r.Type)),
				opts.label(r.TicketID),
				noteSuffix(r.Note),
			))
		}
		sections = append(sections, sectionStyle.Render("Relationships")+"\n"+strings.Join(lines, "\n"))
	}

	if colors := group.Colors(t); len(colors) > 0 {
		var swatches []string
		for _, c := range colors {
			swatches = append(swatches, lipgloss.NewStyle().Foreground(ColorFromName(c)).Render("● "+c))
		}
		sections = append(sections, sectionStyle.Render("Groups")+"\n  "+strings.Join(swatches, "  "))
	}

	if lines := historyLines(t, opts); len(lines) > 0 {
		sections = append(sections, sectionStyle.Render("History")+"\n"+strings.Join(lines, "\n"))
	}

	if len(t.Activity) > 0 {
		sections = append(sections, RenderActivity(t.Activity))
	}

	return strings.Join(sections, "\n\n")
}

// metadata returns label/value pairs in display order, skipping empty values.
func metadata(t *model.Ticket, opts DetailOptions) [][2]string {
	out := [][2]string{{"Customer", opts.CustomerName}}
	if opts.ColumnName != "" {
		out = append(out, [2]string{"Column", opts.ColumnName})
	}
	out = append(out, [2]string{"Reason", t.Reason})
	if t.AssignedTo != "" {
		out = append(out, [2]string{"Assignee", t.AssignedTo})
	}
	keys := make([]string, 0, len(t.CustomFields))
	for k := range t.CustomFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, [2]string{k, t.CustomFields[k]})
	}
	out = append(out,
		[2]string{"Created", humanize.Time(t.CreatedAt)},
		[2]string{"Updated", humanize.Time(t.UpdatedAt)},
	)
	if t.CompletedAt != nil {
		out = append(out, [2]string{"Completed", humanize.Time(*t.CompletedAt)})
	}
	return out
}

func linkLines(t *model.Ticket) []string {
	var lines []string
	for _, l := range t.ExternalLinks {
		if l.Label != "" {
			lines = append(lines, fmt.Sprintf("  ▸ %s %s", l.Label, l.URL))
		} else {
			lines = append(lines, "  ▸ "+l.URL)
		}
	}
	for _, a := range t.Attachments {
		kind := "file"
		if a.IsImage() {
			kind = "image"
		}
		lines = append(lines, fmt.Sprintf("  ▸ %s (%s) %s", a.Filename, kind, a.URL))
	}
	return lines
}

func noteSuffix(note string) string {
	if note == "" {
		return ""
	}
	return " - " + note
}

// RelationArrow returns an arrow for the direction a relationship was read in.
func RelationArrow(d relation.Direction) string {
	if d == relation.Incoming {
		return "\u2190" // ←
	}
	return "\u2192" // →
}

// activityIcon returns a semantic icon for an activity entry.
func activityIcon(a model.Activity) string {
	switch a.Type {
	case model.ActivityCreated:
		return "\u2728" // ✨
	case model.ActivityMove:
		return "\u21c4" // ⇄
	case model.ActivityStatus:
		return "\u25cf" // ●
	case model.ActivityRelation:
		return "\u2194" // ↔
	case model.ActivityGroup:
		return "\u25a0" // ■
	default:
		return "\u270e" // ✎
	}
}

// RenderActivity renders a ticket's activity log, oldest first.
func RenderActivity(activity []model.Activity) string {
	if len(activity) == 0 {
		return EmptyState("No activity yet.", "", false)
	}

	if !ColorsEnabled() {
		var b strings.Builder
		b.WriteString("Activity\n")
		for _, a := range activity {
			fmt.Fprintf(&b, "  %s %s: %s  %s\n", activityIcon(a), a.AuthorOrAnonymous(), a.Text, humanize.Time(a.Timestamp))
		}
		return strings.TrimRight(b.String(), "\n")
	}

	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	authorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	lines := []string{sectionStyle.Render("Activity")}
	for _, a := range activity {
		lines = append(lines, fmt.Sprintf("  %s %s %s  %s",
			activityIcon(a),
			authorStyle.Render(a.AuthorOrAnonymous()),
			a.Text,
			timeStyle.Render(humanize.Time(a.Timestamp)),
		))
	}
	return strings.Join(lines, "\n")
}

// RenderCluster renders a ticket and its directly related tickets as a tree
// rooted at the first ID.
func RenderCluster(ids []string, label LabelFunc) string {
	if len(ids) == 0 {
		return ""
	}
	if label == nil {
		label = func(id string) string { return id }
	}
	t := tree.Root(label(ids[0]))
	for _, id := range ids[1:] {
		t.Child(label(id))
	}
	return t.String()
}

// renderPlainDetail renders a detail view without any color or styling.
func renderPlainDetail(t *model.Ticket, opts DetailOptions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", t.RMANumber, t.Item)
	fmt.Fprintf(&b, "%s  %s\n", t.Status, priorityLabel(t.Priority))

	b.WriteString("\n")
	for _, kv := range metadata(t, opts) {
		fmt.Fprintf(&b, "%s: %s\n", kv[0], kv[1])
	}

	if t.Notes != "" {
		fmt.Fprintf(&b, "\nNotes\n%s\n", t.Notes)
	}

	if lines := linkLines(t); len(lines) > 0 {
		b.WriteString("\nLinks\n")
		for _, l := range lines {
			b.WriteString(l + "\n")
		}
	}

	if len(opts.Relations) > 0 {
		b.WriteString("\nRelationships\n")
		for _, r := range opts.Relations {
			fmt.Fprintf(&b, "  %s %s %s%s\n", RelationArrow(r.Direction), r.Type, opts.label(r.TicketID), noteSuffix(r.Note))
		}
	}

	if colors := group.Colors(t); len(colors) > 0 {
		fmt.Fprintf(&b, "\nGroups\n  %s\n", strings.Join(colors, ", "))
	}

	if lines := historyLines(t, opts); len(lines) > 0 {
		b.WriteString("\nHistory\n")
		for _, l := range lines {
			b.WriteString(l + "\n")
		}
	}

	if len(t.Activity) > 0 {
		b.WriteString("\n" + RenderActivity(t.Activity) + "\n")
	}

	return b.String()
}
