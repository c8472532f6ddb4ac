package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
)

const maxItemWidth = 32

// NameFunc resolves a customer ID to a display name.
type NameFunc func(customerID string) string

// StyledText applies a lipgloss style to text when colors are enabled.
// When colors are disabled, it returns the plain text unchanged.
func StyledText(text string, style lipgloss.Style) string {
	if ColorsEnabled() {
		return style.Render(text)
	}
	return text
}

// ColorFromName maps model color name strings to lipgloss colors. Hex
// strings such as group colors pass through unchanged.
func ColorFromName(name string) lipgloss.Color {
	switch name {
	case "red":
		return lipgloss.Color("9")
	case "yellow":
		return lipgloss.Color("11")
	case "blue":
		return lipgloss.Color("12")
	case "green":
		return lipgloss.Color("10")
	case "magenta":
		return lipgloss.Color("13")
	case "gray":
		return lipgloss.Color("8")
	case "white", "":
		return lipgloss.Color("15")
	}
	if strings.HasPrefix(name, "#") {
		return lipgloss.Color(name)
	}
	return lipgloss.Color("15")
}

// truncate shortens a string to maxLen runes, appending an ellipsis if truncated.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

func priorityLabel(p model.Priority) string {
	if p == model.PriorityNone {
		return "-"
	}
	return string(p)
}

func nameOf(names NameFunc, id string) string {
	if names == nil {
		return id
	}
	return names(id)
}

// EmptyState renders a styled empty-state message with an optional contextual hint.
// When colors are enabled the message is rendered in dim gray and the hint is italic.
// When quiet is true the hint is suppressed.
func EmptyState(message, hint string, quiet bool) string {
	if !ColorsEnabled() {
		if quiet || hint == "" {
			return message
		}
		return message + "\n" + hint
	}

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)

	result := dimStyle.Render(message)
	if !quiet && hint != "" {
		result += "\n" + hintStyle.Render(hint)
	}
	return result
}

// RenderTable renders tickets as a formatted table.
func RenderTable(tickets []*model.Ticket, names NameFunc) string {
	if len(tickets) == 0 {
		return EmptyState("No tickets found.", "Create one with: rmaboard ticket create", false)
	}

	if !ColorsEnabled() {
		return renderPlainTable(tickets, names)
	}

	headers := []string{"RMA", "Customer", "Item", "Priority", "Status", "Assignee", "Updated"}

	rows := make([][]string, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, ticketToRow(t, names))
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)

			if row == table.HeaderRow {
				return s.Bold(true).Foreground(lipgloss.Color("15"))
			}
			if row < 0 || row >= len(tickets) {
				return s
			}

			switch col {
			case 0:
				return s.Foreground(lipgloss.Color("15"))
			case 2:
				return s.Bold(true)
			case 3:
				return s.Foreground(ColorFromName(tickets[row].Priority.Color()))
			case 4:
				if tickets[row].IsCompleted() {
					return s.Foreground(lipgloss.Color("10"))
				}
				return s
			default:
				return s
			}
		})

	return tbl.Render()
}

func ticketToRow(t *model.Ticket, names NameFunc) []string {
	return []string{
		t.RMANumber,
		nameOf(names, t.CustomerID),
		truncate(t.Item, maxItemWidth),
		priorityLabel(t.Priority),
		t.Status,
		t.AssignedTo,
		humanize.Time(t.UpdatedAt),
	}
}

func renderPlainTable(tickets []*model.Ticket, names NameFunc) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-14s %-20s %-32s %-8s %-14s %-12s %s\n",
		"RMA", "Customer", "Item", "Priority", "Status", "Assignee", "Updated")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 116))

	for _, t := range tickets {
		fmt.Fprintf(&b, "%-14s %-20s %-32s %-8s %-14s %-12s %s\n",
			t.RMANumber,
			truncate(nameOf(names, t.CustomerID), 20),
			truncate(t.Item, maxItemWidth),
			priorityLabel(t.Priority),
			t.Status,
			t.AssignedTo,
			humanize.Time(t.UpdatedAt),
		)
	}

	return b.String()
}

// RenderCustomers renders customers with their open and closed ticket counts.
func RenderCustomers(customers []*model.Customer, counts map[string][2]int) string {
	if len(customers) == 0 {
		return EmptyState("No customers found.", "Add one with: rmaboard customer add", false)
	}

	headers := []string{"Slug", "Company", "Contact", "Email", "City", "Open", "Closed"}
	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		n := counts[c.ID]
		rows = append(rows, []string{
			c.Slug, c.DisplayName(), c.ContactName, c.ContactEmail, c.City,
			fmt.Sprintf("%d", n[0]), fmt.Sprintf("%d", n[1]),
		})
	}

	if !ColorsEnabled() {
		var b strings.Builder
		fmt.Fprintf(&b, "%-20s %-24s %-18s %-26s %-14s %-5s %s\n",
			"Slug", "Company", "Contact", "Email", "City", "Open", "Closed")
		fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 120))
		for _, r := range rows {
			fmt.Fprintf(&b, "%-20s %-24s %-18s %-26s %-14s %-5s %s\n",
				r[0], truncate(r[1], 24), truncate(r[2], 18), truncate(r[3], 26), truncate(r[4], 14), r[5], r[6])
		}
		return b.String()
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(lipgloss.Color("15"))
			}
			if col == 1 {
				return s.Bold(true)
			}
			return s
		}).
		Render()
}
