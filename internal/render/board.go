package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/ALT-F4-LLC/rmaboard/internal/group"
	"github.com/ALT-F4-LLC/rmaboard/internal/model"
)

const (
	maxCardsPerColumn = 10
	minColumnWidth    = 22
	defaultTermWidth  = 100
	cardPadding       = 2 // left+right padding inside cards
)

// BoardColumn is one column as the board view draws it.
type BoardColumn struct {
	Column  *model.Column
	Tickets []*model.Ticket
	// Total counts every ticket placed in the column, including filtered ones.
	Total int
}

// BoardOptions configures board rendering behavior.
type BoardOptions struct {
	Expand bool // show every card instead of capping each column
	Names  NameFunc
}

// RenderBoard renders columns left to right as a Kanban board.
func RenderBoard(cols []BoardColumn, opts BoardOptions) string {
	if len(cols) == 0 {
		return EmptyState("The board has no columns.", "Add one with: rmaboard column add", false)
	}

	if !ColorsEnabled() {
		return renderPlainBoard(cols, opts)
	}

	return renderColorBoard(cols, opts)
}

// terminalWidth returns the current terminal width, falling back to a default.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultTermWidth
	}
	return w
}

// columnHeader renders "Name (count)" or "Name (count/limit)" with a marker
// for the default column.
func columnHeader(bc BoardColumn) string {
	c := bc.Column
	count := fmt.Sprintf("%d", bc.Total)
	if len(bc.Tickets) != bc.Total {
		count = fmt.Sprintf("%d of %d", len(bc.Tickets), bc.Total)
	}
	if c.WipLimit != nil {
		count = fmt.Sprintf("%s/%d", count, *c.WipLimit)
	}
	h := fmt.Sprintf("%s (%s)", c.Name, count)
	if c.DefaultForNewTickets {
		h = "\u2605 " + h
	}
	return h
}

func visibleCards(tickets []*model.Ticket, expand bool) ([]*model.Ticket, int) {
	if expand || len(tickets) <= maxCardsPerColumn {
		return tickets, 0
	}
	return tickets[:maxCardsPerColumn], len(tickets) - maxCardsPerColumn
}

func renderColorBoard(cols []BoardColumn, opts BoardOptions) string {
	tw := terminalWidth()
	// Account for gaps between columns (1 space each).
	gaps := len(cols) - 1
	colWidth := max((tw-gaps)/len(cols), minColumnWidth)

	// Inner width available for card content (minus border/padding).
	cardContentWidth := max(colWidth-cardPadding-2, 5) // 2 for left+right border chars

	columns := make([]string, 0, len(cols))
	for _, bc := range cols {
		columns = append(columns, renderColorColumn(bc, colWidth, cardContentWidth, opts))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

func renderColorColumn(bc BoardColumn, colWidth, contentWidth int, opts BoardOptions) string {
	headerColor := lipgloss.Color("15")
	if bc.Column.AtCapacity() {
		headerColor = lipgloss.Color("9")
	} else if bc.Column.IsIncoming {
		headerColor = lipgloss.Color("11")
	}
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(headerColor).
		Width(colWidth).
		Align(lipgloss.Center).
		Render(columnHeader(bc))

	visible, overflow := visibleCards(bc.Tickets, opts.Expand)

	cards := make([]string, 0, len(visible)+2)
	cards = append(cards, header)
	for _, t := range visible {
		cards = append(cards, renderColorCard(t, colWidth, contentWidth, opts))
	}

	if overflow > 0 {
		moreStyle := lipgloss.NewStyle().
			Width(colWidth).
			Align(lipgloss.Center).
			Foreground(lipgloss.Color("8"))
		cards = append(cards, moreStyle.Render(fmt.Sprintf("+%d more", overflow)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func renderColorCard(t *model.Ticket, colWidth, contentWidth int, opts BoardOptions) string {
	pri := lipgloss.NewStyle().Foreground(ColorFromName(t.Priority.Color())).Render(priorityLabel(t.Priority))
	line1 := fmt.Sprintf("%s %s", t.RMANumber, pri)

	lines := []string{line1, truncate(t.Item, contentWidth)}
	if name := nameOf(opts.Names, t.CustomerID); name != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(truncate(name, contentWidth)))
	}
	if t.AssignedTo != "" {
		lines = append(lines, truncate("@"+t.AssignedTo, contentWidth))
	}

	border := lipgloss.Color("8")
	if c := group.Primary(t); c != "" {
		border = ColorFromName(c)
	}

	return lipgloss.NewStyle().
		Width(colWidth - 2). // account for outer spacing
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Render(strings.Join(lines, "\n"))
}

// --- Plain text fallback ---

func renderPlainBoard(cols []BoardColumn, opts BoardOptions) string {
	var b strings.Builder

	for i, bc := range cols {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "=== %s ===\n", columnHeader(bc))

		visible, overflow := visibleCards(bc.Tickets, opts.Expand)
		for _, t := range visible {
			renderPlainCard(&b, t, opts)
		}
		if overflow > 0 {
			fmt.Fprintf(&b, "  +%d more\n", overflow)
		}
	}

	return b.String()
}

func renderPlainCard(b *strings.Builder, t *model.Ticket, opts BoardOptions) {
	fmt.Fprintf(b, "  %s [%s]", t.RMANumber, priorityLabel(t.Priority))
	if c := group.Primary(t); c != "" {
		fmt.Fprintf(b, " %s", c)
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "  %s\n", truncate(t.Item, maxItemWidth))
	if name := nameOf(opts.Names, t.CustomerID); name != "" {
		fmt.Fprintf(b, "  %s\n", name)
	}
	b.WriteString("\n")
}
