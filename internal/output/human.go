package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ALT-F4-LLC/rmaboard/internal/render"
)

// writeHumanSuccess writes a human-readable success message to w.
// Single-line messages get a checkmark prefix; multi-line content (tables,
// boards, detail views) is printed as-is to avoid corrupting formatted output.
func writeHumanSuccess(w io.Writer, message string) {
	if message == "" {
		return
	}
	if strings.Contains(message, "\n") {
		fmt.Fprintln(w, message)
		return
	}
	if render.ColorsEnabled() {
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("\u2714")
		fmt.Fprintf(w, "%s %s\n", icon, message)
	} else {
		fmt.Fprintln(w, message)
	}
}

// writeHumanError writes a human-readable error message to w. Conflicts
// are rejected operations rather than failures and get their own notice.
func writeHumanError(w io.Writer, err error, code ErrorCode) {
	if code == ErrConflict {
		writeHumanConflict(w, err)
		return
	}
	if render.ColorsEnabled() {
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true).Render("\u2718")
		label := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true).Render("Error:")
		fmt.Fprintf(w, "%s %s %s\n", icon, label, err)
	} else {
		fmt.Fprintf(w, "Error: %s\n", err)
	}
}

const conflictHint = "Nothing was changed."

func writeHumanConflict(w io.Writer, err error) {
	if !render.ColorsEnabled() {
		fmt.Fprintf(w, "Blocked: %s\n%s\n", err, conflictHint)
		return
	}
	notice := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("3")).
		Padding(0, 1)
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true).Render("\u26d4 Blocked:")
	hint := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(conflictHint)
	fmt.Fprintln(w, notice.Render(fmt.Sprintf("%s %s\n%s", label, err, hint)))
}
