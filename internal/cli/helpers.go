package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
	"github.com/ALT-F4-LLC/rmaboard/internal/render"
	"github.com/ALT-F4-LLC/rmaboard/internal/tracker"
)

const maxStdinSize = 1 << 20 // 1 MiB

// interactive reports whether a command may prompt: human output and a
// terminal on stdin.
func interactive(cmd *cobra.Command) bool {
	jsonMode, _ := cmd.Flags().GetBool("json")
	return !jsonMode && term.IsTerminal(int(os.Stdin.Fd()))
}

// readValue returns s, or stdin's content when s is "-".
func readValue(s string) (string, error) {
	if s != "-" {
		return s, nil
	}
	data, err := io.ReadAll(io.LimitReader(os.Stdin, maxStdinSize))
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func resolveTicket(t *tracker.Tracker, ref string) (*model.Ticket, error) {
	tk, err := t.ResolveTicket(ref)
	if err != nil {
		return nil, failed(err)
	}
	return tk, nil
}

// resolveTickets resolves every reference to a ticket ID.
func resolveTickets(t *tracker.Tracker, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		tk, err := resolveTicket(t, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, tk.ID)
	}
	return ids, nil
}

func resolveColumn(t *tracker.Tracker, ref string) (*model.Column, error) {
	c, err := t.ResolveColumn(ref)
	if err != nil {
		return nil, failed(err)
	}
	return c, nil
}

// ticketLabel shows tickets by RMA number, falling back to the raw ID for
// references that no longer resolve.
func ticketLabel(t *tracker.Tracker) render.LabelFunc {
	return func(id string) string {
		if tk, err := t.GetTicket(id); err == nil {
			return tk.RMANumber
		}
		return id
	}
}

func detailOptions(t *tracker.Tracker, tk *model.Ticket) render.DetailOptions {
	opts := render.DetailOptions{
		CustomerName: t.CustomerName(tk.CustomerID),
		Label:        ticketLabel(t),
		ColumnLabel: func(id string) string {
			if c, err := t.ResolveColumn(id); err == nil {
				return c.Name
			}
			return id
		},
	}
	if c, err := t.ColumnOf(tk.ID); err == nil {
		opts.ColumnName = c.Name
	}
	if rels, err := t.ResolvedRelationships(tk.ID); err == nil {
		opts.Relations = rels
	}
	return opts
}

// confirm asks a yes/no question. Callers only prompt when interactive.
func confirm(title, affirmative string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative(affirmative).
				Negative("Cancel").
				Value(&ok),
		),
	).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
