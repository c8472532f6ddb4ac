package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
	"github.com/ALT-F4-LLC/rmaboard/internal/output"
	"github.com/ALT-F4-LLC/rmaboard/internal/render"
)

var idStyle = lipgloss.NewStyle().Faint(true)

var columnCmd = &cobra.Command{
	Use:     "column",
	Short:   "Manage board columns",
	Aliases: []string{"col"},
}

var columnListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List board columns in order",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cols := getTracker(cmd).ListColumns()

		var b strings.Builder
		for i, c := range cols {
			limit := "-"
			if c.WipLimit != nil {
				limit = strconv.Itoa(*c.WipLimit)
			}
			marker := ""
			switch {
			case c.DefaultForNewTickets:
				marker = " (default)"
			case c.IsIncoming:
				marker = " (incoming)"
			}
			fmt.Fprintf(&b, "%d. %s%s  %s  tickets %d  limit %s\n", i+1, c.Name, marker,
				render.StyledText(c.ID, idStyle), len(c.TicketIDs), limit)
		}
		w.Success(cols, strings.TrimRight(b.String(), "\n"))
		return nil
	},
}

var columnAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a column to the right end of the board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		id, err := t.AddColumn(args[0])
		if err != nil {
			return failed(err)
		}
		c, err := t.ResolveColumn(id)
		if err != nil {
			return failed(err)
		}

		if cmd.Flags().Changed("limit") {
			limit, _ := cmd.Flags().GetInt("limit")
			if err := t.SetWipLimit(id, &limit); err != nil {
				return failed(err)
			}
			c, _ = t.ResolveColumn(id)
		}
		w.Success(c, fmt.Sprintf("Added column %s", c.Name))
		return nil
	},
}

var columnRenameCmd = &cobra.Command{
	Use:   "rename <column> <name>",
	Short: "Rename a column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		c, err := resolveColumn(t, args[0])
		if err != nil {
			return err
		}
		if err := t.RenameColumn(c.ID, args[1]); err != nil {
			return failed(err)
		}
		renamed, _ := t.ResolveColumn(c.ID)
		w.Success(renamed, fmt.Sprintf("Renamed %s to %s", c.Name, renamed.Name))
		return nil
	},
}

var columnRemoveCmd = &cobra.Command{
	Use:     "remove <column>",
	Short:   "Remove a column, moving its tickets to the holding column",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		c, err := resolveColumn(t, args[0])
		if err != nil {
			return err
		}
		if err := t.RemoveColumn(c.ID); err != nil {
			return failed(err)
		}
		w.Success(c, fmt.Sprintf("Removed column %s", c.Name))
		if n := len(c.TicketIDs); n > 0 {
			w.Info("Moved %d ticket(s) to the holding column", n)
		}
		return nil
	},
}

var columnMoveCmd = &cobra.Command{
	Use:   "move <column> <left|right>",
	Short: "Shift a column one position left or right",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		var dir int
		switch strings.ToLower(args[1]) {
		case "left", "l":
			dir = -1
		case "right", "r":
			dir = 1
		default:
			return cmdErr(fmt.Errorf("invalid direction %q: must be left or right", args[1]), output.ErrValidation)
		}

		c, err := resolveColumn(t, args[0])
		if err != nil {
			return err
		}
		if err := t.MoveColumn(c.ID, dir); err != nil {
			return failed(err)
		}
		w.Success(t.ListColumns(), fmt.Sprintf("Moved %s %s", c.Name, strings.ToLower(args[1])))
		return nil
	},
}

var columnLimitCmd = &cobra.Command{
	Use:   "limit <column> <n|none>",
	Short: "Set or clear a column's WIP limit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		c, err := resolveColumn(t, args[0])
		if err != nil {
			return err
		}

		var limit *int
		if v := strings.ToLower(args[1]); v != "none" && v != "off" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return cmdErr(fmt.Errorf("invalid WIP limit %q: must be a positive number or none", args[1]), output.ErrValidation)
			}
			limit = &n
		}

		if err := t.SetWipLimit(c.ID, limit); err != nil {
			return failed(err)
		}
		updated, _ := t.ResolveColumn(c.ID)
		msg := fmt.Sprintf("Removed the WIP limit on %s", c.Name)
		if limit != nil {
			msg = fmt.Sprintf("Set the WIP limit on %s to %d", c.Name, *limit)
			if len(updated.TicketIDs) > *limit {
				w.Warn("%s already holds %d tickets", c.Name, len(updated.TicketIDs))
			}
		}
		w.Success(updated, msg)
		return nil
	},
}

var columnDefaultCmd = &cobra.Command{
	Use:   "default [column]",
	Short: "Choose the column new tickets land in",
	Long: `Choose the column new tickets land in.

Without an argument the default is cleared and new tickets go to an
Incoming column at the left of the board.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		var c *model.Column
		id := ""
		if len(args) == 1 {
			var err error
			c, err = resolveColumn(t, args[0])
			if err != nil {
				return err
			}
			id = c.ID
		}
		if err := t.SetDefaultColumn(id); err != nil {
			return failed(err)
		}
		if c == nil {
			w.Success(nil, "Cleared the default column")
			return nil
		}
		w.Success(c, fmt.Sprintf("New tickets now go to %s", c.Name))
		return nil
	},
}

func init() {
	columnAddCmd.Flags().Int("limit", 0, "WIP limit for the new column")
	columnCmd.AddCommand(columnListCmd, columnAddCmd, columnRenameCmd, columnRemoveCmd,
		columnMoveCmd, columnLimitCmd, columnDefaultCmd)
	rootCmd.AddCommand(columnCmd)
}
