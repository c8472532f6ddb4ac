package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
)

var ticketMoveCmd = &cobra.Command{
	Use:   "move <id|rma> <column>",
	Short: "Move a ticket to a board column",
	Long: `Move a ticket to a board column, given by ID or name.

The ticket's status becomes the column name. Moving into a column at its
WIP limit fails and leaves the board unchanged. Use --index to place the
ticket at a position; by default it goes to the bottom.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)
		index, _ := cmd.Flags().GetInt("index")

		tk, err := resolveTicket(t, args[0])
		if err != nil {
			return err
		}
		col, err := resolveColumn(t, args[1])
		if err != nil {
			return err
		}
		if index < 0 {
			index = math.MaxInt
		}

		if err := t.MoveTicket(tk.ID, col.ID, index); err != nil {
			return failed(err)
		}

		moved, err := t.GetTicket(tk.ID)
		if err != nil {
			return failed(err)
		}
		w.Success(moved, fmt.Sprintf("Moved %s to %s", moved.RMANumber, col.Name))
		return nil
	},
}

func init() {
	ticketMoveCmd.Flags().IntP("index", "i", -1, "Position within the column, 0 for the top")
	ticketCmd.AddCommand(ticketMoveCmd)
}
