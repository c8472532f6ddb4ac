package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/rmaboard/internal/output"
)

type deleteResult struct {
	ID        string `json:"id"`
	RMANumber string `json:"rma_number"`
}

var ticketDeleteCmd = &cobra.Command{
	Use:   "delete <id|rma>",
	Short: "Delete a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)
		force, _ := cmd.Flags().GetBool("force")

		tk, err := resolveTicket(t, args[0])
		if err != nil {
			return err
		}

		if !force {
			if !interactive(cmd) {
				return cmdErr(fmt.Errorf("refusing to delete %s without --force", tk.RMANumber), output.ErrValidation)
			}
			ok, err := confirm(fmt.Sprintf("Delete %s (%s)?", tk.RMANumber, tk.Item), "Delete")
			if err != nil {
				return cmdErr(fmt.Errorf("interactive form failed: %w", err), output.ErrGeneral)
			}
			if !ok {
				w.Info("Cancelled.")
				return nil
			}
		}

		if err := t.DeleteTicket(tk.ID); err != nil {
			return failed(err)
		}
		w.Success(deleteResult{ID: tk.ID, RMANumber: tk.RMANumber}, fmt.Sprintf("Deleted %s: %s", tk.RMANumber, tk.Item))
		return nil
	},
}

func init() {
	ticketDeleteCmd.Flags().BoolP("force", "f", false, "Delete without confirmation")
	ticketCmd.AddCommand(ticketDeleteCmd)
}
