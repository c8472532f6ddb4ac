package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
	"github.com/ALT-F4-LLC/rmaboard/internal/output"
	"github.com/ALT-F4-LLC/rmaboard/internal/tracker"
)

var ticketEditCmd = &cobra.Command{
	Use:   "edit <id|rma>",
	Short: "Edit ticket fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		tk, err := resolveTicket(t, args[0])
		if err != nil {
			return err
		}

		var patch tracker.TicketPatch
		changed := false
		str := func(flag string, dst **string) error {
			if !cmd.Flags().Changed(flag) {
				return nil
			}
			v, _ := cmd.Flags().GetString(flag)
			v, err := readValue(v)
			if err != nil {
				return err
			}
			*dst = &v
			changed = true
			return nil
		}

		for flag, dst := range map[string]**string{
			"item":     &patch.Item,
			"reason":   &patch.Reason,
			"notes":    &patch.Notes,
			"assignee": &patch.AssignedTo,
			"status":   &patch.Status,
		} {
			if err := str(flag, dst); err != nil {
				return cmdErr(err, output.ErrGeneral)
			}
		}

		if cmd.Flags().Changed("customer") {
			ref, _ := cmd.Flags().GetString("customer")
			c, err := t.GetCustomer(ref)
			if err != nil {
				return failed(err)
			}
			patch.CustomerID = &c.ID
			changed = true
		}
		if cmd.Flags().Changed("priority") {
			v, _ := cmd.Flags().GetString("priority")
			p := model.Priority(v)
			patch.Priority = &p
			changed = true
		}
		if cmd.Flags().Changed("field") {
			v, _ := cmd.Flags().GetStringToString("field")
			fields := make(map[string]string, len(tk.CustomFields)+len(v))
			for k, val := range tk.CustomFields {
				fields[k] = val
			}
			for k, val := range v {
				if val == "" {
					delete(fields, k)
				} else {
					fields[k] = val
				}
			}
			patch.CustomFields = &fields
			changed = true
		}
		if cmd.Flags().Changed("link") {
			v, _ := cmd.Flags().GetStringSlice("link")
			links := append([]model.ExternalLink(nil), tk.ExternalLinks...)
			for _, l := range v {
				links = append(links, parseLink(l))
			}
			patch.ExternalLinks = &links
			changed = true
		}

		if !changed {
			return cmdErr(fmt.Errorf("nothing to change: pass at least one field flag"), output.ErrValidation)
		}

		updated, err := t.UpdateTicket(tk.ID, patch)
		if err != nil {
			return failed(err)
		}
		w.Success(updated, fmt.Sprintf("Updated %s", updated.RMANumber))
		return nil
	},
}

var ticketPatchCmd = &cobra.Command{
	Use:   "patch <id|rma> <file|->",
	Short: "Apply a JSON merge patch to a ticket",
	Long: `Apply an RFC 7386 JSON merge patch to a ticket.

Keys set to null are cleared. Identity and history fields such as id,
rma_number, created_at and activity cannot be patched.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		tk, err := resolveTicket(t, args[0])
		if err != nil {
			return err
		}

		var data []byte
		if args[1] == "-" {
			data, err = io.ReadAll(io.LimitReader(os.Stdin, maxStdinSize))
		} else {
			data, err = os.ReadFile(args[1])
		}
		if err != nil {
			return cmdErr(fmt.Errorf("reading patch: %w", err), output.ErrGeneral)
		}

		updated, err := t.MergePatchTicket(tk.ID, data)
		if err != nil {
			return failed(err)
		}
		w.Success(updated, fmt.Sprintf("Patched %s", updated.RMANumber))
		return nil
	},
}

func init() {
	ticketEditCmd.Flags().StringP("customer", "c", "", "Customer ID or slug")
	ticketEditCmd.Flags().StringP("item", "i", "", "Item being returned")
	ticketEditCmd.Flags().StringP("reason", "r", "", "Reason for return")
	ticketEditCmd.Flags().StringP("notes", "n", "", "Notes (use \"-\" for stdin)")
	ticketEditCmd.Flags().StringP("priority", "p", "", "Priority: High, Medium, Low or empty to clear")
	ticketEditCmd.Flags().StringP("assignee", "a", "", "Technician the ticket is assigned to")
	ticketEditCmd.Flags().String("status", "", "Status")
	ticketEditCmd.Flags().StringToStringP("field", "f", nil, "Set custom field key=value; an empty value removes it")
	ticketEditCmd.Flags().StringSliceP("link", "l", nil, "Add an external link as label=url or url")
	ticketCmd.AddCommand(ticketEditCmd)
	ticketCmd.AddCommand(ticketPatchCmd)
}
