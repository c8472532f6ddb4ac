package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
	"github.com/ALT-F4-LLC/rmaboard/internal/output"
	"github.com/ALT-F4-LLC/rmaboard/internal/tracker"
)

var ticketCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new repair ticket",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		customer, _ := cmd.Flags().GetString("customer")
		item, _ := cmd.Flags().GetString("item")
		reason, _ := cmd.Flags().GetString("reason")
		notes, _ := cmd.Flags().GetString("notes")
		priority, _ := cmd.Flags().GetString("priority")
		assignee, _ := cmd.Flags().GetString("assignee")
		status, _ := cmd.Flags().GetString("status")
		rma, _ := cmd.Flags().GetString("rma")
		links, _ := cmd.Flags().GetStringSlice("link")
		fields, _ := cmd.Flags().GetStringToString("field")
		related, _ := cmd.Flags().GetStringSlice("related")

		// Without an item, prompt for the essentials when a terminal is attached.
		if item == "" && interactive(cmd) {
			if err := ticketForm(t, &customer, &item, &reason, &notes, &priority, &assignee); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					w.Info("Cancelled.")
					return nil
				}
				return cmdErr(fmt.Errorf("interactive form failed: %w", err), output.ErrGeneral)
			}
		}

		notes, err := readValue(notes)
		if err != nil {
			return cmdErr(err, output.ErrGeneral)
		}

		in := tracker.TicketInput{
			RMANumber:    rma,
			Item:         item,
			Reason:       reason,
			Notes:        notes,
			Priority:     model.Priority(priority),
			AssignedTo:   assignee,
			Status:       status,
			CustomFields: fields,
		}

		if customer != "" {
			c, err := t.GetCustomer(customer)
			if err != nil {
				return failed(err)
			}
			in.CustomerID = c.ID
		}

		for _, l := range links {
			in.ExternalLinks = append(in.ExternalLinks, parseLink(l))
		}

		ids, err := resolveTickets(t, related)
		if err != nil {
			return err
		}
		for _, id := range ids {
			in.RelatedTickets = append(in.RelatedTickets, model.EdgeID(id))
		}

		created, err := t.CreateTicket(in)
		if err != nil {
			return failed(err)
		}

		col := ""
		if c, err := t.ColumnOf(created.ID); err == nil {
			col = c.Name
		}
		w.Success(created, fmt.Sprintf("Created %s: %s (%s)", created.RMANumber, created.Item, col))
		return nil
	},
}

// parseLink accepts "label=url" or a bare URL.
func parseLink(s string) model.ExternalLink {
	if label, url, ok := strings.Cut(s, "="); ok && !strings.Contains(label, "://") {
		return model.ExternalLink{Label: strings.TrimSpace(label), URL: strings.TrimSpace(url)}
	}
	return model.ExternalLink{URL: strings.TrimSpace(s)}
}

func ticketForm(t *tracker.Tracker, customer, item, reason, notes, priority, assignee *string) error {
	var fields []huh.Field

	if customers := t.ListCustomers(); len(customers) > 0 && *customer == "" {
		opts := make([]huh.Option[string], 0, len(customers))
		for _, c := range customers {
			opts = append(opts, huh.NewOption(c.DisplayName(), c.ID))
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Customer").
			Options(opts...).
			Value(customer))
	} else if *customer == "" {
		fields = append(fields, huh.NewInput().
			Title("Customer (ID or slug)").
			Value(customer).
			Validate(required("customer")))
	}

	fields = append(fields,
		huh.NewInput().
			Title("Item").
			Value(item).
			Validate(required("item")),
		huh.NewInput().
			Title("Reason for return").
			Value(reason).
			Validate(required("reason")),
		huh.NewText().
			Title("Notes").
			Value(notes),
		huh.NewSelect[string]().
			Title("Priority").
			Options(
				huh.NewOption("none", ""),
				huh.NewOption("Low", string(model.PriorityLow)),
				huh.NewOption("Medium", string(model.PriorityMedium)),
				huh.NewOption("High", string(model.PriorityHigh)),
			).
			Value(priority),
		huh.NewInput().
			Title("Assigned to").
			Value(assignee),
	)

	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func init() {
	ticketCreateCmd.Flags().StringP("customer", "c", "", "Customer ID or slug")
	ticketCreateCmd.Flags().StringP("item", "i", "", "Item being returned")
	ticketCreateCmd.Flags().StringP("reason", "r", "", "Reason for return")
	ticketCreateCmd.Flags().StringP("notes", "n", "", "Notes (use \"-\" for stdin)")
	ticketCreateCmd.Flags().StringP("priority", "p", "", "Priority: High, Medium or Low")
	ticketCreateCmd.Flags().StringP("assignee", "a", "", "Technician the ticket is assigned to")
	ticketCreateCmd.Flags().String("status", "", "Initial status (default New)")
	ticketCreateCmd.Flags().String("rma", "", "Explicit RMA number instead of the next generated one")
	ticketCreateCmd.Flags().StringSliceP("link", "l", nil, "External link as label=url or url (repeatable)")
	ticketCreateCmd.Flags().StringToStringP("field", "f", nil, "Custom field key=value (repeatable)")
	ticketCreateCmd.Flags().StringSlice("related", nil, "Related ticket ID or RMA number (repeatable)")
	ticketCmd.AddCommand(ticketCreateCmd)
}
