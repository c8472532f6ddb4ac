package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
	"github.com/ALT-F4-LLC/rmaboard/internal/output"
	"github.com/ALT-F4-LLC/rmaboard/internal/render"
	"github.com/ALT-F4-LLC/rmaboard/internal/tracker"
)

// customerFlags maps each customer flag to its field on the input struct.
var customerFlags = []struct {
	name, short, usage string
	field              func(*tracker.CustomerInput) *string
}{
	{"company", "c", "Company name", func(in *tracker.CustomerInput) *string { return &in.CompanyName }},
	{"contact", "", "Contact name", func(in *tracker.CustomerInput) *string { return &in.ContactName }},
	{"email", "e", "Contact email", func(in *tracker.CustomerInput) *string { return &in.ContactEmail }},
	{"phone", "", "Contact phone", func(in *tracker.CustomerInput) *string { return &in.ContactPhone }},
	{"address", "", "Street address", func(in *tracker.CustomerInput) *string { return &in.Address }},
	{"city", "", "City", func(in *tracker.CustomerInput) *string { return &in.City }},
	{"state", "", "State or region", func(in *tracker.CustomerInput) *string { return &in.State }},
	{"zip", "", "Postal code", func(in *tracker.CustomerInput) *string { return &in.Zip }},
	{"notes", "n", "Free-form notes (use - for stdin)", func(in *tracker.CustomerInput) *string { return &in.Notes }},
}

func addCustomerFlags(fs *pflag.FlagSet) {
	for _, f := range customerFlags {
		fs.StringP(f.name, f.short, "", f.usage)
	}
}

type customerDetail struct {
	*model.Customer
	Active    []*model.Ticket `json:"active_tickets"`
	Completed []*model.Ticket `json:"completed_tickets"`
}

var customerCmd = &cobra.Command{
	Use:     "customer",
	Short:   "Manage customers",
	Aliases: []string{"cust"},
}

var customerAddCmd = &cobra.Command{
	Use:   "add [company]",
	Short: "Add a customer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		var in tracker.CustomerInput
		for _, f := range customerFlags {
			*f.field(&in), _ = cmd.Flags().GetString(f.name)
		}
		if len(args) == 1 {
			in.CompanyName = args[0]
		}
		notes, err := readValue(in.Notes)
		if err != nil {
			return cmdErr(err, output.ErrGeneral)
		}
		in.Notes = notes

		if in.CompanyName == "" && interactive(cmd) {
			if err := customerForm(&in); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					w.Info("Cancelled.")
					return nil
				}
				return cmdErr(fmt.Errorf("interactive form failed: %w", err), output.ErrGeneral)
			}
		}

		c, err := t.AddCustomer(in)
		if err != nil {
			return failed(err)
		}
		w.Success(c, fmt.Sprintf("Added customer %s (%s)", c.CompanyName, c.Slug))
		return nil
	},
}

func customerForm(in *tracker.CustomerInput) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Company").Value(&in.CompanyName).Validate(required("company")),
			huh.NewInput().Title("Contact").Value(&in.ContactName),
			huh.NewInput().Title("Email").Value(&in.ContactEmail),
			huh.NewInput().Title("Phone").Value(&in.ContactPhone),
		),
		huh.NewGroup(
			huh.NewInput().Title("Address").Value(&in.Address),
			huh.NewInput().Title("City").Value(&in.City),
			huh.NewInput().Title("State").Value(&in.State),
			huh.NewInput().Title("Zip").Value(&in.Zip),
			huh.NewText().Title("Notes").Value(&in.Notes),
		),
	).Run()
}

var customerEditCmd = &cobra.Command{
	Use:   "edit <customer>",
	Short: "Edit a customer's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		var in tracker.CustomerInput
		changed := map[string]bool{}
		for _, f := range customerFlags {
			if cmd.Flags().Changed(f.name) {
				*f.field(&in), _ = cmd.Flags().GetString(f.name)
				changed[f.name] = true
			}
		}
		if len(changed) == 0 {
			return cmdErr(fmt.Errorf("nothing to update: pass at least one field flag"), output.ErrValidation)
		}
		if changed["notes"] {
			notes, err := readValue(in.Notes)
			if err != nil {
				return cmdErr(err, output.ErrGeneral)
			}
			in.Notes = notes
		}

		pick := func(name string, v string) *string {
			if !changed[name] {
				return nil
			}
			return &v
		}
		patch := tracker.CustomerPatch{
			CompanyName:  pick("company", in.CompanyName),
			ContactName:  pick("contact", in.ContactName),
			ContactEmail: pick("email", in.ContactEmail),
			ContactPhone: pick("phone", in.ContactPhone),
			Address:      pick("address", in.Address),
			City:         pick("city", in.City),
			State:        pick("state", in.State),
			Zip:          pick("zip", in.Zip),
			Notes:        pick("notes", in.Notes),
		}

		c, err := t.UpdateCustomer(args[0], patch)
		if err != nil {
			return failed(err)
		}
		w.Success(c, fmt.Sprintf("Updated customer %s", c.DisplayName()))
		return nil
	},
}

var customerShowCmd = &cobra.Command{
	Use:     "show <customer>",
	Short:   "Show a customer and their tickets",
	Aliases: []string{"view"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		c, err := t.GetCustomer(args[0])
		if err != nil {
			return failed(err)
		}
		active, completed, err := t.CustomerTickets(c.ID)
		if err != nil {
			return failed(err)
		}
		if active == nil {
			active = []*model.Ticket{}
		}
		if completed == nil {
			completed = []*model.Ticket{}
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%s (%s)\n", c.DisplayName(), c.Slug)
		for _, row := range [][2]string{
			{"Contact", c.ContactName},
			{"Email", c.ContactEmail},
			{"Phone", c.ContactPhone},
			{"Address", joinNonEmpty(", ", c.Address, c.City, joinNonEmpty(" ", c.State, c.Zip))},
		} {
			if row[1] != "" {
				fmt.Fprintf(&b, "  %-8s %s\n", row[0]+":", row[1])
			}
		}
		if c.Notes != "" {
			fmt.Fprintf(&b, "\n%s\n", c.Notes)
		}
		names := func(string) string { return c.DisplayName() }
		fmt.Fprintf(&b, "\nActive (%d)\n", len(active))
		if len(active) > 0 {
			b.WriteString(render.RenderTable(active, names))
		}
		fmt.Fprintf(&b, "\nCompleted (%d)\n", len(completed))
		if len(completed) > 0 {
			b.WriteString(render.RenderTable(completed, names))
		}

		w.Success(customerDetail{Customer: c, Active: active, Completed: completed}, strings.TrimRight(b.String(), "\n"))
		return nil
	},
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

var customerListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List customers with open and closed ticket counts",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		customers := t.ListCustomers()
		counts := make(map[string][2]int, len(customers))
		for _, tk := range t.ListTickets() {
			n := counts[tk.CustomerID]
			if tk.IsCompleted() {
				n[1]++
			} else {
				n[0]++
			}
			counts[tk.CustomerID] = n
		}
		w.Success(customers, render.RenderCustomers(customers, counts))
		return nil
	},
}

var customerDeleteCmd = &cobra.Command{
	Use:   "delete <customer>",
	Short: "Delete a customer",
	Long: `Delete a customer.

Tickets that reference the customer are kept and show the customer as
Unknown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)
		force, _ := cmd.Flags().GetBool("force")

		c, err := t.GetCustomer(args[0])
		if err != nil {
			return failed(err)
		}
		if !force {
			if !interactive(cmd) {
				return cmdErr(fmt.Errorf("refusing to delete %s without --force", c.Slug), output.ErrValidation)
			}
			ok, err := confirm(fmt.Sprintf("Delete customer %s?", c.DisplayName()), "Delete")
			if err != nil {
				return cmdErr(fmt.Errorf("interactive form failed: %w", err), output.ErrGeneral)
			}
			if !ok {
				w.Info("Cancelled.")
				return nil
			}
		}

		if err := t.DeleteCustomer(c.ID); err != nil {
			return failed(err)
		}
		w.Success(c, fmt.Sprintf("Deleted customer %s", c.DisplayName()))
		return nil
	},
}

func init() {
	addCustomerFlags(customerAddCmd.Flags())
	addCustomerFlags(customerEditCmd.Flags())
	customerDeleteCmd.Flags().BoolP("force", "f", false, "Delete without confirmation")

	customerCmd.AddCommand(customerAddCmd, customerEditCmd, customerShowCmd, customerListCmd, customerDeleteCmd)
	rootCmd.AddCommand(customerCmd)
}
