package cli

import (
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/rmaboard/internal/filter"
	"github.com/ALT-F4-LLC/rmaboard/internal/model"
	"github.com/ALT-F4-LLC/rmaboard/internal/render"
)

type listResult struct {
	Tickets []*model.Ticket `json:"tickets"`
	Total   int             `json:"total"`
}

var ticketListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List tickets",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		q, err := queryFromFlags(cmd)
		if err != nil {
			return err
		}
		customer, _ := cmd.Flags().GetString("customer")
		completed, _ := cmd.Flags().GetBool("completed")
		all, _ := cmd.Flags().GetBool("all")
		limit, _ := cmd.Flags().GetInt("limit")

		tickets := t.ListTickets()
		if customer != "" {
			c, err := t.GetCustomer(customer)
			if err != nil {
				return failed(err)
			}
			tickets = keep(tickets, func(tk *model.Ticket) bool { return tk.CustomerID == c.ID })
		}
		if !all {
			tickets = keep(tickets, func(tk *model.Ticket) bool { return tk.IsCompleted() == completed })
		}
		tickets = filter.Apply(tickets, q)

		total := len(tickets)
		if limit > 0 && len(tickets) > limit {
			tickets = tickets[:limit]
		}

		w.Success(listResult{Tickets: tickets, Total: total}, render.RenderTable(tickets, t.CustomerName))
		if len(tickets) < total {
			w.Info("Showing %d of %d tickets", len(tickets), total)
		}
		return nil
	},
}

func keep(tickets []*model.Ticket, fn func(*model.Ticket) bool) []*model.Ticket {
	out := tickets[:0:0]
	for _, tk := range tickets {
		if fn(tk) {
			out = append(out, tk)
		}
	}
	return out
}

func init() {
	addQueryFlags(ticketListCmd)
	ticketListCmd.Flags().StringP("customer", "c", "", "Only tickets for this customer ID or slug")
	ticketListCmd.Flags().Bool("completed", false, "Show completed tickets instead of active ones")
	ticketListCmd.Flags().Bool("all", false, "Show active and completed tickets")
	ticketListCmd.Flags().IntP("limit", "n", 0, "Maximum number of tickets to show")
	ticketCmd.AddCommand(ticketListCmd)
}
