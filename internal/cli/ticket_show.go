package cli

import (
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
	"github.com/ALT-F4-LLC/rmaboard/internal/relation"
	"github.com/ALT-F4-LLC/rmaboard/internal/render"
)

type ticketDetail struct {
	*model.Ticket
	CustomerName string                      `json:"customer_name"`
	Column       string                      `json:"column"`
	Relations    []relation.ResolvedRelation `json:"relations"`
}

var ticketShowCmd = &cobra.Command{
	Use:     "show <id|rma>",
	Short:   "Show a ticket with its relationships and activity",
	Aliases: []string{"view"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		tk, err := resolveTicket(t, args[0])
		if err != nil {
			return err
		}

		opts := detailOptions(t, tk)
		if opts.Relations == nil {
			opts.Relations = []relation.ResolvedRelation{}
		}
		w.Success(ticketDetail{
			Ticket:       tk,
			CustomerName: opts.CustomerName,
			Column:       opts.ColumnName,
			Relations:    opts.Relations,
		}, render.RenderDetail(tk, opts))
		return nil
	},
}

func init() {
	ticketCmd.AddCommand(ticketShowCmd)
}
