package cli

import (
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/rmaboard/internal/filter"
	"github.com/ALT-F4-LLC/rmaboard/internal/model"
	"github.com/ALT-F4-LLC/rmaboard/internal/output"
	"github.com/ALT-F4-LLC/rmaboard/internal/render"
)

type boardColumnResult struct {
	*model.Column
	Tickets []*model.Ticket `json:"tickets"`
	Total   int             `json:"total"`
}

type boardResult struct {
	Columns []boardColumnResult `json:"columns"`
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the Kanban board",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		q, err := queryFromFlags(cmd)
		if err != nil {
			return err
		}
		expand, _ := cmd.Flags().GetBool("expand")

		views := t.Search(q)

		result := boardResult{Columns: make([]boardColumnResult, 0, len(views))}
		cols := make([]render.BoardColumn, 0, len(views))
		for _, v := range views {
			result.Columns = append(result.Columns, boardColumnResult{Column: v.Column, Tickets: v.Tickets, Total: v.Total})
			cols = append(cols, render.BoardColumn{Column: v.Column, Tickets: v.Tickets, Total: v.Total})
		}

		w.Success(result, render.RenderBoard(cols, render.BoardOptions{
			Expand: expand,
			Names:  t.CustomerName,
		}))
		return nil
	},
}

// addQueryFlags registers the search and sort flags shared by board and
// ticket list.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("search", "s", "", "Case-insensitive text search")
	cmd.Flags().StringP("assignee", "a", "", "Only tickets assigned to this person")
	cmd.Flags().StringSliceP("priority", "p", nil, "Only these priorities (repeatable)")
	cmd.Flags().String("sort", "", "Sort by priority, date or assignee")
}

func queryFromFlags(cmd *cobra.Command) (filter.Query, error) {
	text, _ := cmd.Flags().GetString("search")
	assignee, _ := cmd.Flags().GetString("assignee")
	priorities, _ := cmd.Flags().GetStringSlice("priority")
	sortBy, _ := cmd.Flags().GetString("sort")

	for _, p := range priorities {
		if err := model.ValidatePriority(model.Priority(p)); err != nil {
			return filter.Query{}, cmdErr(err, output.ErrValidation)
		}
	}
	if err := filter.ValidateSort(sortBy); err != nil {
		return filter.Query{}, cmdErr(err, output.ErrValidation)
	}

	return filter.Query{
		Text:       text,
		Assignee:   assignee,
		Priorities: priorities,
		SortBy:     sortBy,
	}, nil
}

func init() {
	addQueryFlags(boardCmd)
	boardCmd.Flags().BoolP("expand", "e", false, "Show every card instead of capping each column")
	rootCmd.AddCommand(boardCmd)
}
