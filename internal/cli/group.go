package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

type groupResult struct {
	GroupID string   `json:"group_id,omitempty"`
	Color   string   `json:"color,omitempty"`
	Tickets []string `json:"tickets"`
	Count   int      `json:"count"`
}

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Color-code related tickets on the board",
}

var groupSetCmd = &cobra.Command{
	Use:   "set <ticket>...",
	Short: "Tag tickets with a shared group color",
	Long: `Tag tickets with a shared group color.

Colors are names (red, blue, ...) or hex values (#ff8800). With --cluster
every ticket linked to the given tickets joins the group too. The group ID
is derived from the members unless --group-id is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)
		color, _ := cmd.Flags().GetString("color")
		groupID, _ := cmd.Flags().GetString("group-id")
		cluster, _ := cmd.Flags().GetBool("cluster")

		ids, err := resolveTickets(t, args)
		if err != nil {
			return err
		}
		if cluster {
			var expanded []string
			for _, id := range ids {
				members, err := t.Cluster(id)
				if err != nil {
					return failed(err)
				}
				for _, m := range members {
					if !slices.Contains(expanded, m) {
						expanded = append(expanded, m)
					}
				}
			}
			ids = expanded
		}

		gid, err := t.AssignGroupColor(ids, color, groupID)
		if err != nil {
			return failed(err)
		}
		w.Success(groupResult{GroupID: gid, Color: color, Tickets: ids, Count: len(ids)},
			fmt.Sprintf("Colored %d ticket(s) %s (%s)", len(ids), color, gid))
		return nil
	},
}

var groupClearCmd = &cobra.Command{
	Use:   "clear <ticket>...",
	Short: "Remove every group color from tickets",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		ids, err := resolveTickets(t, args)
		if err != nil {
			return err
		}
		n := t.ClearGroupColor(ids)
		w.Success(groupResult{Tickets: ids, Count: n}, fmt.Sprintf("Cleared group colors on %d ticket(s)", n))
		return nil
	},
}

func init() {
	groupSetCmd.Flags().StringP("color", "c", "", "Group color (name or #hex)")
	groupSetCmd.Flags().String("group-id", "", "Explicit group identifier")
	groupSetCmd.Flags().Bool("cluster", false, "Include every linked ticket")
	_ = groupSetCmd.MarkFlagRequired("color")

	groupCmd.AddCommand(groupSetCmd, groupClearCmd)
	rootCmd.AddCommand(groupCmd)
}
