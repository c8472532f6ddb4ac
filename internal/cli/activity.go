package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
	"github.com/ALT-F4-LLC/rmaboard/internal/output"
	"github.com/ALT-F4-LLC/rmaboard/internal/render"
	"github.com/ALT-F4-LLC/rmaboard/internal/tracker"
)

var activityTypes = []model.ActivityType{
	model.ActivityNote,
	model.ActivityStatus,
	model.ActivityMove,
	model.ActivityRelation,
	model.ActivityGroup,
}

func parseActivityType(s string) (model.ActivityType, error) {
	for _, at := range activityTypes {
		if strings.EqualFold(s, string(at)) {
			return at, nil
		}
	}
	names := make([]string, len(activityTypes))
	for i, at := range activityTypes {
		names[i] = string(at)
	}
	return "", fmt.Errorf("invalid activity type %q: must be one of %s", s, strings.Join(names, ", "))
}

var activityCmd = &cobra.Command{
	Use:     "activity",
	Short:   "Read or append to a ticket's activity log",
	Aliases: []string{"log"},
}

var activityAddCmd = &cobra.Command{
	Use:   "add <ticket> <text|->",
	Short: "Append an entry to a ticket's activity log",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)
		author, _ := cmd.Flags().GetString("author")
		typ, _ := cmd.Flags().GetString("type")

		at, err := parseActivityType(typ)
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}
		text, err := readValue(args[1])
		if err != nil {
			return cmdErr(err, output.ErrGeneral)
		}
		tk, err := resolveTicket(t, args[0])
		if err != nil {
			return err
		}

		entry, err := t.AddActivity(tk.ID, tracker.ActivityInput{Type: at, Author: author, Text: text})
		if err != nil {
			return failed(err)
		}
		w.Success(entry, fmt.Sprintf("Added %s to %s", entry.Type, tk.RMANumber))
		return nil
	},
}

var activityListCmd = &cobra.Command{
	Use:     "list <ticket>",
	Short:   "Show a ticket's activity log",
	Aliases: []string{"ls"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		tk, err := resolveTicket(t, args[0])
		if err != nil {
			return err
		}
		entries, err := t.ListActivity(tk.ID)
		if err != nil {
			return failed(err)
		}
		if entries == nil {
			entries = []model.Activity{}
		}
		w.Success(entries, render.RenderActivity(entries))
		return nil
	},
}

func init() {
	activityAddCmd.Flags().String("author", "", "Entry author (defaults to the configured author)")
	activityAddCmd.Flags().StringP("type", "t", string(model.ActivityNote), "Entry type")
	activityCmd.AddCommand(activityAddCmd, activityListCmd)
	rootCmd.AddCommand(activityCmd)
}
