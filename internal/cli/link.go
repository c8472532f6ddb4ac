package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
	"github.com/ALT-F4-LLC/rmaboard/internal/output"
	"github.com/ALT-F4-LLC/rmaboard/internal/relation"
	"github.com/ALT-F4-LLC/rmaboard/internal/render"
	"github.com/ALT-F4-LLC/rmaboard/internal/tracker"
)

type linkResult struct {
	Source string             `json:"source"`
	Target string             `json:"target"`
	Type   model.RelationType `json:"type"`
	Note   string             `json:"note"`
}

type linkListResult struct {
	ID        string                      `json:"id"`
	RMANumber string                      `json:"rma_number"`
	Relations []relation.ResolvedRelation `json:"relations"`
}

type clusterResult struct {
	Root    string   `json:"root"`
	Tickets []string `json:"tickets"`
}

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Manage relationships between tickets",
}

// linkPair resolves the owner and target references of a link command.
func linkPair(t *tracker.Tracker, args []string) (owner, target *model.Ticket, err error) {
	if owner, err = resolveTicket(t, args[0]); err != nil {
		return nil, nil, err
	}
	if target, err = resolveTicket(t, args[1]); err != nil {
		return nil, nil, err
	}
	return owner, target, nil
}

func parseRelationFlag(cmd *cobra.Command) (model.RelationType, error) {
	raw, _ := cmd.Flags().GetString("type")
	rt, err := model.ParseRelationType(raw)
	if err != nil {
		return "", cmdErr(err, output.ErrValidation)
	}
	return rt, nil
}

var linkAddCmd = &cobra.Command{
	Use:   "add <ticket> <target>",
	Short: "Link a ticket to another ticket",
	Long: `Link a ticket to another ticket.

The edge is stored on the first ticket and the target shows the inverse
relationship. Linking the same pair twice keeps the more specific type.

Types: related, parent, child, sibling`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)
		note, _ := cmd.Flags().GetString("note")

		rt, err := parseRelationFlag(cmd)
		if err != nil {
			return err
		}
		owner, target, err := linkPair(t, args)
		if err != nil {
			return err
		}
		if err := t.AddRelationship(owner.ID, target.ID, rt, note); err != nil {
			return failed(err)
		}

		updated, _ := t.GetTicket(owner.ID)
		edge, _ := updated.OutgoingTo(target.ID)
		w.Success(linkResult{Source: owner.ID, Target: target.ID, Type: edge.Type, Note: edge.Note},
			fmt.Sprintf("%s %s %s", owner.RMANumber, strings.ReplaceAll(string(edge.Type), "_", " "), target.RMANumber))
		return nil
	},
}

var linkUpdateCmd = &cobra.Command{
	Use:   "update <ticket> <target>",
	Short: "Change the type or note of an existing link",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		var patch tracker.RelationshipPatch
		if cmd.Flags().Changed("type") {
			rt, err := parseRelationFlag(cmd)
			if err != nil {
				return err
			}
			patch.Type = &rt
		}
		if cmd.Flags().Changed("note") {
			note, _ := cmd.Flags().GetString("note")
			patch.Note = &note
		}
		if patch.Type == nil && patch.Note == nil {
			return cmdErr(fmt.Errorf("nothing to update: pass --type or --note"), output.ErrValidation)
		}

		owner, target, err := linkPair(t, args)
		if err != nil {
			return err
		}
		if err := t.UpdateRelationship(owner.ID, target.ID, patch); err != nil {
			return failed(err)
		}

		updated, _ := t.GetTicket(owner.ID)
		edge, _ := updated.OutgoingTo(target.ID)
		w.Success(linkResult{Source: owner.ID, Target: target.ID, Type: edge.Type, Note: edge.Note},
			fmt.Sprintf("Updated link %s -> %s", owner.RMANumber, target.RMANumber))
		return nil
	},
}

var linkRemoveCmd = &cobra.Command{
	Use:     "remove <ticket> <target>",
	Short:   "Remove the link from a ticket to a target",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		owner, target, err := linkPair(t, args)
		if err != nil {
			return err
		}
		edge, _ := owner.OutgoingTo(target.ID)
		if err := t.RemoveRelationship(owner.ID, target.ID); err != nil {
			return failed(err)
		}
		w.Success(linkResult{Source: owner.ID, Target: target.ID, Type: edge.Type, Note: edge.Note},
			fmt.Sprintf("Unlinked %s from %s", owner.RMANumber, target.RMANumber))
		return nil
	},
}

var linkListCmd = &cobra.Command{
	Use:     "list <ticket>",
	Short:   "List a ticket's outgoing and incoming links",
	Aliases: []string{"ls"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		tk, err := resolveTicket(t, args[0])
		if err != nil {
			return err
		}
		rels, err := t.ResolvedRelationships(tk.ID)
		if err != nil {
			return failed(err)
		}

		result := linkListResult{ID: tk.ID, RMANumber: tk.RMANumber, Relations: rels}
		if len(rels) == 0 {
			w.Success(result, render.EmptyState(fmt.Sprintf("%s has no links.", tk.RMANumber), "", false))
			return nil
		}

		label := ticketLabel(t)
		var b strings.Builder
		for _, r := range rels {
			fmt.Fprintf(&b, "%s %s %s", render.RelationArrow(r.Direction), r.Type, label(r.TicketID))
			if r.Note != "" {
				fmt.Fprintf(&b, " - %s", r.Note)
			}
			b.WriteByte('\n')
		}
		w.Success(result, strings.TrimRight(b.String(), "\n"))
		return nil
	},
}

var linkClusterCmd = &cobra.Command{
	Use:   "cluster <ticket>",
	Short: "Show every ticket connected to a ticket through links",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		t := getTracker(cmd)

		tk, err := resolveTicket(t, args[0])
		if err != nil {
			return err
		}
		ids, err := t.Cluster(tk.ID)
		if err != nil {
			return failed(err)
		}
		w.Success(clusterResult{Root: tk.ID, Tickets: ids}, render.RenderCluster(ids, ticketLabel(t)))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{linkAddCmd, linkUpdateCmd} {
		c.Flags().StringP("type", "t", string(model.RelationRelated), "Relationship type")
		c.Flags().StringP("note", "n", "", "Note shown with the link")
	}
	linkCmd.AddCommand(linkAddCmd, linkUpdateCmd, linkRemoveCmd, linkListCmd, linkClusterCmd)
	rootCmd.AddCommand(linkCmd)
}
