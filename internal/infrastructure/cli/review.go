package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/planwright/planwright/internal/domain/review"
	"github.com/planwright/planwright/internal/infrastructure/wiring"
)

var (
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	approvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	rejectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	changesStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Work the review queue of AI-generated layouts",
}

var reviewListJSON bool

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List review items, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := buildServices()
		if err != nil {
			return err
		}

		items, err := services.Reviews.List()
		if err != nil {
			return err
		}

		if reviewListJSON {
			return json.NewEncoder(os.Stdout).Encode(items)
		}

		if len(items) == 0 {
			fmt.Println("Review queue is empty.")
			return nil
		}

		for _, item := range items {
			fmt.Printf("%s  %s  %s %s\n",
				statusBadge(item.Status),
				item.Id,
				item.Title,
				dimStyle.Render(fmt.Sprintf("(confidence %.2f)", item.Confidence)))
		}
		return nil
	},
}

var reviewShowCmd = &cobra.Command{
	Use:   "show <item-id>",
	Short: "Show one review item in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := buildServices()
		if err != nil {
			return err
		}

		item, err := services.Reviews.Get(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s  %s\n", statusBadge(item.Status), item.Title)
		fmt.Printf("Id:          %s\n", item.Id)
		fmt.Printf("Created:     %s\n", item.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Printf("Confidence:  %.2f\n", item.Confidence)
		if item.ReviewedAt != nil {
			fmt.Printf("Reviewed:    %s\n", item.ReviewedAt.Format("2006-01-02 15:04"))
			fmt.Printf("Notes:       %s\n", item.ReviewNotes)
		}
		if item.SupersededBy != "" {
			fmt.Printf("Superseded:  %s\n", item.SupersededBy)
		}
		if item.Description != "" {
			fmt.Printf("\n%s\n", item.Description)
		}
		for _, issue := range item.Validation.Errors {
			fmt.Printf("  %s %s: %s\n", rejectedStyle.Render("✗"), issue.Code, issue.Message)
		}
		for _, issue := range item.Validation.Warnings {
			fmt.Printf("  %s %s: %s\n", pendingStyle.Render("!"), issue.Code, issue.Message)
		}
		return nil
	},
}

func dispositionCommand(use, short string, decide func(ctx context.Context, services *wiring.AppServices, id, actor, notes string) (*review.Item, error), notesRequired bool) *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if notesRequired && strings.TrimSpace(notes) == "" {
				return fmt.Errorf("--notes is required: a disposition without a reason is not recorded")
			}

			services, err := buildServices()
			if err != nil {
				return err
			}

			item, err := decide(cmd.Context(), services, args[0], actorName(), notes)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s\n", statusBadge(item.Status), item.Id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&notes, "notes", "m", "", "Review notes recorded with the disposition")
	return cmd
}

func actorName() string {
	if actor := os.Getenv("USER"); actor != "" {
		return actor
	}
	return "unknown-reviewer"
}

func buildServices() (*wiring.AppServices, error) {
	cwd, _ := os.Getwd()
	return wiring.BuildAppServices(cwd, nil)
}

func statusBadge(status review.Status) string {
	switch status {
	case review.StatusPending:
		return pendingStyle.Render("[pending]  ")
	case review.StatusApproved:
		return approvedStyle.Render("[approved] ")
	case review.StatusRejected:
		return rejectedStyle.Render("[rejected] ")
	case review.StatusChangesRequested:
		return changesStyle.Render("[changes]  ")
	default:
		return "[" + status.String() + "]"
	}
}

func init() {
	reviewListCmd.Flags().BoolVar(&reviewListJSON, "json", false, "Output in JSON format")

	reviewCmd.AddCommand(reviewListCmd)
	reviewCmd.AddCommand(reviewShowCmd)
	reviewCmd.AddCommand(dispositionCommand("approve <item-id>",
		"Approve an item; the plugin is notified to proceed with the commit",
		func(ctx context.Context, s *wiring.AppServices, id, actor, notes string) (*review.Item, error) {
			return s.Reviews.Approve(ctx, id, actor, notes)
		}, false))
	reviewCmd.AddCommand(dispositionCommand("reject <item-id>",
		"Reject an item; notes are mandatory",
		func(ctx context.Context, s *wiring.AppServices, id, actor, notes string) (*review.Item, error) {
			return s.Reviews.Reject(ctx, id, actor, notes)
		}, true))
	reviewCmd.AddCommand(dispositionCommand("request-changes <item-id>",
		"Request changes; notes are mandatory and a new generation cycle follows",
		func(ctx context.Context, s *wiring.AppServices, id, actor, notes string) (*review.Item, error) {
			return s.Reviews.RequestChanges(ctx, id, actor, notes)
		}, true))
	reviewCmd.AddCommand(reviewNextCmd)
	RootCmd.AddCommand(reviewCmd)
}
