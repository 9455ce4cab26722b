package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planwright/planwright/internal/domain/review"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the review queue for this workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := buildServices()
		if err != nil {
			return err
		}

		items, err := services.Reviews.List()
		if err != nil {
			return err
		}

		counts := map[review.Status]int{}
		for _, item := range items {
			counts[item.Status]++
		}

		fmt.Printf("Review queue: %d item(s)\n", len(items))
		for _, status := range []review.Status{
			review.StatusPending,
			review.StatusApproved,
			review.StatusRejected,
			review.StatusChangesRequested,
		} {
			if counts[status] == 0 {
				continue
			}
			fmt.Printf("  %s %d\n", statusBadge(status), counts[status])
		}

		cfg := services.Workspace.Config
		fmt.Println()
		fmt.Println(dimStyle.Render(fmt.Sprintf("socket %s", cfg.SocketPath)))
		fmt.Println(dimStyle.Render(fmt.Sprintf("http   %s", cfg.HTTPAddr)))
		fmt.Println(dimStyle.Render(fmt.Sprintf("ai     %s", cfg.AIProvider)))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(statusCmd)
}
