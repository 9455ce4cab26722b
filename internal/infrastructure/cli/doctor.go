package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/planwright/planwright/pkg/sdk"
)

// doctorCmd probes both transports the way a plugin client would, so a
// reachability problem can be diagnosed without attaching a CAD host.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether a running companion is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := buildServices()
		if err != nil {
			return err
		}
		cfg := services.Workspace.Config

		client := sdk.NewClient(
			sdk.WithSocketPath(cfg.SocketPath),
			sdk.WithHTTPBaseURL("http://"+cfg.HTTPAddr),
			sdk.WithConnectTimeout(2*time.Second),
			sdk.WithTimeout(5*time.Second),
		)
		defer client.Close()

		if !client.IsDesktopAppAvailable(cmd.Context()) {
			fmt.Printf("%s no companion reachable on %s or http://%s\n",
				rejectedStyle.Render("✗"), cfg.SocketPath, cfg.HTTPAddr)
			fmt.Println(dimStyle.Render("start one with: planwright serve"))
			return nil
		}

		health := client.HealthCheck(cmd.Context())
		if health == nil {
			fmt.Printf("%s companion reachable but the health exchange failed\n",
				pendingStyle.Render("!"))
			return nil
		}

		fmt.Printf("%s companion %s is %s, up %s\n",
			approvedStyle.Render("✓"), health.Version, health.Status, health.Uptime)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}
