package cmd

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the remote service is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		wait, _ := cmd.Flags().GetBool("wait")

		if wait {
			// The gateway itself never retries; waiting for the service to
			// come up is a caller-side policy, so it gets its own client.
			client := retryablehttp.NewClient()
			client.RetryMax, _ = cmd.Flags().GetInt("retries")
			client.Logger = nil

			resp, err := client.Get(strings.TrimRight(baseURL(cmd), "/") + "/health")
			if err != nil {
				return fmt.Errorf("service did not come up: %w", err)
			}
			resp.Body.Close()
			fmt.Println("service is up")
			return nil
		}

		if err := apiClient(cmd).Health(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("service is up")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().Bool("wait", false, "Keep retrying until the service responds")
	pingCmd.Flags().Int("retries", 30, "Retry limit when --wait is set")
}
