package cmd

import (
	"github.com/spf13/cobra"

	"github.com/talkincode/qsadmin/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the admin API for a browser view",
	Long: `Starts a small JSON API that bridges a browser view to the admin core.
List data is proxied live from the remote service; selection state and the
audit trail are kept per session (X-Session-ID header) and lost on exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr, _ := cmd.Flags().GetString("listen")
		authUser, _ := cmd.Flags().GetString("auth-user")
		authPass, _ := cmd.Flags().GetString("auth-pass")

		return server.New(apiClient(cmd), authUser, authPass).Start(listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "127.0.0.1:7900", "HTTP listen address")
	serveCmd.Flags().String("auth-user", "", "Basic auth username (empty disables auth)")
	serveCmd.Flags().String("auth-pass", "", "Basic auth password")
}
