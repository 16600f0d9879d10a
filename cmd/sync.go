package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talkincode/qsadmin/internal/utils"
	"github.com/talkincode/qsadmin/pkg/qsapi"
	"github.com/talkincode/qsadmin/pkg/storage"
)

// syncCmd snapshots the remote user list into the local database and prints
// what changed since the last sync.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Snapshot the remote user list into the local database",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("dbpath")
		if dbPath == "" {
			dbPath = "qsadmin.sqlite"
		}

		api := apiClient(cmd)

		// Walk the pages until the whole list is in hand. The snapshot is
		// only meaningful over the full collection.
		var users []qsapi.User
		page := 1
		for {
			result, err := api.GetUsers(cmd.Context(), qsapi.UserListOptions{Page: page, Limit: 100})
			if err != nil {
				return err
			}
			users = append(users, result.Data...)
			if len(result.Data) == 0 || int64(len(users)) >= result.Total {
				break
			}
			page++
		}

		utils.Log.Debug("Fetched ", len(users), " users from the remote service")

		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		changes, err := db.SyncUsers(cmd.Context(), users)
		if err != nil {
			return err
		}

		if len(changes) == 0 {
			fmt.Println("no changes since last sync")
			return nil
		}
		for _, c := range changes {
			fmt.Printf("%-7s  user %d  %s  status=%s\n", c.ChangeType, c.UserID, c.Email, c.Status)
		}
		fmt.Printf("%d change(s) recorded\n", len(changes))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().String("dbpath", "", "Path to SQLite DB file (default: qsadmin.sqlite in CWD)")
}
