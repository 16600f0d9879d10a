package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/talkincode/qsadmin/internal/utils"
	"github.com/talkincode/qsadmin/pkg/qsapi"
	"github.com/talkincode/qsadmin/pkg/session"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Inspect and manage user accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users with optional server-side filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")
		search, _ := cmd.Flags().GetString("search")
		status, _ := cmd.Flags().GetString("status")
		grep, _ := cmd.Flags().GetString("grep")

		api := apiClient(cmd)
		sess := session.New()

		result, err := api.GetUsers(cmd.Context(), qsapi.UserListOptions{
			Page:   page,
			Limit:  limit,
			Search: search,
			Status: status,
		})
		if err != nil {
			return err
		}

		sess.UserPage.Store(session.PageParams{
			Page:   result.Page,
			Limit:  result.Limit,
			Search: search,
			Status: status,
		}, result.Data, result.Total)

		// --grep narrows the fetched page locally by email; the total below
		// stays the server's count for the whole filtered collection.
		displayed := session.FilterDisplayed(sess.UserPage.Items(), grep, func(u qsapi.User) string {
			return u.Email
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tEMAIL\tAPI KEY\tSTATUS\tCREATED\t")
		for _, u := range displayed {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t\n",
				u.ID, u.Email, utils.MaskKey(u.APIKey), u.Status, u.CreatedAt.Format("2006-01-02 15:04"))
		}
		w.Flush()

		fmt.Printf("showing %d of %d users (page %d, limit %d)\n", len(displayed), result.Total, result.Page, result.Limit)
		return nil
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		user, err := apiClient(cmd).GetUser(cmd.Context(), ids[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:       %d\n", user.ID)
		fmt.Printf("Email:    %s\n", user.Email)
		if user.Username != "" {
			fmt.Printf("Username: %s\n", user.Username)
		}
		fmt.Printf("API Key:  %s\n", utils.MaskKey(user.APIKey))
		fmt.Printf("Status:   %s\n", user.Status)
		fmt.Printf("Created:  %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
		if user.LastLogin != nil {
			fmt.Printf("Last login: %s\n", user.LastLogin.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user and print its credentials (shown once)",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		username, _ := cmd.Flags().GetString("username")

		created, err := apiClient(cmd).CreateUser(cmd.Context(), email, username)
		if err != nil {
			return err
		}

		fmt.Println("User created. Save these credentials now; the secret is not retrievable again.")
		fmt.Printf("ID:         %d\n", created.ID)
		fmt.Printf("Email:      %s\n", created.Email)
		fmt.Printf("API Key:    %s\n", created.APIKey)
		fmt.Printf("API Secret: %s\n", created.APISecret)
		return nil
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a user's status or rotate its API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")
		regen, _ := cmd.Flags().GetBool("regenerate-key")

		user, err := apiClient(cmd).UpdateUser(cmd.Context(), ids[0], status, regen)
		if err != nil {
			return err
		}

		fmt.Printf("updated user %d: status=%s\n", user.ID, user.Status)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Soft-delete one or more users",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		workers, _ := cmd.Flags().GetInt("workers")

		api := apiClient(cmd)

		// Show the doomed rows before asking, like the dashboard's delete
		// dialog. A lookup failure downgrades to an id-only listing; it must
		// not block the operation.
		emails := map[uint64]string{}
		if page, lerr := api.GetUsers(cmd.Context(), qsapi.UserListOptions{Limit: 1000}); lerr == nil {
			for _, u := range page.Data {
				emails[u.ID] = u.Email
			}
		} else {
			utils.Log.Warn("could not fetch user details: ", lerr)
		}

		fmt.Printf("About to delete %d user(s):\n", len(ids))
		for _, id := range ids {
			if email, ok := emails[id]; ok {
				fmt.Printf("  %d  %s\n", id, email)
			} else {
				fmt.Printf("  %d\n", id)
			}
		}

		if !confirm("Delete these users and all their orders, balances and trades?", yes) {
			fmt.Println("aborted")
			return nil
		}

		sess := session.New()
		runBulkMutation(sess, sess.Users, "delete_user", ids, workers, func(id uint64) error {
			return api.DeleteUser(cmd.Context(), id)
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersGetCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersUpdateCmd)
	usersCmd.AddCommand(usersDeleteCmd)

	usersListCmd.Flags().Int("page", 1, "Page number (1-based)")
	usersListCmd.Flags().Int("limit", 20, "Page size")
	usersListCmd.Flags().String("search", "", "Server-side search (email or API key)")
	usersListCmd.Flags().String("status", "", "Server-side status filter (active/inactive/suspended)")
	usersListCmd.Flags().String("grep", "", "Local email filter over the fetched page")

	usersCreateCmd.Flags().String("email", "", "Email for the new user (required)")
	usersCreateCmd.Flags().String("username", "", "Optional username")
	usersCreateCmd.MarkFlagRequired("email")

	usersUpdateCmd.Flags().String("status", "", "New status (active/inactive/suspended)")
	usersUpdateCmd.Flags().Bool("regenerate-key", false, "Rotate the user's API key")

	usersDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	usersDeleteCmd.Flags().Int("workers", 1, "Concurrent delete calls")
}
