package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/talkincode/qsadmin/internal/utils"
	"github.com/talkincode/qsadmin/pkg/audit"
	"github.com/talkincode/qsadmin/pkg/qsapi"
	"github.com/talkincode/qsadmin/pkg/session"
)

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Inspect and adjust balances",
}

var balancesMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Show the calling account's own balances",
	RunE: func(cmd *cobra.Command, args []string) error {
		balances, err := apiClient(cmd).GetBalance(cmd.Context())
		if err != nil {
			return err
		}

		assets := make([]string, 0, len(balances))
		for asset := range balances {
			assets = append(assets, asset)
		}
		sort.Strings(assets)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ASSET\tFREE\tUSED\tTOTAL\t")
		for _, asset := range assets {
			b := balances[asset]
			fmt.Fprintf(w, "%s\t%.8f\t%.8f\t%.8f\t\n", asset, b.Free, b.Used, b.Total)
		}
		w.Flush()
		return nil
	},
}

var balancesUserCmd = &cobra.Command{
	Use:   "user <id>",
	Short: "Show one user's balances",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		balances, err := apiClient(cmd).GetUserBalances(cmd.Context(), ids[0])
		if err != nil {
			return err
		}
		if len(balances) == 0 {
			fmt.Println("no balance records for this user")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ASSET\tAVAILABLE\tLOCKED\tTOTAL\t")
		for _, b := range balances {
			fmt.Fprintf(w, "%s\t%.8f\t%.8f\t%.8f\t\n", b.Asset, b.Available, b.Locked, b.Available+b.Locked)
		}
		w.Flush()
		return nil
	},
}

var balancesAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Paginated balance summary across all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")

		result, err := apiClient(cmd).GetAllBalances(cmd.Context(), page, limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "USER\tASSET\tAVAILABLE\tLOCKED\t")
		for _, b := range result.Data {
			fmt.Fprintf(w, "%d\t%s\t%.8f\t%.8f\t\n", b.UserID, b.Asset, b.Available, b.Locked)
		}
		w.Flush()

		fmt.Printf("showing %d of %d rows (page %d, limit %d)\n", len(result.Data), result.Total, result.Page, result.Limit)
		return nil
	},
}

var balancesAdjustCmd = &cobra.Command{
	Use:   "adjust <user-id>",
	Short: "Add to or deduct from a user's balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		asset, _ := cmd.Flags().GetString("asset")
		amount, _ := cmd.Flags().GetFloat64("amount")
		operation, _ := cmd.Flags().GetString("operation")
		note, _ := cmd.Flags().GetString("note")
		yes, _ := cmd.Flags().GetBool("yes")

		req := qsapi.AdjustRequest{
			Asset:     asset,
			Amount:    amount,
			Operation: operation,
			Note:      note,
		}
		// Reject bad input here; a validation failure must never produce a
		// remote call.
		if err := req.Validate(); err != nil {
			return err
		}

		if !confirm(fmt.Sprintf("%s %.8f %s for user %d?", operation, amount, asset, ids[0]), yes) {
			fmt.Println("aborted")
			return nil
		}

		sess := session.New()
		result, err := apiClient(cmd).AdjustBalance(cmd.Context(), ids[0], req)
		if err != nil {
			return err
		}

		if aerr := sess.Audit.Record(audit.Entry{
			Timestamp: time.Now(),
			Operation: "adjust_balance",
			TargetID:  ids[0],
			Params: map[string]string{
				"asset":     asset,
				"amount":    fmt.Sprintf("%.8f", amount),
				"operation": operation,
				"note":      note,
			},
			Outcome: "ok",
		}); aerr != nil {
			utils.Log.Warn("audit record failed: ", aerr)
		}

		fmt.Println(result.Message)
		fmt.Printf("user %d %s: available %.8f, locked %.8f\n",
			result.Balance.UserID, result.Balance.Asset, result.Balance.Available, result.Balance.Locked)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balancesCmd)
	balancesCmd.AddCommand(balancesMineCmd)
	balancesCmd.AddCommand(balancesUserCmd)
	balancesCmd.AddCommand(balancesAllCmd)
	balancesCmd.AddCommand(balancesAdjustCmd)

	balancesAllCmd.Flags().Int("page", 1, "Page number (1-based)")
	balancesAllCmd.Flags().Int("limit", 20, "Page size")

	balancesAdjustCmd.Flags().String("asset", "", "Asset to adjust (e.g. USDT)")
	balancesAdjustCmd.Flags().Float64("amount", 0, "Amount, must be positive")
	balancesAdjustCmd.Flags().String("operation", "", "add or deduct")
	balancesAdjustCmd.Flags().String("note", "", "Reason for the adjustment, required for audit")
	balancesAdjustCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
