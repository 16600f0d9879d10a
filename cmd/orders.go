package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/talkincode/qsadmin/pkg/qsapi"
	"github.com/talkincode/qsadmin/pkg/session"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Inspect and cancel orders",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders with optional filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol, _ := cmd.Flags().GetString("symbol")
		status, _ := cmd.Flags().GetString("status")
		side, _ := cmd.Flags().GetString("side")
		orderType, _ := cmd.Flags().GetString("type")

		orders, err := apiClient(cmd).GetOrders(cmd.Context(), qsapi.OrderListOptions{
			Symbol: symbol,
			Status: status,
			Side:   side,
			Type:   orderType,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tSYMBOL\tSIDE\tTYPE\tPRICE\tAMOUNT\tFILLED\tSTATUS\t")
		for _, o := range orders {
			price := "market"
			if o.Price != nil {
				price = fmt.Sprintf("%.8f", *o.Price)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.8f\t%.8f\t%s\t\n",
				o.ID, o.Symbol, o.Side, o.Type, price, o.Amount, o.Filled, o.Status)
		}
		w.Flush()

		fmt.Printf("%d orders\n", len(orders))
		return nil
	},
}

var ordersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		o, err := apiClient(cmd).GetOrder(cmd.Context(), ids[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:        %s\n", o.ID)
		fmt.Printf("Symbol:    %s\n", o.Symbol)
		fmt.Printf("Side:      %s\n", o.Side)
		fmt.Printf("Type:      %s\n", o.Type)
		if o.Price != nil {
			fmt.Printf("Price:     %.8f\n", *o.Price)
		}
		fmt.Printf("Amount:    %.8f\n", o.Amount)
		fmt.Printf("Filled:    %.8f\n", o.Filled)
		fmt.Printf("Remaining: %.8f\n", o.Remaining)
		fmt.Printf("Status:    %s\n", o.Status)
		fmt.Printf("Placed:    %s\n", o.Datetime)
		return nil
	},
}

var ordersCancelCmd = &cobra.Command{
	Use:   "cancel <id>...",
	Short: "Cancel one or more orders",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		workers, _ := cmd.Flags().GetInt("workers")

		if !confirm(fmt.Sprintf("Cancel %d order(s)?", len(ids)), yes) {
			fmt.Println("aborted")
			return nil
		}

		api := apiClient(cmd)
		sess := session.New()
		runBulkMutation(sess, sess.Orders, "cancel_order", ids, workers, func(id uint64) error {
			return api.CancelOrder(cmd.Context(), id)
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.AddCommand(ordersListCmd)
	ordersCmd.AddCommand(ordersGetCmd)
	ordersCmd.AddCommand(ordersCancelCmd)

	ordersListCmd.Flags().String("symbol", "", "Filter by trading pair (e.g. BTC/USDT)")
	ordersListCmd.Flags().String("status", "", "Filter by order status")
	ordersListCmd.Flags().String("side", "", "Filter by side (buy/sell)")
	ordersListCmd.Flags().String("type", "", "Filter by order type (market/limit/stop_loss/take_profit)")

	ordersCancelCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	ordersCancelCmd.Flags().Int("workers", 1, "Concurrent cancel calls")
}
