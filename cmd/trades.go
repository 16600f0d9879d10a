package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/talkincode/qsadmin/pkg/qsapi"
)

var tradesCmd = &cobra.Command{
	Use:   "trades <symbol>",
	Short: "Show the public trade tape for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		trades, err := apiClient(cmd).GetTrades(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printTrades(trades)
		return nil
	},
}

var myTradesCmd = &cobra.Command{
	Use:   "mytrades",
	Short: "Show the calling account's own trade history",
	RunE: func(cmd *cobra.Command, args []string) error {
		trades, err := apiClient(cmd).GetMyTrades(cmd.Context())
		if err != nil {
			return err
		}
		printTrades(trades)
		return nil
	},
}

func printTrades(trades []qsapi.Trade) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tORDER\tSYMBOL\tSIDE\tPRICE\tAMOUNT\tCOST\tTIME\t")
	for _, t := range trades {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.8f\t%.8f\t%.8f\t%s\t\n",
			t.ID, t.OrderID, t.Symbol, t.Side, t.Price, t.Amount, t.Cost, t.Datetime)
	}
	w.Flush()
	fmt.Printf("%d trades\n", len(trades))
}

func init() {
	rootCmd.AddCommand(tradesCmd)
	rootCmd.AddCommand(myTradesCmd)
}
