package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "List tradable instruments",
	RunE: func(cmd *cobra.Command, args []string) error {
		markets, err := apiClient(cmd).GetMarkets(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "SYMBOL\tBASE\tQUOTE\tACTIVE\t")
		for _, m := range markets {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t\n", m.Symbol, m.Base, m.Quote, m.Active)
		}
		w.Flush()
		return nil
	},
}

var tickerCmd = &cobra.Command{
	Use:   "ticker <symbol>",
	Short: "Show the current quote for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker, err := apiClient(cmd).GetTicker(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Symbol:  %s\n", ticker.Symbol)
		fmt.Printf("Last:    %s\n", fmtPrice(ticker.Last))
		fmt.Printf("Bid:     %s\n", fmtPrice(ticker.Bid))
		fmt.Printf("Ask:     %s\n", fmtPrice(ticker.Ask))
		fmt.Printf("High:    %s\n", fmtPrice(ticker.High))
		fmt.Printf("Low:     %s\n", fmtPrice(ticker.Low))
		fmt.Printf("Volume:  %s\n", fmtPrice(ticker.BaseVolume))
		if ticker.Timestamp > 0 {
			fmt.Printf("Updated: %s\n", time.UnixMilli(ticker.Timestamp).Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

// fmtPrice distinguishes "no price available" from an actual zero price.
func fmtPrice(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.8f", *v)
}

func init() {
	rootCmd.AddCommand(marketsCmd)
	rootCmd.AddCommand(tickerCmd)
}
