package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"trading-etl-go/internal/reportclient"
)

// printReport writes the top symbols, the high-value count and the BUY/SELL
// split fetched from the reporting API.
func printReport(ctx context.Context, w io.Writer, client reportclient.ClientInterface, topN int) error {
	summary, err := client.GetSummary(ctx, topN)
	if err != nil {
		return err
	}
	high, err := client.GetHighValueTrades(ctx)
	if err != nil {
		return err
	}
	counts, err := client.GetTransactionCounts(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tTOTAL VALUE")
	for _, s := range summary {
		fmt.Fprintf(tw, "%s\t%.2f\n", s.StockSymbol, s.TotalValue)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nHigh-value trades: %d\n\n", len(high))

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tCOUNT\tSHARE")
	for _, c := range counts {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", c.TransactionType, c.Count, c.Share*100)
	}
	return tw.Flush()
}
