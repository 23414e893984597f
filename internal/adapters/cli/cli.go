// Package cli renders the console in a terminal: a one-shot orders table,
// order detail, status transitions, and the dashboard report series.
package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"bookstore-console/internal/app"
	"bookstore-console/internal/core"
)

// Run executes a one-shot console command and exits.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, console *app.Console, args []string) {
	if len(args) == 0 {
		args = []string{"orders"}
	}

	switch args[0] {
	case "orders", "o":
		if err := console.RefreshOrders(ctx); err != nil {
			log.Fatalf("Failed to load orders: %v", err)
		}
		var filter core.Status
		if len(args) > 1 {
			parsed, err := core.ParseStatus(args[1])
			if err != nil {
				log.Fatalf("%v", err)
			}
			filter = parsed
		}
		printOrders(app.Rows(console.Snapshot(), filter))

	case "order":
		if len(args) < 2 {
			log.Fatal("Usage: console order <id>")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("Order id must be an integer, got %q", args[1])
		}
		if err := console.RefreshOrders(ctx); err != nil {
			log.Fatalf("Failed to load orders: %v", err)
		}
		if err := console.SelectOrder(id); err != nil {
			log.Fatalf("%v", err)
		}
		order, _ := console.SelectedOrder()
		printOrderDetail(app.BuildOrderDetail(*order))

	case "set-status", "s":
		if len(args) < 3 {
			log.Fatal("Usage: console set-status <id> <status>")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("Order id must be an integer, got %q", args[1])
		}
		to, err := core.ParseStatus(args[2])
		if err != nil {
			log.Fatalf("%v", err)
		}
		if err := console.RefreshOrders(ctx); err != nil {
			log.Fatalf("Failed to load orders: %v", err)
		}
		updated, err := console.RequestTransition(ctx, id, to)
		if err != nil {
			for _, n := range console.Notifications() {
				fmt.Fprintln(os.Stderr, n.Message)
			}
			os.Exit(1)
		}
		fmt.Printf("%s is now %s.\n", updated.DisplayID(), updated.Status)

	case "reports", "r":
		if err := console.RefreshReports(ctx); err != nil {
			log.Fatalf("Failed to load reports: %v", err)
		}
		for _, kind := range core.ReportKinds() {
			printSeries(kind, console.Report(kind))
		}
		snap := console.Snapshot()
		fmt.Printf("Last updated: %s\n", core.TimeAgo(snap.UpdatedAt, time.Now()))

	default:
		log.Fatalf("Unknown command: %s\nAvailable: orders [status], order <id>, set-status <id> <status>, reports", args[0])
	}
}

func printOrders(rows []app.OrderRow) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 96))
	fmt.Printf("  %-14s %-26s %12s %5s %15s %-14s %s\n",
		"ORDER", "PRODUCT", "PRICE", "QTY", "TOTAL", "CUSTOMER", "STATUS")
	fmt.Println(strings.Repeat("-", 96))
	for _, row := range rows {
		fmt.Printf("  %-14s %-26s %12s %5d %15s %-14s %s\n",
			row.DisplayID, truncate(row.ProductTitle, 26), row.UnitPrice,
			row.Quantity, row.TotalAmount, truncate(row.CustomerName, 14), row.Status)
	}
	fmt.Println(strings.Repeat("=", 96))
	fmt.Printf("  %d orders\n\n", len(rows))
}

func printOrderDetail(d app.OrderDetail) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  Order    : %s\n", d.DisplayID)
	fmt.Printf("  Status   : %s\n", d.Status)
	fmt.Printf("  Customer : %s\n", d.CustomerName)
	fmt.Printf("  Address  : %s\n", d.CustomerAddress)
	fmt.Printf("  Mobile   : %s\n", d.CustomerMobile)
	fmt.Printf("  Created  : %s (%s)\n", d.CreatedAt.Format("2006-01-02 15:04"), core.TimeAgo(d.CreatedAt, time.Now()))
	fmt.Println(strings.Repeat("-", 62))
	for _, it := range d.Items {
		fmt.Printf("  %-34s %5d × %s\n", truncate(it.ProductTitle, 34), it.Quantity, core.FormatLKR(it.UnitPrice))
	}
	fmt.Println(strings.Repeat("-", 62))
	fmt.Printf("  Total    : %s\n", d.TotalAmount)
	if len(d.AllowedMoves) > 0 {
		moves := make([]string, len(d.AllowedMoves))
		for i, m := range d.AllowedMoves {
			moves[i] = string(m)
		}
		fmt.Printf("  Next     : %s\n", strings.Join(moves, ", "))
	}
	fmt.Println(strings.Repeat("=", 62))
	fmt.Println()
}

func printSeries(kind core.ReportKind, series *core.ReportSeries) {
	fmt.Println()
	fmt.Printf("  %s\n", strings.ToUpper(string(kind)))
	fmt.Println(strings.Repeat("-", 48))
	if series == nil {
		fmt.Println("  (no data)")
		return
	}
	for _, ds := range series.Datasets {
		fmt.Printf("  [%s]\n", ds.Label)
		for i, label := range series.Labels {
			if i >= len(ds.Values) {
				break
			}
			fmt.Printf("    %-30s %12s\n", truncate(label, 30), ds.Values[i].String())
		}
	}
	fmt.Println()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
