package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/kalshibot/internal/domain"
)

// Console implements ports.Notifier on stdout. Default output is a single
// compact line per cycle; table mode prints the full opportunity table.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole creates a notifier writing to stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter creates a notifier for tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify prints the cycle report.
func (c *Console) Notify(_ context.Context, r domain.CycleReport) error {
	if c.table {
		c.printTable(r)
	} else {
		c.printCompact(r)
	}

	for _, alert := range r.Alerts {
		fmt.Fprintf(c.out, "  !! %s\n", alert)
	}
	return nil
}

// printCompact prints the essentials in one line.
func (c *Console) printCompact(r domain.CycleReport) {
	now := time.Now().Format("15:04:05")

	mode := "live"
	if r.PaperTrading {
		mode = "paper"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s: %d mkts, %d opps, %d pairs placed, %d fills",
		now, mode, r.ScannedMarkets, len(r.Opportunities), r.PairsPlaced, r.NewFills)
	fmt.Fprintf(&sb, " | bal $%.2f pnl $%.2f exp $%.2f",
		float64(r.BalanceCents)/100, float64(r.DailyPnL)/100, float64(r.NetExposure)/100)
	if len(r.Blocked) > 0 {
		fmt.Fprintf(&sb, " | blocked:%d", len(r.Blocked))
	}
	fmt.Fprintf(&sb, " (%.1fs)", r.Duration.Seconds())

	fmt.Fprintln(c.out, sb.String())
}

// printTable prints the full opportunity table plus the cycle counters.
func (c *Console) printTable(r domain.CycleReport) {
	c.printCompact(r)

	if len(r.Opportunities) > 0 {
		table := tablewriter.NewWriter(c.out)
		table.Header("#", "Market", "Side", "Buy", "Sell", "Hedge", "Spread", "Fees", "Net", "Net%")

		for i, opp := range r.Opportunities {
			table.Append(
				fmt.Sprintf("%d", i+1),
				truncate(opp.Market.Title, 36),
				string(opp.Side),
				fmt.Sprintf("%dc", opp.BuyPrice),
				fmt.Sprintf("%dc", opp.SellPrice),
				fmt.Sprintf("%dc", opp.HedgePrice()),
				fmt.Sprintf("%dc", opp.Spread),
				fmt.Sprintf("%dc", opp.FeeTotal),
				fmt.Sprintf("%dc", opp.NetProfit),
				fmt.Sprintf("%.2f%%", opp.ProfitPct()),
			)
		}
		table.Render()
	}

	for _, reason := range r.Blocked {
		fmt.Fprintf(c.out, "  blocked: %s\n", reason)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
