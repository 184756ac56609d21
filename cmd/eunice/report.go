package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eunice-ai/eunice/config"
	"github.com/eunice-ai/eunice/ledger"
)

var (
	reportDays    int
	reportSession string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize persisted usage from the ledger",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVar(&reportDays, "days", 7, "How many days to roll up")
	reportCmd.Flags().StringVar(&reportSession, "session", "", "Limit the report to one session")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.LedgerPath == "" {
		return fmt.Errorf("no ledger_path configured; nothing to report")
	}

	l, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return err
	}
	defer l.Close()

	ctx := cmd.Context()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if reportSession != "" {
		total, err := l.SessionTotal(ctx, reportSession)
		if err != nil {
			return err
		}
		records, err := l.Session(ctx, reportSession)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "TASK\tTOKENS\tCOST\n")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%d\t$%.4f\n", r.TaskID, r.TokensUsed, r.CostUSD)
		}
		fmt.Fprintf(w, "total\t%d\t$%.4f\n", total.Tokens, total.CostUSD)
		return nil
	}

	days, err := l.DailyTotals(ctx, reportDays)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "DATE\tTASKS\tTOKENS\tCOST\n")
	for _, d := range days {
		fmt.Fprintf(w, "%s\t%d\t%d\t$%.4f\n", d.Date, d.Tasks, d.Tokens, d.CostUSD)
	}
	return nil
}
