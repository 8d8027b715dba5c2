package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/xeitosa/socialai/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent generations",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var (
	flagHistoryLimit int
	flagHistoryFull  bool
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of records to show")
	historyCmd.Flags().BoolVar(&flagHistoryFull, "full", false, "Print the full generated text")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.History.Recent(cmd.Context(), flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No generations recorded.")
		return nil
	}

	if flagHistoryFull {
		for _, r := range records {
			fmt.Fprintf(cmd.OutOrStdout(), "── %s  %s  %s\n", r.CreatedAt.Local().Format(time.DateTime), r.ArtistID, r.Model)
			if r.Failed() {
				fmt.Fprintf(cmd.OutOrStdout(), "error: %s\n\n", r.Error)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", r.Text)
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tARTIST\tSTATUS\tPREVIEW")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.CreatedAt.Local().Format(time.DateTime), r.ArtistID, status(r), preview(r))
	}
	return w.Flush()
}

func status(r history.Record) string {
	if r.Failed() {
		return "failed"
	}
	return "ok"
}

func preview(r history.Record) string {
	s := r.Text
	if r.Failed() {
		s = r.Error
	}
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) > 60 {
		s = string([]rune(s)[:57]) + "..."
	}
	return s
}
