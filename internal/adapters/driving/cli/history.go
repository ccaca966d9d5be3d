package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent analysis runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "maximum number of runs to show (default 20)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}
	if historyService == nil {
		return errors.New("history is not configured; set [storage] backend in the config file")
	}

	records, err := historyService.Recent(context.Background(), historyLimit)
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No recorded runs.")
		return nil
	}

	for _, rec := range records {
		cmd.Printf("%s  %-8s  %-30q  %d comments (%d bots), %d videos\n",
			rec.CreatedAt.Format("2006-01-02 15:04"), rec.Type, rec.Query,
			rec.TotalComments, rec.BotComments, rec.VideosAnalyzed)
	}
	return nil
}
