package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskwatch/internal/output"
	"github.com/twiced-technology-gmbh/taskwatch/internal/task"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List completed tasks",
	Long:  `Lists tasks the watch daemon has fired and moved to the history store.`,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 0, "limit number of results")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	history, warnings, err := openStore(cfg).LoadHistory()
	if err != nil {
		return err
	}
	printWarnings(warnings)

	history = task.Sorted(history)
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && limit < len(history) {
		history = history[len(history)-limit:]
	}

	if len(history) == 0 && outputFormat() == output.FormatTable {
		output.Messagef(os.Stdout, "Task history is empty.")
		return nil
	}

	return outputTaskList("Completed Tasks", history)
}
