package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskwatch/internal/output"
	"github.com/twiced-technology-gmbh/taskwatch/internal/task"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List pending tasks",
	Long: `Lists pending tasks sorted by due time. List positions shown here are
what delete and update accept as references.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().IntP("limit", "n", 0, "limit number of results")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tasks, warnings, err := openStore(cfg).Load()
	if err != nil {
		return err
	}
	printWarnings(warnings)

	task.Sort(tasks)
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && limit < len(tasks) {
		tasks = tasks[:limit]
	}

	return outputTaskList("Current Tasks", tasks)
}

// outputTaskList renders tasks in the detected format.
func outputTaskList(title string, tasks []*task.Task) error {
	format := outputFormat()
	if format == output.FormatJSON {
		if tasks == nil {
			tasks = []*task.Task{}
		}
		return output.JSON(os.Stdout, tasks)
	}
	if format == output.FormatCompact {
		output.TaskCompact(os.Stdout, tasks)
		return nil
	}

	if len(tasks) == 0 {
		output.Messagef(os.Stdout, "No tasks available.")
		return nil
	}
	output.TaskTable(os.Stdout, title, tasks)
	return nil
}
