package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/taskwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/taskwatch/internal/output"
	"github.com/twiced-technology-gmbh/taskwatch/internal/task"
	"github.com/twiced-technology-gmbh/taskwatch/internal/timefmt"
)

var updateCmd = &cobra.Command{
	Use:   "update REF",
	Short: "Update a pending task",
	Long: `Updates a pending task referenced by its list position or exact name.
Only the fields given as flags change; a name reference must match
exactly one task.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().String("name", "", "new task name")
	updateCmd.Flags().StringP("time", "t", "", "new due time")
	updateCmd.Flags().IntP("priority", "p", 0, "new priority (1 high, 2 medium, 3 low)")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	newName, _ := cmd.Flags().GetString("name")
	rawTime, _ := cmd.Flags().GetString("time")
	priority, _ := cmd.Flags().GetInt("priority")

	if newName == "" && rawTime == "" && !cmd.Flags().Changed("priority") {
		return clierr.New(clierr.NoChanges, "nothing to update; provide --name, --time, or --priority")
	}

	var stamp timefmt.Stamp
	if rawTime != "" {
		var ok bool
		stamp, ok = timefmt.ParseFlexible(rawTime)
		if !ok || !timefmt.IsFutureAndValid(stamp.String()) {
			return clierr.Newf(clierr.InvalidTime,
				"invalid time %q; must be in the future and in YYYY-MM-DD HH:MM format", rawTime)
		}
	}
	if cmd.Flags().Changed("priority") && !task.ValidPriority(priority) {
		return clierr.Newf(clierr.InvalidPriority,
			"invalid priority %d; choose 1 for High, 2 for Medium, or 3 for Low", priority)
	}

	store := openStore(cfg)
	unlock, err := store.Lock()
	if err != nil {
		return fmt.Errorf("acquiring store lock: %w", err)
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit

	tasks, warnings, err := store.Load()
	if err != nil {
		return err
	}
	printWarnings(warnings)
	task.Sort(tasks)

	indexes, err := resolveTaskRef(tasks, args[0])
	if err != nil {
		return err
	}
	if len(indexes) > 1 {
		return clierr.Newf(clierr.InvalidInput,
			"%d tasks named %q; update by list position instead", len(indexes), args[0])
	}

	t := tasks[indexes[0]]
	origName := t.Name
	if newName != "" {
		t.Name = newName
	}
	if rawTime != "" {
		t.Time = stamp
	}
	if cmd.Flags().Changed("priority") {
		t.Priority = priority
	}

	if err := store.Save(tasks); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}

	logActivity(cfg, "update", origName, "")
	notifyBestEffort(cfg, fmt.Sprintf("Task: %s updated!", origName))

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}

	output.Messagef(os.Stdout, "Updated task %q", origName)
	return nil
}
