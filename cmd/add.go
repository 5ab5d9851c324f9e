package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/taskwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/taskwatch/internal/config"
	"github.com/twiced-technology-gmbh/taskwatch/internal/notify"
	"github.com/twiced-technology-gmbh/taskwatch/internal/output"
	"github.com/twiced-technology-gmbh/taskwatch/internal/task"
	"github.com/twiced-technology-gmbh/taskwatch/internal/timefmt"
)

var addCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Schedule a task",
	Long: `Schedules a task without going through the interactive menu.

The time accepts "YYYY-MM-DD HH:MM" as well as date-only and time-only
forms; time-only input is anchored to today. Prefix the name with
"-e " or "--execute " to run it as a shell command when it fires.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringP("time", "t", "", "when the task is due (required)")
	addCmd.Flags().IntP("priority", "p", task.PriorityMedium, "priority (1 high, 2 medium, 3 low)")
	addCmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "datetime", "when":
			name = "time"
		case "prio":
			name = "priority"
		}
		return pflag.NormalizedName(name)
	})
	_ = addCmd.MarkFlagRequired("time")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name := args[0]
	if name == "" {
		return clierr.New(clierr.InvalidInput, "task name cannot be empty")
	}

	rawTime, _ := cmd.Flags().GetString("time")
	stamp, ok := timefmt.ParseFlexible(rawTime)
	if !ok || !timefmt.IsFutureAndValid(stamp.String()) {
		return clierr.Newf(clierr.InvalidTime,
			"invalid time %q; must be in the future and in YYYY-MM-DD HH:MM format", rawTime)
	}

	priority, _ := cmd.Flags().GetInt("priority")
	if !task.ValidPriority(priority) {
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

	t := &task.Task{Name: name, Time: stamp, Priority: priority}
	if err := store.Save(append(tasks, t)); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}

	logActivity(cfg, "add", name, "due "+stamp.String())
	notifyBestEffort(cfg, fmt.Sprintf("New Task Added!\nTask: %s\nTime: %s\nPriority Level: %d",
		name, stamp.String(), priority))

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}

	output.Messagef(os.Stdout, "Added task %q due %s (%s priority)",
		name, stamp.String(), task.PriorityLabel(priority))
	return nil
}

// notifyBestEffort sends a notification, surfacing delivery problems as
// a warning only.
func notifyBestEffort(cfg *config.Config, body string) {
	if err := newNotifier(cfg).Send(notify.Title, body); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: sending notification: %v\n", err)
	}
}
