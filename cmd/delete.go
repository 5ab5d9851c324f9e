package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/taskwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/taskwatch/internal/output"
	"github.com/twiced-technology-gmbh/taskwatch/internal/task"
)

var deleteCmd = &cobra.Command{
	Use:     "delete REF",
	Aliases: []string{"rm"},
	Short:   "Delete a pending task",
	Long: `Deletes a pending task referenced by its list position or exact name.
A name reference removes every task carrying that name. Prompts for
confirmation in interactive mode.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
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
	name := tasks[indexes[0]].Name

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		confirmed, err := confirmOnTerminal(fmt.Sprintf("Delete %d task(s) named %q? [y/N] ", len(indexes), name))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(os.Stderr, "Canceled.")
			return nil
		}
	}

	toDelete := make(map[int]struct{}, len(indexes))
	for _, i := range indexes {
		toDelete[i] = struct{}{}
	}
	kept := tasks[:0]
	for i, t := range tasks {
		if _, gone := toDelete[i]; !gone {
			kept = append(kept, t)
		}
	}

	if err := store.Save(kept); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}

	logActivity(cfg, "delete", name, "")
	notifyBestEffort(cfg, fmt.Sprintf("Task: '%s' deleted!", name))

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"status":  "deleted",
			"name":    name,
			"deleted": len(indexes),
		})
	}

	output.Messagef(os.Stdout, "Deleted %d task(s) named %q", len(indexes), name)
	return nil
}

// confirmOnTerminal asks a yes/no question on stderr. Refuses when
// stdin is not a terminal so scripts fail loudly instead of hanging.
func confirmOnTerminal(prompt string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, clierr.New(clierr.ConfirmationReq,
			"cannot prompt for confirmation (not a terminal); use --yes")
	}

	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}
