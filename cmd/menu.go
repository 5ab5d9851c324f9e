package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/taskwatch/internal/editor"
	"github.com/twiced-technology-gmbh/taskwatch/internal/passkey"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Open the interactive task menu",
	Long: `Opens the passkey-gated menu for adding, updating, deleting, and
reviewing tasks. This is also what running taskwatch with no arguments
does.`,
	RunE: runMenu,
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

func runMenu(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	keys := passkey.NewStore(cfg.Dir())
	if !keys.Exists() {
		fmt.Fprintf(os.Stderr, "Default passkey is %q. You will be asked to choose your own.\n", passkey.DefaultSecret)
	}

	// Ctrl-C at any prompt leaves with status 0, like choosing Exit.
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)
	go func() {
		<-interrupt
		fmt.Fprintln(os.Stdout, "\nExiting program....")
		os.Exit(0)
	}()

	sess := editor.New(cfg, openStore(cfg), keys, newNotifier(cfg), os.Stdin, os.Stdout)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		// No-echo passkey reads on a real terminal. Piped input keeps
		// the session's plain line reads so scripts stay predictable.
		sess.SetSecretReader(readSecret)
	}

	return sess.Run()
}
