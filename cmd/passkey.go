package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/taskwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/taskwatch/internal/output"
	"github.com/twiced-technology-gmbh/taskwatch/internal/passkey"
)

var passkeyCmd = &cobra.Command{
	Use:   "passkey",
	Short: "Show or change the passkey",
	Long: `Shows whether a custom passkey protects the interactive menu.
Use 'passkey set' to change it; the current passkey is required first.`,
	RunE: runPasskeyShow,
}

var passkeySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the passkey",
	RunE:  runPasskeySet,
}

func init() {
	passkeyCmd.AddCommand(passkeySetCmd)
	rootCmd.AddCommand(passkeyCmd)
}

func runPasskeyShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	keys := passkey.NewStore(cfg.Dir())

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"custom_passkey": keys.Exists()})
	}

	if keys.Exists() {
		output.Messagef(os.Stdout, "A custom passkey is set.")
	} else {
		output.Messagef(os.Stdout, "No passkey set; the default %q is active. Run 'taskwatch passkey set'.",
			passkey.DefaultSecret)
	}
	return nil
}

func runPasskeySet(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	keys := passkey.NewStore(cfg.Dir())
	in := bufio.NewReader(os.Stdin)

	current, err := promptSecret(in, "Enter the current passkey: ")
	if err != nil {
		return err
	}
	ok, err := keys.Verify(current)
	if err != nil {
		return err
	}
	if !ok {
		return clierr.New(clierr.AuthFailed, "incorrect passkey")
	}

	entered, err := promptSecret(in, "Enter a new passkey: ")
	if err != nil {
		return err
	}
	confirm, err := promptSecret(in, "Confirm the new passkey: ")
	if err != nil {
		return err
	}
	if entered != confirm {
		return clierr.New(clierr.InvalidInput, "passkeys do not match")
	}

	if err := keys.Set(entered); err != nil {
		return err
	}

	logActivity(cfg, "passkey", "", "passkey changed")
	notifyBestEffort(cfg, "Passkey Updated successfully!")

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{"status": "updated"})
	}

	output.Messagef(os.Stdout, "Passkey updated successfully!")
	return nil
}

// promptSecret reads a secret without echo on a terminal, or as a
// plain line from in when input is piped.
func promptSecret(in *bufio.Reader, prompt string) (string, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return readSecret(prompt)
	}

	fmt.Fprint(os.Stderr, prompt)
	line, err := in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("reading passkey: %w", err)
	}
	return strings.TrimSpace(line), nil
}
