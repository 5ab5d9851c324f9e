package cmd

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

//go:embed guide.md
var guideText string

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Show the user guide",
	Long:  `Prints the full user guide, rendered for the terminal.`,
	RunE:  runGuide,
}

func init() {
	rootCmd.AddCommand(guideCmd)
}

const guideWrapWidth = 100

func runGuide(_ *cobra.Command, _ []string) error {
	if flagNoColor || os.Getenv("NO_COLOR") != "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Print(guideText)
		return nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(guideWrapWidth),
	)
	if err != nil {
		fmt.Print(guideText)
		return nil
	}

	rendered, err := r.Render(guideText)
	if err != nil {
		fmt.Print(guideText)
		return nil
	}

	fmt.Print(rendered)
	return nil
}
