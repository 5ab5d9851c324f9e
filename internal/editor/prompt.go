package editor

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/taskwatch/internal/clierr"
)

// promptLine prints prompt and reads one trimmed input line.
func (s *Session) promptLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)

	line, err := s.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			// Final line without a trailing newline still counts.
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question. defaultYes decides what a bare Enter
// means; any answer other than y counts as no.
func (s *Session) confirm(prompt string, defaultYes bool) (bool, error) {
	answer, err := s.promptLine(prompt)
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	if answer == "" {
		return defaultYes, nil
	}
	return answer == "y", nil
}

// chooseOption reads menu selections until one names a listed option.
// Returns 0 when the attempts are used up, so the caller redisplays
// the menu.
func (s *Session) chooseOption() (int, error) {
	for i := 0; i < menuAttempts; i++ {
		option, err := s.promptOption()
		if err != nil {
			return 0, err
		}
		if option >= optionAdd && option <= optionHistory {
			return option, nil
		}
		fmt.Fprintln(s.out, "Invalid option. Please choose a valid option.")
	}
	return 0, nil
}

// promptOption reads until the user types a number.
func (s *Session) promptOption() (int, error) {
	for i := 0; i < optionAttempts; i++ {
		line, err := s.promptLine("\nSelect Option: ")
		if err != nil {
			return 0, err
		}
		if n, convErr := strconv.Atoi(line); convErr == nil {
			return n, nil
		}
		fmt.Fprintln(s.out, "Invalid Option, Try again")
	}
	return 0, clierr.New(clierr.InvalidInput, "no valid selection entered")
}
