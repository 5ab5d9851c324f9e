package editor

import (
	"fmt"

	"github.com/twiced-technology-gmbh/taskwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/taskwatch/internal/passkey"
	"github.com/twiced-technology-gmbh/taskwatch/internal/task"
)

// changePasskey verifies the current passkey and stores a new one. Both
// halves allow passkeyAttempts tries; exhausting either aborts the
// session.
func (s *Session) changePasskey() error {
	authed := false
	for i := 0; i < passkeyAttempts; i++ {
		current, err := s.secret("Enter the current passkey: ")
		if err != nil {
			return err
		}
		ok, err := s.passkeys.Verify(current)
		if err != nil {
			return err
		}
		if ok {
			authed = true
			break
		}
		fmt.Fprintln(s.out, "Incorrect passkey! Try again.")
	}
	if !authed {
		s.notify("Passkey update failed! Try again later.")
		fmt.Fprintln(s.out, "Passkey update failed! Try again later.")
		return clierr.New(clierr.AuthFailed, "too many failed passkey attempts")
	}

	return s.promptNewPasskey()
}

// promptNewPasskey collects and stores a new passkey. Also used for the
// forced reset after a first login with the default passkey.
func (s *Session) promptNewPasskey() error {
	for i := 0; i < passkeyAttempts; i++ {
		entered, err := s.secret("Enter a new passkey: ")
		if err != nil {
			return err
		}
		if len(entered) < passkey.MinLength {
			fmt.Fprintf(s.out, "Invalid passkey. Passkey must be at least %d characters long.\n", passkey.MinLength)
			continue
		}

		if err := s.passkeys.Set(entered); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Passkey updated successfully!")
		s.notify("Passkey Updated successfully!")
		task.LogActivity(s.cfg.Dir(), "passkey", "", "passkey changed")
		return nil
	}

	s.notify("Invalid new passkey. Passkey Update failed!")
	fmt.Fprintln(s.out, "Passkey update failed! Try again later.")
	return clierr.New(clierr.InvalidInput, "no acceptable new passkey entered")
}
