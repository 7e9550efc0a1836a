package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// interactive reports whether the command reads from a real terminal.
func interactive(cmd *cobra.Command) bool {
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd())
}

func promptCredentials(email, password *string, title, emailLabel, passwordLabel string) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(emailLabel).
				Value(email).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("%s is required", emailLabel)
					}
					return nil
				}),
			huh.NewInput().
				Title(passwordLabel).
				EchoMode(huh.EchoModePassword).
				Value(password),
		).Title(title),
	)
	return form.Run()
}

// confirm asks a yes/no question. On a terminal it uses a huh confirm; on
// anything else it reads one line from in and accepts y or yes.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	if interactive(cmd) {
		var ok bool
		err := huh.NewConfirm().
			Title(question).
			Affirmative("Yes").
			Negative("No").
			Value(&ok).
			Run()
		return ok, err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", question)
	return readYes(cmd.InOrStdin())
}

func readYes(in io.Reader) (bool, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "j", "ja":
		return true, nil
	default:
		return false, nil
	}
}
