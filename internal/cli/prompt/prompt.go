// Package prompt asks the user for input on the terminal.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when input is needed but stdin is not a terminal
var ErrNotInteractive = errors.New("input required but stdin is not a terminal")

// Prompter collects interactive input
type Prompter interface {
	Password(label string) (string, error)
	Confirm(label string) (bool, error)
	Select(label string, items []string) (string, error)
}

// Terminal prompts on the process terminal
type Terminal struct{}

// Password reads a secret without echo
func (Terminal) Password(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNotInteractive
	}

	fmt.Fprintf(os.Stderr, "%s: ", label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// Confirm asks a yes/no question. Anything but y/yes is a no.
func (Terminal) Confirm(label string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, ErrNotInteractive
	}

	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	answer, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// Select lets the user pick one item from a list
func (Terminal) Select(label string, items []string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", ErrNotInteractive
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ . | cyan }}",
		Inactive: "  {{ . }}",
		Selected: "{{ . | green }}",
	}

	p := promptui.Select{
		Label:     label,
		Items:     items,
		Templates: templates,
		Size:      10,
	}

	_, choice, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return choice, nil
}
