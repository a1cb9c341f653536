package apply

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
)

// Default is the answer assumed when the operator just presses enter.
type Default int

const (
	NoDefault Default = iota
	DefaultYes
	DefaultNo
)

// ParseDefault accepts "", "y", "yes", "n" and "no" in any case.
func ParseDefault(s string) (Default, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return NoDefault, nil
	case "y", "yes":
		return DefaultYes, nil
	case "n", "no":
		return DefaultNo, nil
	}
	return NoDefault, &PromptError{Default: s}
}

// Prompter asks the operator a yes/no question.
type Prompter interface {
	Ask(question string, def Default) (bool, error)
}

// Confirm validates def and asks the question.
func Confirm(p Prompter, question, def string) (bool, error) {
	d, err := ParseDefault(def)
	if err != nil {
		return false, err
	}
	return p.Ask(question, d)
}

// HuhPrompter asks on an interactive terminal.
type HuhPrompter struct {
	// Accessible switches to huh's plain line-based mode.
	Accessible bool
}

func (p HuhPrompter) Ask(question string, def Default) (bool, error) {
	answer := def == DefaultYes
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(question).
			Affirmative("Yes").
			Negative("No").
			Value(&answer),
	)).WithAccessible(p.Accessible)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}
	return answer, nil
}

// LinePrompter asks on plain streams, for pipes and serial consoles where
// a terminal UI cannot run.
type LinePrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p LinePrompter) Ask(question string, def Default) (bool, error) {
	suffix := " [y/n] "
	switch def {
	case DefaultYes:
		suffix = " [Y/n] "
	case DefaultNo:
		suffix = " [y/N] "
	}

	scanner := bufio.NewScanner(p.In)
	for {
		fmt.Fprint(p.Out, question+suffix)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return false, err
			}
			return false, fmt.Errorf("no answer: %w", io.ErrUnexpectedEOF)
		}

		choice := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch {
		case choice == "" && def == DefaultYes:
			return true, nil
		case choice == "" && def == DefaultNo:
			return false, nil
		case choice == "":
			continue
		case choice[0] == 'y':
			return true, nil
		case choice[0] == 'n':
			return false, nil
		}
		fmt.Fprintln(p.Out, "Answer must be either y or n.")
	}
}
