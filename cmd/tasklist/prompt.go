package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// Prompter asks the user questions.
type Prompter interface {
	// Confirm asks a yes/no question; anything but an explicit yes is no.
	Confirm(question string) (bool, error)
	// Input asks for a line of text. Secret input is not echoed.
	Input(question string, secret bool) (string, error)
}

// newPrompter uses interactive forms on a terminal and plain line reads
// otherwise, so piped input and closed stdin behave predictably.
func newPrompter(in io.Reader, out io.Writer) Prompter {
	if in == nil {
		in = strings.NewReader("")
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return huhPrompter{}
	}
	return &linePrompter{in: bufio.NewReader(in), out: out}
}

type huhPrompter struct{}

func (huhPrompter) Confirm(question string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return ok, nil
}

func (huhPrompter) Input(question string, secret bool) (string, error) {
	var value string
	input := huh.NewInput().Title(question).Value(&value)
	if secret {
		input = input.EchoMode(huh.EchoModePassword)
	}
	if err := input.Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return strings.TrimSpace(value), nil
}

type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *linePrompter) Confirm(question string) (bool, error) {
	answer, err := p.Input(question+" (y/N)", false)
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// Input returns "" at end of input.
func (p *linePrompter) Input(question string, _ bool) (string, error) {
	_, _ = fmt.Fprintf(p.out, "%s: ", question)
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
