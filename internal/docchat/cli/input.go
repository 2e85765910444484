package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter reads answers from the user. Passwords skip echo when stdin is a
// terminal and are read as a plain line otherwise, so scripts can pipe them.
type prompter struct {
	in  *bufio.Reader
	out io.Writer

	// readPassword is a test seam for term.ReadPassword.
	readPassword func(fd int) ([]byte, error)
	isTerminal   func(fd int) bool
	fd           int
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{
		in:           bufio.NewReader(in),
		out:          out,
		readPassword: term.ReadPassword,
		isTerminal:   term.IsTerminal,
		fd:           -1,
	}
	if f, ok := in.(*os.File); ok {
		p.fd = int(f.Fd())
	}
	return p
}

func (p *prompter) line(prompt string) (string, error) {
	if _, err := fmt.Fprintf(p.out, "%s: ", prompt); err != nil {
		return "", err
	}
	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func (p *prompter) password(prompt string) (string, error) {
	if p.fd < 0 || !p.isTerminal(p.fd) {
		return p.line(prompt)
	}

	if _, err := fmt.Fprintf(p.out, "%s: ", prompt); err != nil {
		return "", err
	}
	pw, err := p.readPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// valueOr returns v when set and prompts for it otherwise.
func (p *prompter) valueOr(v, prompt string) (string, error) {
	if v != "" {
		return v, nil
	}
	return p.line(prompt)
}
