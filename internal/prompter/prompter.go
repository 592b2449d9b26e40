package prompter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the user yes/no questions.
type Prompter interface {
	Confirm(question string, def bool) (bool, error)
}

type TextPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *TextPrompter {
	return &TextPrompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Confirm returns def on an empty answer or when input ends without one.
func (p *TextPrompter) Confirm(q string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	if _, err := fmt.Fprintf(p.out, "%s %s: ", q, hint); err != nil {
		return false, err
	}

	resp, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && resp != "") {
		if errors.Is(err, io.EOF) {
			return def, nil
		}
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(resp)) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognized answer %q", strings.TrimSpace(resp))
	}
}

// AskPermission is the first-run question asking whether periodic checks
// may run at all.
func AskPermission(p Prompter, appName string) (bool, error) {
	if appName == "" {
		appName = "this application"
	}
	return p.Confirm(fmt.Sprintf("Should %s automatically check for updates?", appName), true)
}
