// Package prompter reads interactive answers for the cardfeed CLI.
package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// PromptString prompts for a line of input
func PromptString(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	return readLine(in)
}

// PromptPassword prompts for a password. Input from a terminal is read
// without echo; piped input is read as a plain line.
func PromptPassword(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytepw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out) // New line after password input
		if err != nil {
			return "", err
		}
		return string(bytepw), nil
	}
	return readLine(in)
}

// PromptConfirm prompts for a yes/no answer
func PromptConfirm(in io.Reader, out io.Writer, label string) (bool, error) {
	answer, err := PromptString(in, out, label+" (y/n) ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

func readLine(in io.Reader) (string, error) {
	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
