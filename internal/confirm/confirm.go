package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrPassphraseRequired  = errors.New("passphrase is required")
	ErrIncorrectPassphrase = errors.New("incorrect passphrase")
)

// Gate asks the operator to retype a shared passphrase before import and
// delete operations. It is a confirmation step, not access control.
type Gate struct {
	passphrase string
}

func NewGate(passphrase string) Gate {
	return Gate{passphrase: passphrase}
}

func (g Gate) Check(input string) error {
	if input == "" {
		return ErrPassphraseRequired
	}
	if input != g.passphrase {
		return ErrIncorrectPassphrase
	}
	return nil
}

// Prompt writes a passphrase prompt for action and checks the line read from
// input.
func (g Gate) Prompt(input io.Reader, output io.Writer, action string) error {
	if input == nil {
		return fmt.Errorf("passphrase input is not available")
	}
	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "Enter passphrase to %s: ", action); err != nil {
		return fmt.Errorf("write passphrase prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read passphrase: %w", err)
	}
	return g.Check(strings.TrimRight(line, "\r\n"))
}
