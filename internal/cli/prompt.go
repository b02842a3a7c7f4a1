package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalConfirmer prompts on the terminal for batch collision approval.
// It implements orchestrator.Confirmer.
type TerminalConfirmer struct{}

// ConfirmOverwrite asks the user whether colliding destinations may be
// overwritten. Anything but an explicit yes declines the batch.
func (TerminalConfirmer) ConfirmOverwrite(names []string) bool {
	fmt.Printf("\nThe following destinations already exist:\n")
	for _, n := range names {
		fmt.Printf("  %s\n", n)
	}
	fmt.Print("Overwrite and continue? [y/N]: ")

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// readPassphrase reads a passphrase without echoing when stdin is a
// terminal, falling back to a plain line read otherwise.
func readPassphrase(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		defer fmt.Println()
		secret, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("failed to read passphrase: %w", err)
		}
		return string(secret), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	return strings.TrimSpace(line), nil
}
