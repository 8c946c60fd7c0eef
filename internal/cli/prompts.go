package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/lumenwallet/lumen/internal/wallet"
	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

// Prompt function variables, swapped in tests.
//
//nolint:gochecknoglobals // test seam for interactive prompts
var (
	promptPhraseFn     = promptPhrase
	promptPassphraseFn = promptPassphrase
)

// promptHidden prompts with terminal echo disabled.
// The caller is responsible for zeroing the returned bytes after use.
func promptHidden(prompt string) ([]byte, error) {
	out(os.Stderr, "%s", prompt)

	input, err := term.ReadPassword(syscall.Stdin)
	outln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	return input, nil
}

// promptPhrase prompts for a recovery phrase with hidden input. When stdin
// is not a terminal the phrase is read as a plain line instead, so phrases
// can be piped in scripts.
func promptPhrase(prompt string) (string, error) {
	if !term.IsTerminal(syscall.Stdin) {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading phrase: %w", err)
		}
		return wallet.NormalizeMnemonicInput(line), nil
	}

	input, err := promptHidden(prompt)
	if err != nil {
		return "", err
	}

	phrase := wallet.NormalizeMnemonicInput(string(input))
	wallet.ZeroBytes(input)

	if phrase == "" {
		return "", lumenerr.WithSuggestion(
			lumenerr.ErrInvalidInput,
			"no recovery phrase entered",
		)
	}

	return phrase, nil
}

// promptPassphrase prompts for an optional BIP39 passphrase.
// The caller is responsible for zeroing the returned string's backing data if needed.
func promptPassphrase() (string, error) {
	outln(os.Stderr, "\nBIP39 Passphrase (optional extra security layer):")
	outln(os.Stderr, "WARNING: Backups made with a passphrase can only be opened with it!")

	passphrase, err := promptHidden("Enter passphrase (or press Enter for none): ")
	if err != nil {
		return "", err
	}

	if len(passphrase) == 0 {
		return "", nil
	}

	confirm, err := promptHidden("Confirm passphrase: ")
	if err != nil {
		wallet.ZeroBytes(passphrase)
		return "", err
	}
	defer wallet.ZeroBytes(confirm)

	if string(passphrase) != string(confirm) {
		wallet.ZeroBytes(passphrase)
		return "", lumenerr.WithSuggestion(
			lumenerr.ErrInvalidInput,
			"passphrases do not match",
		)
	}

	// Convert to string for the BIP39 API
	result := string(passphrase)
	wallet.ZeroBytes(passphrase)
	return result, nil
}

// promptConfirmation asks the user a yes/no question, defaulting to no.
func promptConfirmation(question string) bool {
	out(os.Stderr, "\n%s [y/N]: ", question)

	var response string
	_, err := fmt.Scanln(&response)
	if err != nil {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
