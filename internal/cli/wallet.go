package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lumenwallet/lumen/internal/output"
	"github.com/lumenwallet/lumen/internal/wallet"
	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

// out is a helper for CLI output that ignores write errors (standard pattern for CLI tools).
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func out(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
}

// outln is a helper for CLI output with newline.
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func outln(w io.Writer, args ...interface{}) {
	fmt.Fprintln(w, args...)
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// phraseWords is the number of words for phrase generation.
	phraseWords int
)

// walletCmd is the parent command for wallet operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage recovery phrases",
	Long:  `Generate and check the BIP39 recovery phrases that secure your backups.`,
}

// walletPhraseCmd groups recovery phrase operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletPhraseCmd = &cobra.Command{
	Use:   "phrase",
	Short: "Work with recovery phrases",
	Long: `Generate a new BIP39 recovery phrase or check an existing one for typos.

Lumen never stores a recovery phrase. The phrase deterministically derives
the key that encrypts your backups, so the same phrase opens them on any
machine.`,
}

// walletPhraseNewCmd generates a new recovery phrase.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletPhraseNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new recovery phrase",
	Long: `Generate a new BIP39 recovery phrase.

The phrase is displayed once - write it down and store it securely. Anyone
holding the phrase can decrypt your backups.`,
	Example: `  lumen wallet phrase new
  lumen wallet phrase new --words 24`,
	RunE: runWalletPhraseNew,
}

// walletPhraseCheckCmd checks a recovery phrase for typos.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletPhraseCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check a recovery phrase for typos",
	Long: `Check a BIP39 recovery phrase for typos and checksum validity.

The phrase is read with hidden input and never written anywhere. Words not
in the BIP39 word list are reported together with the closest match.`,
	Example: `  lumen wallet phrase check
  lumen wallet phrase check -o json`,
	RunE: runWalletPhraseCheck,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	walletCmd.GroupID = groupWallet
	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(walletPhraseCmd)
	walletPhraseCmd.AddCommand(walletPhraseNewCmd)
	walletPhraseCmd.AddCommand(walletPhraseCheckCmd)

	walletPhraseNewCmd.Flags().IntVar(&phraseWords, "words", 12, "phrase word count (12 or 24)")
}

func runWalletPhraseNew(cmd *cobra.Command, _ []string) error {
	if phraseWords != 12 && phraseWords != 24 {
		return lumenerr.WithSuggestion(
			lumenerr.ErrInvalidInput,
			"word count must be 12 or 24",
		)
	}

	mnemonic, err := wallet.GenerateMnemonic(phraseWords)
	if err != nil {
		return err
	}

	displayPhrase(mnemonic, cmd)

	w := cmd.OutOrStdout()
	outln(w, "Keep this phrase offline. Lumen does not store it.")
	outln(w, "Unlock a session with: lumen unlock <wallet>")

	return nil
}

func runWalletPhraseCheck(cmd *cobra.Command, _ []string) error {
	phrase, err := promptPhraseFn("Enter recovery phrase: ")
	if err != nil {
		return err
	}

	words := strings.Fields(phrase)
	typos := wallet.DetectTypos(phrase)
	validErr := wallet.ValidateMnemonic(phrase)

	w := cmd.OutOrStdout()
	if formatter.Format() == output.FormatJSON {
		if err := writeJSON(w, newPhraseCheckResponse(len(words), typos, validErr)); err != nil {
			return err
		}
	} else {
		displayPhraseCheckText(w, len(words), typos, validErr)
	}

	if validErr != nil {
		return lumenerr.WithSuggestion(
			validErr,
			"the phrase is not a valid BIP39 mnemonic. Check for typos or missing words.",
		)
	}

	return nil
}

// phraseCheckResponse is the JSON shape for phrase check results.
type phraseCheckResponse struct {
	Valid bool             `json:"valid"`
	Words int              `json:"words"`
	Typos []phraseTypoJSON `json:"typos,omitempty"`
}

type phraseTypoJSON struct {
	Position   int    `json:"position"`
	Word       string `json:"word"`
	Suggestion string `json:"suggestion,omitempty"`
}

func newPhraseCheckResponse(wordCount int, typos []wallet.TypoInfo, validErr error) phraseCheckResponse {
	resp := phraseCheckResponse{
		Valid: validErr == nil,
		Words: wordCount,
	}
	for _, typo := range typos {
		resp.Typos = append(resp.Typos, phraseTypoJSON{
			// Word position is 1-indexed for human readability
			Position:   typo.Index + 1,
			Word:       typo.Word,
			Suggestion: typo.Suggestion,
		})
	}
	return resp
}

// displayPhraseCheckText prints the phrase check verdict and any typos.
func displayPhraseCheckText(w io.Writer, wordCount int, typos []wallet.TypoInfo, validErr error) {
	if len(typos) > 0 {
		outln(w, "Possible typos detected:")
		outln(w, wallet.FormatTypoSuggestions(typos))
		outln(w)
	}

	if validErr == nil {
		out(w, "Phrase OK: %d words, checksum valid.\n", wordCount)
	} else {
		out(w, "Phrase invalid: %d words.\n", wordCount)
	}
}

// displayPhrase shows the recovery phrase with formatting.
func displayPhrase(mnemonic string, cmd *cobra.Command) {
	w := cmd.OutOrStdout()
	outln(w)
	outln(w, "═══════════════════════════════════════════════════════════════")
	outln(w, "                    RECOVERY PHRASE")
	outln(w, "═══════════════════════════════════════════════════════════════")
	outln(w)
	outln(w, "Write down these words in order and store them securely.")
	outln(w, "This is the ONLY way to open your encrypted backups.")
	outln(w)

	words := strings.Fields(mnemonic)
	for i, word := range words {
		out(w, "%2d. %s\n", i+1, word)
	}

	outln(w)
	outln(w, "═══════════════════════════════════════════════════════════════")
	outln(w)
}
