// Package wallet provides recovery phrase handling and backup key
// derivation: BIP39 mnemonic generation, validation with typo suggestions,
// and the hardened BIP32 key that encrypts backup archives.
package wallet

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/tyler-smith/go-bip39"

	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

// ErrInvalidWordCount rejects phrase lengths other than 12 or 24 words.
var ErrInvalidWordCount = &lumenerr.LumenError{
	Code:     "INVALID_WORD_COUNT",
	Message:  "word count must be 12 or 24",
	ExitCode: lumenerr.ExitInput,
}

// Patterns stripped from pasted phrases: runs of whitespace, numbered-list
// prefixes ("1." "2)" "3:"), and bullet prefixes ("-" "*" "•").
var (
	whitespaceRegex   = regexp.MustCompile(`\s+`)
	numberedListRegex = regexp.MustCompile(`(?m)^\s*\d+[\.\)\:]\s*`)
	bulletListRegex   = regexp.MustCompile(`(?m)^\s*[-*•]\s*`)
)

// bip39WordSet indexes the English word list for O(1) membership checks.
var bip39WordSet = func() map[string]struct{} {
	words := bip39.GetWordList()
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

// GenerateMnemonic creates a new BIP39 recovery phrase of 12 words (128 bits
// of entropy) or 24 words (256 bits).
func GenerateMnemonic(wordCount int) (string, error) {
	var bits int
	switch wordCount {
	case 12:
		bits = 128
	case 24:
		bits = 256
	default:
		return "", ErrInvalidWordCount
	}

	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("generating entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("encoding mnemonic: %w", err)
	}
	return mnemonic, nil
}

// NormalizeMnemonicInput cleans a pasted recovery phrase: lowercases it,
// strips list numbering and bullets, turns commas into spaces, and collapses
// whitespace runs to single spaces.
func NormalizeMnemonicInput(input string) string {
	input = strings.ToLower(input)
	input = numberedListRegex.ReplaceAllString(input, " ")
	input = bulletListRegex.ReplaceAllString(input, " ")
	input = strings.ReplaceAll(input, ",", " ")
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// ValidateMnemonic checks a recovery phrase: 12 or 24 words, every word in
// the BIP39 list, and a matching checksum. The phrase is normalized first,
// so pasted list formatting does not fail validation.
func ValidateMnemonic(mnemonic string) error {
	if mnemonic == "" {
		return lumenerr.ErrInvalidMnemonic
	}

	normalized := NormalizeMnemonicInput(mnemonic)

	// 15/18/21-word phrases are valid BIP39 but not supported here.
	if n := len(strings.Fields(normalized)); n != 12 && n != 24 {
		return lumenerr.ErrInvalidMnemonic
	}

	// MnemonicToByteArray checks the word list and the checksum.
	if _, err := bip39.MnemonicToByteArray(normalized); err != nil {
		return lumenerr.ErrInvalidMnemonic
	}
	return nil
}

// MnemonicToSeed derives the 64-byte BIP39 seed from a recovery phrase and
// optional passphrase. Callers own the seed and must zero it after use.
func MnemonicToSeed(mnemonic, passphrase string) ([]byte, error) {
	normalized := NormalizeMnemonicInput(mnemonic)
	if _, err := bip39.MnemonicToByteArray(normalized); err != nil {
		return nil, lumenerr.ErrInvalidMnemonic
	}
	return bip39.NewSeed(normalized, passphrase), nil
}

// GetWordList returns the BIP39 English word list.
func GetWordList() []string {
	return bip39.GetWordList()
}

// IsValidWord reports whether word is in the BIP39 word list.
func IsValidWord(word string) bool {
	_, ok := bip39WordSet[strings.ToLower(word)]
	return ok
}

// MaxTypoDistance caps how far a word may be from the list before no
// suggestion is offered.
const MaxTypoDistance = 2

// TypoInfo describes one word that is not in the BIP39 list.
type TypoInfo struct {
	// Index is the word's position in the phrase, 0-based.
	Index int
	// Word is the text as the user typed it.
	Word string
	// Suggestion is the closest BIP39 word, empty when nothing is close.
	Suggestion string
	// Distance is the Levenshtein distance to the suggestion.
	Distance int
}

// SuggestWord returns the BIP39 word closest to input, or "" when even the
// closest is more than MaxTypoDistance edits away.
func SuggestWord(input string) string {
	input = strings.ToLower(input)

	best := ""
	bestDist := MaxTypoDistance + 1
	for _, word := range bip39.GetWordList() {
		dist := levenshtein.ComputeDistance(input, word)
		if dist == 0 {
			return word
		}
		if dist < bestDist {
			best, bestDist = word, dist
		}
	}
	return best
}

// DetectTypos scans a phrase for words outside the BIP39 list and pairs each
// with its closest suggestion.
func DetectTypos(mnemonic string) []TypoInfo {
	if mnemonic == "" {
		return nil
	}

	var typos []TypoInfo
	for i, word := range strings.Fields(NormalizeMnemonicInput(mnemonic)) {
		if IsValidWord(word) {
			continue
		}

		info := TypoInfo{Index: i, Word: word}
		if info.Suggestion = SuggestWord(word); info.Suggestion != "" {
			info.Distance = levenshtein.ComputeDistance(word, info.Suggestion)
		}
		typos = append(typos, info)
	}
	return typos
}

// FormatTypoSuggestions renders typos one per line, with 1-based word
// positions for humans counting along their phrase card.
func FormatTypoSuggestions(typos []TypoInfo) string {
	if len(typos) == 0 {
		return ""
	}

	lines := make([]string, 0, len(typos))
	for _, typo := range typos {
		if typo.Suggestion != "" {
			lines = append(lines, fmt.Sprintf("Word %d: '%s' - did you mean '%s'?", typo.Index+1, typo.Word, typo.Suggestion))
		} else {
			lines = append(lines, fmt.Sprintf("Word %d: '%s' is not a valid BIP39 word", typo.Index+1, typo.Word))
		}
	}
	return strings.Join(lines, "\n")
}
