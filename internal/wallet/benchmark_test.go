package wallet

import (
	"strconv"
	"testing"
)

func BenchmarkGenerateMnemonic(b *testing.B) {
	for _, count := range []int{12, 24} {
		b.Run(strconv.Itoa(count)+"words", func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = GenerateMnemonic(count)
			}
		})
	}
}

// BenchmarkSuggestWord measures the Levenshtein scan over the full word
// list, which runs once per misspelled word during phrase checks.
//
//nolint:misspell // deliberate typo
func BenchmarkSuggestWord(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = SuggestWord("abondon")
	}
}

func BenchmarkDeriveBackupKey(b *testing.B) {
	seed, err := MnemonicToSeed("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about", "")
	if err != nil {
		b.Fatal(err)
	}
	defer ZeroBytes(seed)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key, err := DeriveBackupKey(seed)
		if err != nil {
			b.Fatal(err)
		}
		key.Zero()
	}
}
