package wallet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const abandonMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestNewMnemonic(t *testing.T) {
	tests := []struct {
		entropySize int
		numOfWords  int
	}{
		{0, 12},
		{128, 12},
		{160, 15},
		{256, 24},
	}
	for _, tt := range tests {
		mnemonic, err := NewMnemonic(NewMnemonicOpts{EntropySize: tt.entropySize})
		require.NoError(t, err)
		assert.Len(t, mnemonic, tt.numOfWords)
		assert.True(t, IsMnemonicValid(mnemonic))
	}
}

func TestFailingNewMnemonic(t *testing.T) {
	for _, size := range []int{-1, 100, 130, 288} {
		_, err := NewMnemonic(NewMnemonicOpts{EntropySize: size})
		assert.Equal(t, ErrInvalidEntropySize, err)
	}
}

func TestSeedHexMnemonicRoundTrip(t *testing.T) {
	mnemonic, err := MnemonicFromSeedHex(testSeedHex)
	require.NoError(t, err)
	require.Equal(t, abandonMnemonic, strings.Join(mnemonic, " "))

	seedHex, err := SeedHexFromMnemonic(mnemonic)
	require.NoError(t, err)
	require.Equal(t, testSeedHex, seedHex)

	seedHex, err = NewSeedHex(NewMnemonicOpts{})
	require.NoError(t, err)
	mnemonic, err = MnemonicFromSeedHex(seedHex)
	require.NoError(t, err)
	roundTrip, err := SeedHexFromMnemonic(mnemonic)
	require.NoError(t, err)
	require.Equal(t, seedHex, roundTrip)
}

func TestFailingSeedHex(t *testing.T) {
	for _, seedHex := range []string{"", "zz", "0000"} {
		_, err := MnemonicFromSeedHex(seedHex)
		assert.Equal(t, ErrInvalidSeedHex, err)
	}

	_, err := SeedHexFromMnemonic(strings.Split("abandon abandon abandon", " "))
	assert.Equal(t, ErrInvalidMnemonic, err)
}

func TestSeedDependsOnPassphrase(t *testing.T) {
	seed, err := SeedFromSeedHex(testSeedHex, "")
	require.NoError(t, err)
	require.Len(t, seed, 64)

	seedWithPassphrase, err := SeedFromSeedHex(testSeedHex, "TREZOR")
	require.NoError(t, err)
	require.NotEqual(t, seed, seedWithPassphrase)
}
