package wallet

import (
	"encoding/hex"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// NewMnemonicOpts is the struct given to NewMnemonic and NewSeedHex methods
type NewMnemonicOpts struct {
	EntropySize int
}

func (o NewMnemonicOpts) validate() error {
	if o.EntropySize > 0 {
		if o.EntropySize < 128 || o.EntropySize > 256 || o.EntropySize%32 != 0 {
			return ErrInvalidEntropySize
		}
	}
	if o.EntropySize < 0 {
		return ErrInvalidEntropySize
	}
	return nil
}

// NewMnemonic returns a new mnemonic as a list of words
func NewMnemonic(opts NewMnemonicOpts) ([]string, error) {
	seedHex, err := NewSeedHex(opts)
	if err != nil {
		return nil, err
	}
	return MnemonicFromSeedHex(seedHex)
}

// NewSeedHex returns fresh random entropy in hex format. This is what a
// wallet body stores as seed, the mnemonic being just its word encoding
func NewSeedHex(opts NewMnemonicOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	if opts.EntropySize == 0 {
		opts.EntropySize = 128
	}

	entropy, err := bip39.NewEntropy(opts.EntropySize)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(entropy), nil
}

// MnemonicFromSeedHex encodes the hex entropy into its BIP39 word list
func MnemonicFromSeedHex(seedHex string) ([]string, error) {
	entropy, err := hex.DecodeString(seedHex)
	if err != nil || len(entropy) <= 0 {
		return nil, ErrInvalidSeedHex
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, ErrInvalidSeedHex
	}
	return strings.Split(mnemonic, " "), nil
}

// SeedHexFromMnemonic is the inverse of MnemonicFromSeedHex
func SeedHexFromMnemonic(mnemonic []string) (string, error) {
	if !IsMnemonicValid(mnemonic) {
		return "", ErrInvalidMnemonic
	}
	entropy, err := bip39.EntropyFromMnemonic(strings.Join(mnemonic, " "))
	if err != nil {
		return "", ErrInvalidMnemonic
	}
	return hex.EncodeToString(entropy), nil
}

// IsMnemonicValid returns whether the words form a valid BIP39 mnemonic
func IsMnemonicValid(mnemonic []string) bool {
	return bip39.IsMnemonicValid(strings.Join(mnemonic, " "))
}

// SeedFromSeedHex returns the BIP39 seed for the given entropy and passphrase
func SeedFromSeedHex(seedHex, passphrase string) ([]byte, error) {
	mnemonic, err := MnemonicFromSeedHex(seedHex)
	if err != nil {
		return nil, err
	}
	return bip39.NewSeed(strings.Join(mnemonic, " "), passphrase), nil
}
