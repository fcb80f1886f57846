package wallet

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/stretchr/testify/assert"
)

func TestParseDerivationPath(t *testing.T) {
	tests := []struct {
		input  string
		output DerivationPath
		err    error
	}{
		// Plain absolute derivation paths
		{"m/84'/0'/0'/0", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 0}, nil},
		{"m/84'/0'/0'/128", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 128}, nil},
		{"m/84'/0'/0'/0'", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart}, nil},
		{"m/84'/0'/0'/128'", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart + 0, hdkeychain.HardenedKeyStart + 128}, nil},
		{"m/2147483732/2147483648/2147483648/0", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 0}, nil},
		{"m/2147483732/2147483648/2147483648/2147483648", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart}, nil},

		// Hexadecimal absolute derivation paths
		{"m/0x54'/0x00'/0x00'/0x00", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 0}, nil},
		{"m/0x54'/0x00'/0x00'/0x80", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 128}, nil},
		{"m/0x54'/0x00'/0x00'/0x00'", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart}, nil},
		{"m/0x54'/0x00'/0x00'/0x80'", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart + 128}, nil},
		{"m/0x80000054/0x80000000/0x80000000/0x00", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 0}, nil},
		{"m/0x80000054/0x80000000/0x80000000/0x80000000", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart}, nil},

		// Weird inputs just to ensure they work
		{"	m  /   84			'\n/\n   00	\n\n\t'   /\n0 ' /\t\t	0", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 0}, nil},

		// Relative derivation paths
		{"84'/0'/0/0", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, 0, 0}, nil},
		{"0'/0/0", DerivationPath{hdkeychain.HardenedKeyStart, 0, 0}, nil},
		{"0/0", DerivationPath{0, 0}, nil},

		// Invalid derivation paths
		{"", nil, ErrNullDerivationPath},                  // Empty relative derivation path
		{"m", nil, ErrMalformedDerivationPath},            // Empty absolute derivation path
		{"m/", nil, ErrMalformedDerivationPath},           // Missing last derivation component
		{"/84'/0'/0'/0", nil, ErrMalformedDerivationPath}, // Absolute path without m prefix, might be user error
		{"m/2147483648'", nil, nil},                       // Overflows 32 bit integer (dynamic values on error, not constant)
		{"m/-1'", nil, nil},                               // Cannot contain negative number (dynamic values on error, not constant)
		{"0", nil, ErrMalformedDerivationPath},            // Bad derivation path
	}
	for _, tt := range tests {
		path, err := ParseDerivationPath(tt.input)
		if err != nil {
			if tt.err != nil {
				assert.Equal(t, tt.err, err)
			}
		}
		assert.Equal(t, tt.output, path)
	}
}

func TestParseAddressPath(t *testing.T) {
	tests := []struct {
		input string
		chain uint32
		index uint32
		err   error
	}{
		{"M/0/5", ReceiveChain, 5, nil},
		{"M/1/0", ChangeChain, 0, nil},
		{"m/0/21", ReceiveChain, 21, nil},
		{"0/3", ReceiveChain, 3, nil},
		{"M/2/5", 0, 0, ErrInvalidChain},
		{"M/0/5'", 0, 0, ErrInvalidDerivationPath},
		{"M/0/0/5", 0, 0, ErrInvalidDerivationPathLength},
		{"", 0, 0, ErrNullDerivationPath},
	}
	for _, tt := range tests {
		chain, index, err := ParseAddressPath(tt.input)
		if tt.err != nil {
			assert.Equal(t, tt.err, err)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.chain, chain)
		assert.Equal(t, tt.index, index)
		if strings.HasPrefix(tt.input, "M/") {
			assert.Equal(t, tt.input, AddressPath(chain, index))
		}
	}
}

func TestAccountPath(t *testing.T) {
	tests := []struct {
		scheme  Scheme
		account uint32
		output  string
		err     error
	}{
		{SchemeLegacy, 0, "m/44'/0'/0'", nil},
		{SchemeBech32, 0, "m/84'/0'/0'", nil},
		{SchemeBech32, 7, "m/84'/0'/7'", nil},
		{Scheme("taproot"), 0, "", ErrInvalidScheme},
		{SchemeLegacy, MaxHardenedValue + 1, "", ErrOutOfRangeAccount},
	}
	for _, tt := range tests {
		path, err := AccountPath(tt.scheme, tt.account)
		assert.Equal(t, tt.err, err)
		assert.Equal(t, tt.output, path.String())
	}
}
