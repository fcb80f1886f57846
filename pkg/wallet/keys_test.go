package wallet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveAccountAddresses(t *testing.T) {
	seed, err := SeedFromSeedHex(testSeedHex, "")
	require.NoError(t, err)
	masterKey, err := NewMasterKey(seed)
	require.NoError(t, err)

	tests := []struct {
		scheme       Scheme
		firstAddress string
	}{
		{SchemeLegacy, "1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA"},
		{SchemeBech32, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu"},
	}
	for _, tt := range tests {
		accountKey, err := DeriveAccountKey(masterKey, tt.scheme, 0)
		require.NoError(t, err)

		keys, err := ExtendedKeysForAccount(accountKey)
		require.NoError(t, err)
		require.NotEmpty(t, keys.XPriv)
		require.Regexp(t, "^xpub", keys.XPub)
		require.NotEqual(t, keys.ReceiveXPub, keys.ChangeXPub)

		addr, err := AddressFromBranch(keys.ReceiveXPub, 0, tt.scheme)
		require.NoError(t, err)
		require.Equal(t, tt.firstAddress, addr)

		signingKey, err := DeriveSigningKey(accountKey, ReceiveChain, 0)
		require.NoError(t, err)
		addrFromKey, err := AddressFromPubKey(signingKey.PubKey(), tt.scheme)
		require.NoError(t, err)
		require.Equal(t, addr, addrFromKey)

		// neutered keys serialize without xpriv
		xpub, err := ParseExtendedKey(keys.XPub)
		require.NoError(t, err)
		watchOnly, err := ExtendedKeysForAccount(xpub)
		require.NoError(t, err)
		require.Empty(t, watchOnly.XPriv)
		require.Equal(t, keys.ReceiveXPub, watchOnly.ReceiveXPub)
	}
}

func TestFailingDeriveSigningKey(t *testing.T) {
	seed, err := SeedFromSeedHex(testSeedHex, "")
	require.NoError(t, err)
	masterKey, err := NewMasterKey(seed)
	require.NoError(t, err)
	accountKey, err := DeriveAccountKey(masterKey, SchemeLegacy, 0)
	require.NoError(t, err)

	_, err = DeriveSigningKey(accountKey, 2, 0)
	require.Equal(t, ErrInvalidChain, err)

	_, err = DeriveSigningKey(nil, ReceiveChain, 0)
	require.Equal(t, ErrNullExtendedKey, err)

	_, err = DeriveAccountKey(masterKey, Scheme("unknown"), 0)
	require.Equal(t, ErrInvalidScheme, err)
}

func TestPrivateKeyEncoding(t *testing.T) {
	seed, err := SeedFromSeedHex(testSeedHex, "")
	require.NoError(t, err)
	masterKey, err := NewMasterKey(seed)
	require.NoError(t, err)
	key, err := masterKey.ECPrivKey()
	require.NoError(t, err)

	encoded := EncodePrivateKey(key)
	require.True(t, IsKeyUnencrypted(encoded))
	require.False(t, IsKeyEncrypted(encoded))

	decoded, err := DecodePrivateKey(encoded)
	require.NoError(t, err)
	require.Equal(t, key.Serialize(), decoded.Serialize())

	wif, err := EncodeWIF(key)
	require.NoError(t, err)
	require.Contains(t, []byte{'K', 'L'}, wif[0])

	_, err = DecodePrivateKey("abc")
	require.Equal(t, ErrInvalidPrivateKey, err)
}

func TestLegacyAddresses(t *testing.T) {
	key, err := DecodePrivateKey("sAscXoBYC3pAghC1x7AyQpPhEigmxN8JibbXfYCXH9a")
	require.NoError(t, err)

	compressed, uncompressed, err := LegacyAddresses(key.PubKey())
	require.NoError(t, err)
	require.Equal(t, "1DfjerQLEae49TeAeAdaSTY1NcNKdJao2J", compressed)
	require.Equal(t, "17Soa6vgkc3Z9QpWtPy1U5h3fafByGkaM6", uncompressed)

	addr, err := AddressFromPubKey(key.PubKey(), SchemeLegacy)
	require.NoError(t, err)
	require.Equal(t, compressed, addr)
}

func TestScriptTypeFromAddress(t *testing.T) {
	tests := []struct {
		address  string
		expected ScriptType
	}{
		{"1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA", P2PKH},
		{"3Ai1JZ8pdJb2ksieUV8FsxSNVJCpoPi8W6", P2SH_P2WPKH},
		{"bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", P2WPKH},
		{"bc1p5cyxnuxmeuwuvkwfem96lqzszd02n6xdcjrs20cac6yqjjwudpxqkedrcr", P2TR},
	}

	for _, tt := range tests {
		scriptType, err := ScriptTypeFromAddress(tt.address)
		require.NoError(t, err)
		require.Equal(t, tt.expected, scriptType)
	}

	_, err := ScriptTypeFromAddress("not an address")
	require.Error(t, err)
}
