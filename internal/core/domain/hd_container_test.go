package domain_test

import (
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-payload/internal/core/domain"
	"github.com/tdex-network/tdex-payload/pkg/payment"
	"github.com/tdex-network/tdex-payload/pkg/wallet"
	"pgregory.net/rapid"
)

func TestHDContainer(t *testing.T) {
	t.Parallel()

	w := newTestWallet(t)
	hd, err := w.HDWallet()
	require.NoError(t, err)
	require.False(t, hd.IsLocked())
	require.Len(t, hd.Accounts(), 1)

	mnemonic, err := hd.Mnemonic()
	require.NoError(t, err)
	expected, err := wallet.MnemonicFromSeedHex(abandonSeedHex)
	require.NoError(t, err)
	require.Equal(t, expected, mnemonic)

	addr, err := hd.ReceiveAddress(0, wallet.SchemeLegacy, 0)
	require.NoError(t, err)
	require.Equal(t, "1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA", addr)
	addr, err = hd.ReceiveAddress(0, wallet.SchemeBech32, 0)
	require.NoError(t, err)
	require.Equal(t, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", addr)

	change, err := hd.ChangeAddress(0, wallet.SchemeBech32, 0)
	require.NoError(t, err)
	require.NotEqual(t, addr, change)

	for _, scheme := range wallet.Schemes {
		key, err := hd.MasterKey(0, scheme)
		require.NoError(t, err)
		require.True(t, key.IsPrivate())
	}

	_, err = hd.MasterKey(1, wallet.SchemeLegacy)
	require.ErrorIs(t, err, domain.ErrHDWallet)
	_, err = hd.ReceiveAddress(1, wallet.SchemeLegacy, 0)
	require.EqualError(t, err, domain.ErrAccountNotFound.Error())

	_, err = w.HDWallet()
	require.NoError(t, err)
	_, err = w.DecryptHDWallet(secondPassword)
	require.EqualError(t, err, domain.ErrSecondPasswordNotExpected.Error())
}

func TestHDContainerDoubleEncrypted(t *testing.T) {
	t.Parallel()

	w, err := newTestWallet(t).EnableDoubleEncryption(secondPassword)
	require.NoError(t, err)

	locked, err := w.HDWallet()
	require.NoError(t, err)
	require.True(t, locked.IsLocked())

	_, err = locked.Mnemonic()
	require.ErrorIs(t, err, domain.ErrDecryption)
	_, err = locked.MasterKey(0, wallet.SchemeLegacy)
	require.ErrorIs(t, err, domain.ErrHDWallet)
	_, err = locked.KeysForSigning(0, &payment.SpendableUnspentOutputs{})
	require.ErrorIs(t, err, domain.ErrHDWallet)

	// addresses come from the public cache
	addr, err := locked.ReceiveAddress(0, wallet.SchemeLegacy, 0)
	require.NoError(t, err)
	require.Equal(t, "1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA", addr)

	for _, pw := range []string{"", "wrong password"} {
		hd, err := w.DecryptHDWallet(pw)
		require.ErrorIs(t, err, domain.ErrDecryption)
		require.Nil(t, hd)
	}

	hd, err := w.DecryptHDWallet(secondPassword)
	require.NoError(t, err)
	require.False(t, hd.IsLocked())
	mnemonic, err := hd.Mnemonic()
	require.NoError(t, err)
	expected, err := wallet.MnemonicFromSeedHex(abandonSeedHex)
	require.NoError(t, err)
	require.Equal(t, expected, mnemonic)
}

func TestHDContainerSeedMismatch(t *testing.T) {
	t.Parallel()

	w := newTestWallet(t)
	other, err := domain.NewWalletBodyFromSeedHex(
		"ffffffffffffffffffffffffffffffff", "", accountLabel, 1, domain.WrapperV4,
	)
	require.NoError(t, err)
	account, err := other.Account(0)
	require.NoError(t, err)

	w, err = w.UpdateAccount(0, account)
	require.NoError(t, err)
	_, err = w.HDWallet()
	require.ErrorIs(t, err, domain.ErrHDWallet)
}

func TestKeysForSigning(t *testing.T) {
	t.Parallel()

	w := newTestWallet(t)
	hd, err := w.HDWallet()
	require.NoError(t, err)

	values := []btcutil.Amount{8290, 4616, 5860, 3784, 2290, 13990, 8141}
	unspents := make([]payment.Utxo, 0, len(values))
	for i, v := range values {
		unspents = append(unspents, payment.Utxo{
			TxHash:     fmt.Sprintf("%064x", i+1),
			Value:      v,
			Path:       wallet.AddressPath(wallet.ReceiveChain, uint32(i)),
			ScriptType: wallet.P2PKH,
		})
	}

	bundle, err := payment.SpendableCoins(payment.SpendableCoinsOpts{
		Unspents:    unspents,
		PaymentType: wallet.P2PKH,
		ChangeType:  wallet.P2PKH,
		Amount:      40108,
		FeePerKb:    1000,
	})
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(789), bundle.AbsoluteFee)
	require.Len(t, bundle.Outputs, 5)

	keys, err := hd.KeysForSigning(0, bundle)
	require.NoError(t, err)
	require.Len(t, keys, 5)

	for i, u := range bundle.Outputs {
		_, index, err := wallet.ParseAddressPath(u.Path)
		require.NoError(t, err)
		expectedAddr, err := hd.ReceiveAddress(0, wallet.SchemeLegacy, index)
		require.NoError(t, err)
		addr, err := wallet.AddressFromPubKey(keys[i].PubKey(), wallet.SchemeLegacy)
		require.NoError(t, err)
		require.Equal(t, expectedAddr, addr)
	}
}

func TestKeysForSigningDeduplicates(t *testing.T) {
	t.Parallel()

	w := newTestWallet(t)
	hd, err := w.HDWallet()
	require.NoError(t, err)

	body, err := w.WalletBody()
	require.NoError(t, err)
	account, err := body.Account(0)
	require.NoError(t, err)

	bundle := &payment.SpendableUnspentOutputs{
		Outputs: []payment.Utxo{
			{TxHash: "a", Path: "M/0/1", ScriptType: wallet.P2WPKH},
			{TxHash: "b", Path: "M/0/1", ScriptType: wallet.P2WPKH},
			{TxHash: "c", Path: "M/0/1", ScriptType: wallet.P2PKH},
			{TxHash: "d", Path: "M/1/0", XPub: account.XPub(wallet.SchemeBech32)},
			{TxHash: "e", ScriptType: wallet.P2PKH},
		},
	}
	keys, err := hd.KeysForSigning(0, bundle)
	require.NoError(t, err)
	require.Len(t, keys, 3)
	require.LessOrEqual(t, len(keys), len(bundle.Outputs))

	expected := []struct {
		scheme wallet.Scheme
		change bool
		index  uint32
	}{
		{wallet.SchemeBech32, false, 1},
		{wallet.SchemeLegacy, false, 1},
		{wallet.SchemeBech32, true, 0},
	}
	for i, e := range expected {
		var expectedAddr string
		if e.change {
			expectedAddr, err = hd.ChangeAddress(0, e.scheme, e.index)
		} else {
			expectedAddr, err = hd.ReceiveAddress(0, e.scheme, e.index)
		}
		require.NoError(t, err)
		addr, err := wallet.AddressFromPubKey(keys[i].PubKey(), e.scheme)
		require.NoError(t, err)
		require.Equal(t, expectedAddr, addr)
	}
}

func TestKeysForSigningProperties(t *testing.T) {
	w := newTestWallet(t)
	hd, err := w.HDWallet()
	require.NoError(t, err)

	rapid.Check(t, func(t *rapid.T) {
		numOutputs := rapid.IntRange(0, 8).Draw(t, "numOutputs")
		outputs := make([]payment.Utxo, 0, numOutputs)
		distinct := make(map[string]bool)
		for i := 0; i < numOutputs; i++ {
			scriptType := rapid.SampledFrom(
				[]wallet.ScriptType{wallet.P2PKH, wallet.P2WPKH},
			).Draw(t, "scriptType")
			chain := rapid.Uint32Range(0, 1).Draw(t, "chain")
			index := rapid.Uint32Range(0, 3).Draw(t, "index")
			path := wallet.AddressPath(chain, index)

			outputs = append(outputs, payment.Utxo{
				TxHash:     fmt.Sprintf("%d", i),
				Path:       path,
				ScriptType: scriptType,
			})
			distinct[fmt.Sprintf("%s:%s", scriptType, path)] = true
		}

		keys, err := hd.KeysForSigning(
			0, &payment.SpendableUnspentOutputs{Outputs: outputs},
		)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if len(keys) != len(distinct) {
			t.Fatalf("expected %d keys, got %d", len(distinct), len(keys))
		}
		if len(keys) > len(outputs) {
			t.Fatalf("got more keys than outputs")
		}
	})
}

func TestFailingKeysForSigning(t *testing.T) {
	t.Parallel()

	w := newTestWallet(t)
	hd, err := w.HDWallet()
	require.NoError(t, err)

	tests := []struct {
		name         string
		accountIndex int
		utxo         payment.Utxo
		err          error
	}{
		{
			name:         "unknown_account",
			accountIndex: 1,
			utxo:         payment.Utxo{Path: "M/0/0", ScriptType: wallet.P2PKH},
			err:          domain.ErrAccountNotFound,
		},
		{
			name:         "unknown_xpub",
			accountIndex: 0,
			utxo:         payment.Utxo{Path: "M/0/0", XPub: legacyAccountXPub + "x"},
			err:          domain.ErrNoSuchAddress,
		},
		{
			name:         "unsupported_script_type",
			accountIndex: 0,
			utxo:         payment.Utxo{Path: "M/0/0", ScriptType: wallet.P2TR},
			err:          wallet.ErrInvalidScriptType,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			keys, err := hd.KeysForSigning(tt.accountIndex, &payment.SpendableUnspentOutputs{
				Outputs: []payment.Utxo{tt.utxo},
			})
			require.EqualError(t, err, tt.err.Error())
			require.Nil(t, keys)
		})
	}

	_, err = hd.KeysForSigning(0, &payment.SpendableUnspentOutputs{
		Outputs: []payment.Utxo{{Path: "M/2/0", ScriptType: wallet.P2PKH}},
	})
	require.ErrorIs(t, err, wallet.ErrInvalidChain)
}
