package domain

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/tdex-network/tdex-payload/pkg/payment"
	"github.com/tdex-network/tdex-payload/pkg/wallet"
)

type accountKeyID struct {
	index  int
	scheme wallet.Scheme
}

// HDContainer holds the key trees of the accounts of the primary HD tree of a
// wallet, one per account index and scheme. A locked container only knows
// the public side of the trees
type HDContainer struct {
	seedHex     string
	passphrase  string
	accounts    []Account
	accountKeys map[accountKeyID]*hdkeychain.ExtendedKey
	locked      bool
}

// HDWallet returns the HD container of the wallet. It's unlocked only if the
// wallet is not double encrypted, otherwise DecryptHDWallet must be used
func (w *Wallet) HDWallet() (*HDContainer, error) {
	body, err := w.WalletBody()
	if err != nil {
		return nil, err
	}
	if w.doubleEncryption {
		return &HDContainer{
			passphrase: body.passphrase,
			accounts:   body.Accounts(),
			locked:     true,
		}, nil
	}
	return newHDContainer(body, secretCodec{})
}

// DecryptHDWallet validates the second password and returns the unlocked HD
// container of the wallet, failing immediately on a wrong password
func (w *Wallet) DecryptHDWallet(secondPassword string) (*HDContainer, error) {
	codec, err := w.secretCodec(secondPassword)
	if err != nil {
		return nil, err
	}
	body, err := w.WalletBody()
	if err != nil {
		return nil, err
	}
	return newHDContainer(body, codec)
}

func newHDContainer(body WalletBody, codec secretCodec) (*HDContainer, error) {
	seedHex, err := codec.reveal(body.seedHex)
	if err != nil {
		return nil, err
	}
	master, err := masterKeyFromSeedHex(seedHex, body.passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrHDWallet, err)
	}

	accountKeys := make(map[accountKeyID]*hdkeychain.ExtendedKey)
	for i, a := range body.accounts {
		for _, d := range a.derivations {
			key, err := wallet.DeriveAccountKey(master, d.scheme, uint32(i))
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrHDWallet, err)
			}
			xpub, err := key.Neuter()
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrHDWallet, err)
			}
			if xpub.String() != d.xpub {
				return nil, fmt.Errorf(
					"%w: account %d %s xpub doesn't match seed", ErrHDWallet, i, d.scheme,
				)
			}
			accountKeys[accountKeyID{i, d.scheme}] = key
		}
	}

	return &HDContainer{
		seedHex:     seedHex,
		passphrase:  body.passphrase,
		accounts:    body.Accounts(),
		accountKeys: accountKeys,
	}, nil
}

// IsLocked ...
func (c *HDContainer) IsLocked() bool {
	return c.locked
}

// Accounts ...
func (c *HDContainer) Accounts() []Account {
	return append([]Account{}, c.accounts...)
}

// MasterKey returns the extended private key of the account at accountIndex
// for the given scheme
func (c *HDContainer) MasterKey(
	accountIndex int, scheme wallet.Scheme,
) (*hdkeychain.ExtendedKey, error) {
	if c.locked {
		return nil, ErrHDWallet
	}
	key, ok := c.accountKeys[accountKeyID{accountIndex, scheme}]
	if !ok {
		return nil, fmt.Errorf(
			"%w: no %s key for account %d", ErrHDWallet, scheme, accountIndex,
		)
	}
	return key, nil
}

// Mnemonic returns the BIP39 words of the seed
func (c *HDContainer) Mnemonic() ([]string, error) {
	if c.locked {
		return nil, ErrDecryption
	}
	return wallet.MnemonicFromSeedHex(c.seedHex)
}

// ReceiveAddress returns the receive address at index of an account
func (c *HDContainer) ReceiveAddress(
	accountIndex int, scheme wallet.Scheme, index uint32,
) (string, error) {
	d, err := c.derivation(accountIndex, scheme)
	if err != nil {
		return "", err
	}
	return d.ReceiveAddress(index)
}

// ChangeAddress returns the change address at index of an account
func (c *HDContainer) ChangeAddress(
	accountIndex int, scheme wallet.Scheme, index uint32,
) (string, error) {
	d, err := c.derivation(accountIndex, scheme)
	if err != nil {
		return "", err
	}
	return d.ChangeAddress(index)
}

// KeysForSigning returns the private keys needed to spend the outputs selected
// for a payment from the account at accountIndex. Keys are deduplicated by
// derivation path and returned in order of first appearance among the
// outputs. Outputs without path are skipped
func (c *HDContainer) KeysForSigning(
	accountIndex int, bundle *payment.SpendableUnspentOutputs,
) ([]*btcec.PrivateKey, error) {
	if c.locked {
		return nil, ErrHDWallet
	}
	if bundle == nil {
		return nil, nil
	}
	if accountIndex < 0 || accountIndex >= len(c.accounts) {
		return nil, ErrAccountNotFound
	}
	account := c.accounts[accountIndex]

	type keyPath struct {
		scheme       wallet.Scheme
		chain, index uint32
	}
	seen := make(map[keyPath]bool)
	keys := make([]*btcec.PrivateKey, 0, len(bundle.Outputs))

	for _, u := range bundle.Outputs {
		if len(u.Path) <= 0 {
			continue
		}
		chain, index, err := wallet.ParseAddressPath(u.Path)
		if err != nil {
			return nil, err
		}
		scheme, err := schemeForUtxo(account, u)
		if err != nil {
			return nil, err
		}

		path := keyPath{scheme, chain, index}
		if seen[path] {
			continue
		}
		seen[path] = true

		accountKey, err := c.MasterKey(accountIndex, scheme)
		if err != nil {
			return nil, err
		}
		key, err := wallet.DeriveSigningKey(accountKey, chain, index)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrHDWallet, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (c *HDContainer) derivation(
	accountIndex int, scheme wallet.Scheme,
) (Derivation, error) {
	if accountIndex < 0 || accountIndex >= len(c.accounts) {
		return Derivation{}, ErrAccountNotFound
	}
	d, ok := c.accounts[accountIndex].Derivation(scheme)
	if !ok {
		return Derivation{}, wallet.ErrInvalidScheme
	}
	return d, nil
}

// schemeForUtxo returns the scheme of the account derivation the output
// belongs to, looked up by xpub if any, by script type otherwise
func schemeForUtxo(account Account, u payment.Utxo) (wallet.Scheme, error) {
	if len(u.XPub) > 0 {
		for _, d := range account.derivations {
			if d.xpub == u.XPub {
				return d.scheme, nil
			}
		}
		return "", ErrNoSuchAddress
	}
	switch u.ScriptType {
	case wallet.P2PKH:
		return wallet.SchemeLegacy, nil
	case wallet.P2WPKH:
		return wallet.SchemeBech32, nil
	default:
		return "", wallet.ErrInvalidScriptType
	}
}
