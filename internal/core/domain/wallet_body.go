package domain

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/tdex-network/tdex-payload/pkg/wallet"
)

// WalletBody is a HD tree of a wallet, made of the seed and the ordered list
// of accounts derived from it. The position of an account in the list is its
// derivation index
type WalletBody struct {
	seedHex           Secret
	passphrase        string
	mnemonicVerified  bool
	defaultAccountIdx int
	accounts          []Account
}

// NewWalletBodyFromSeedHex derives numAccounts accounts of the given version
// from the plain seed. The first account is labelled with label, the others
// with label followed by their 1-based position
func NewWalletBodyFromSeedHex(
	seedHex, passphrase, label string, numAccounts, version int,
) (*WalletBody, error) {
	return newWalletBody(seedHex, passphrase, label, numAccounts, version, secretCodec{})
}

// NewWalletBodyFromMnemonic is like NewWalletBodyFromSeedHex for a BIP39
// word list
func NewWalletBodyFromMnemonic(
	mnemonic []string, passphrase, label string, numAccounts, version int,
) (*WalletBody, error) {
	seedHex, err := wallet.SeedHexFromMnemonic(mnemonic)
	if err != nil {
		return nil, err
	}
	return NewWalletBodyFromSeedHex(seedHex, passphrase, label, numAccounts, version)
}

func newWalletBody(
	seedHex, passphrase, label string, numAccounts, version int,
	codec secretCodec,
) (*WalletBody, error) {
	if len(label) <= 0 {
		return nil, ErrNullLabel
	}
	if numAccounts < 1 {
		numAccounts = 1
	}
	if err := validateVersion(version); err != nil {
		return nil, err
	}

	master, err := masterKeyFromSeedHex(seedHex, passphrase)
	if err != nil {
		return nil, err
	}
	seed, err := codec.seal(seedHex)
	if err != nil {
		return nil, err
	}

	accounts := make([]Account, 0, numAccounts)
	for i := 0; i < numAccounts; i++ {
		account, err := newAccountFromMasterKey(
			master, uint32(i), AccountLabel(label, i), version, codec,
		)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return &WalletBody{
		seedHex:    seed,
		passphrase: passphrase,
		accounts:   accounts,
	}, nil
}

// AccountLabel returns the label of the account at index for a body whose
// first account is labelled with label
func AccountLabel(label string, index int) string {
	if index <= 0 {
		return label
	}
	return fmt.Sprintf("%s %d", label, index+1)
}

// SeedHex ...
func (b WalletBody) SeedHex() Secret {
	return b.seedHex
}

// Passphrase ...
func (b WalletBody) Passphrase() string {
	return b.passphrase
}

// IsMnemonicVerified ...
func (b WalletBody) IsMnemonicVerified() bool {
	return b.mnemonicVerified
}

// DefaultAccountIdx ...
func (b WalletBody) DefaultAccountIdx() int {
	return b.defaultAccountIdx
}

// Accounts returns a copy of the list of accounts
func (b WalletBody) Accounts() []Account {
	return append([]Account{}, b.accounts...)
}

// NumAccounts ...
func (b WalletBody) NumAccounts() int {
	return len(b.accounts)
}

// Account returns the account at index
func (b WalletBody) Account(index int) (Account, error) {
	if index < 0 || index >= len(b.accounts) {
		return Account{}, ErrAccountNotFound
	}
	return b.accounts[index], nil
}

// DefaultAccount ...
func (b WalletBody) DefaultAccount() (Account, error) {
	return b.Account(b.defaultAccountIdx)
}

// ActiveXpubs returns the xpubs of all derivations of non archived accounts
func (b WalletBody) ActiveXpubs() []string {
	xpubs := make([]string, 0, len(b.accounts)*len(wallet.Schemes))
	for _, a := range b.accounts {
		if a.IsArchived() {
			continue
		}
		for _, d := range a.derivations {
			xpubs = append(xpubs, d.xpub)
		}
	}
	return xpubs
}

// UpdateMnemonicVerifiedState returns a copy of the body with the flag set
func (b WalletBody) UpdateMnemonicVerifiedState(verified bool) WalletBody {
	b.mnemonicVerified = verified
	return b
}

// UpdateDefaultIndex returns a copy of the body with a new default account.
// Archived accounts can't be the default one
func (b WalletBody) UpdateDefaultIndex(index int) (WalletBody, error) {
	account, err := b.Account(index)
	if err != nil {
		return WalletBody{}, err
	}
	if account.IsArchived() {
		return WalletBody{}, ErrArchivedDefaultAccount
	}
	b.defaultAccountIdx = index
	return b, nil
}

// UpdateAccount returns a copy of the body with the account at index replaced
func (b WalletBody) UpdateAccount(index int, account Account) (WalletBody, error) {
	if index < 0 || index >= len(b.accounts) {
		return WalletBody{}, ErrAccountNotFound
	}
	if len(account.derivations) <= 0 {
		return WalletBody{}, ErrAccountNotFound
	}
	if index == b.defaultAccountIdx && account.IsArchived() {
		return WalletBody{}, ErrArchivedDefaultAccount
	}
	accounts := b.Accounts()
	accounts[index] = account
	b.accounts = accounts
	return b, nil
}

func (b WalletBody) masterKey(codec secretCodec) (*hdkeychain.ExtendedKey, error) {
	seedHex, err := codec.reveal(b.seedHex)
	if err != nil {
		return nil, err
	}
	return masterKeyFromSeedHex(seedHex, b.passphrase)
}

func (b WalletBody) withNewAccount(
	label string, version int, codec secretCodec,
) (WalletBody, error) {
	if len(label) <= 0 {
		return WalletBody{}, ErrNullLabel
	}
	master, err := b.masterKey(codec)
	if err != nil {
		return WalletBody{}, err
	}
	index := len(b.accounts)
	if uint32(index) > wallet.MaxHardenedValue {
		return WalletBody{}, ErrAccountIndexOutOfRange
	}

	account, err := newAccountFromMasterKey(
		master, uint32(index), label, version, codec,
	)
	if err != nil {
		return WalletBody{}, err
	}
	b.accounts = append(b.Accounts(), account)
	return b, nil
}

// withAccountsV4 adds the missing bech32 derivation to every V3 account
func (b WalletBody) withAccountsV4(codec secretCodec) (WalletBody, error) {
	master, err := b.masterKey(codec)
	if err != nil {
		return WalletBody{}, err
	}

	accounts := make([]Account, 0, len(b.accounts))
	for i, a := range b.accounts {
		if a.version == WrapperV4 {
			accounts = append(accounts, a)
			continue
		}
		upgraded, err := newAccountFromMasterKey(
			master, uint32(i), a.label, WrapperV4, codec,
		)
		if err != nil {
			return WalletBody{}, err
		}
		// the legacy derivation is kept as it is, labels included
		derivations := upgraded.Derivations()
		derivations[0] = a.derivations[0]
		upgraded = upgraded.withDerivations(derivations)
		upgraded.archived = a.archived
		accounts = append(accounts, upgraded)
	}
	b.accounts = accounts
	return b, nil
}

func (b WalletBody) mapSecrets(fn func(Secret) (Secret, error)) (WalletBody, error) {
	seed, err := fn(b.seedHex)
	if err != nil {
		return WalletBody{}, err
	}
	accounts := make([]Account, 0, len(b.accounts))
	for _, a := range b.accounts {
		account, err := a.mapXPrivs(fn)
		if err != nil {
			return WalletBody{}, err
		}
		accounts = append(accounts, account)
	}
	b.seedHex = seed
	b.accounts = accounts
	return b, nil
}

func (b WalletBody) secrets() []Secret {
	secrets := []Secret{b.seedHex}
	for _, a := range b.accounts {
		for _, d := range a.derivations {
			secrets = append(secrets, d.xpriv)
		}
	}
	return secrets
}

func newAccountFromMasterKey(
	master *hdkeychain.ExtendedKey, index uint32, label string, version int,
	codec secretCodec,
) (Account, error) {
	schemes := wallet.Schemes
	if version == WrapperV3 {
		schemes = []wallet.Scheme{wallet.SchemeLegacy}
	}

	derivations := make([]Derivation, 0, len(schemes))
	for _, scheme := range schemes {
		accountKey, err := wallet.DeriveAccountKey(master, scheme, index)
		if err != nil {
			return Account{}, fmt.Errorf("%w: %s", ErrHDWallet, err)
		}
		keys, err := wallet.ExtendedKeysForAccount(accountKey)
		if err != nil {
			return Account{}, fmt.Errorf("%w: %s", ErrHDWallet, err)
		}
		xpriv, err := codec.seal(keys.XPriv)
		if err != nil {
			return Account{}, err
		}
		derivation, err := NewDerivation(scheme, keys.XPub, xpriv, AddressCache{
			ReceiveAccount: keys.ReceiveXPub,
			ChangeAccount:  keys.ChangeXPub,
		})
		if err != nil {
			return Account{}, err
		}
		derivations = append(derivations, derivation)
	}

	if version == WrapperV3 {
		return NewAccountV3(label, derivations[0]), nil
	}
	return NewAccountV4(label, wallet.SchemeBech32, derivations), nil
}

func masterKeyFromSeedHex(
	seedHex, passphrase string,
) (*hdkeychain.ExtendedKey, error) {
	seed, err := wallet.SeedFromSeedHex(seedHex, passphrase)
	if err != nil {
		return nil, err
	}
	return wallet.NewMasterKey(seed)
}

func validateVersion(version int) error {
	if version != WrapperV3 && version != WrapperV4 {
		return ErrUnsupportedVersion
	}
	return nil
}
