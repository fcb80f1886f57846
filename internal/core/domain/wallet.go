package domain

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/google/uuid"
	"github.com/tdex-network/tdex-payload/pkg/wallet"
)

// Wallet is the root aggregate of the wallet payload. It's immutable: every
// update method returns a new Wallet and leaves the receiver untouched
type Wallet struct {
	guid              string
	sharedKey         string
	doubleEncryption  bool
	dpasswordHash     string
	txNotes           map[string]string
	options           Options
	addressBook       []AddressBookEntry
	importedAddresses []ImportedAddress
	walletBodies      []WalletBody
	version           int
}

// NewWallet returns a brand new wallet with a random 12 words seed and one
// account labelled with label
func NewWallet(label string) (*Wallet, error) {
	seedHex, err := wallet.NewSeedHex(wallet.NewMnemonicOpts{})
	if err != nil {
		return nil, err
	}
	body, err := NewWalletBodyFromSeedHex(
		seedHex, "", label, 1, LatestWrapperVersion,
	)
	if err != nil {
		return nil, err
	}
	return NewWalletFromBody(body)
}

// NewWalletFromBody returns a new wallet, with fresh identifiers, wrapping
// the given plain body, like the one returned by a recovery
func NewWalletFromBody(body *WalletBody) (*Wallet, error) {
	if body == nil {
		return nil, ErrNoWalletBody
	}
	if body.seedHex.IsEncrypted() {
		return nil, ErrSecretEncrypted
	}

	version := LatestWrapperVersion
	for _, a := range body.accounts {
		if a.version != version {
			version = a.version
			break
		}
	}

	return &Wallet{
		guid:              uuid.New().String(),
		sharedKey:         uuid.New().String(),
		txNotes:           map[string]string{},
		options:           NewOptions(),
		addressBook:       []AddressBookEntry{},
		importedAddresses: []ImportedAddress{},
		walletBodies:      []WalletBody{*body},
		version:           version,
	}, nil
}

// GUID ...
func (w *Wallet) GUID() string {
	return w.guid
}

// SharedKey ...
func (w *Wallet) SharedKey() string {
	return w.sharedKey
}

// IsDoubleEncrypted ...
func (w *Wallet) IsDoubleEncrypted() bool {
	return w.doubleEncryption
}

// DoublePasswordHash ...
func (w *Wallet) DoublePasswordHash() string {
	return w.dpasswordHash
}

// Version is the structural version the wallet is serialized with
func (w *Wallet) Version() int {
	return w.version
}

// Options ...
func (w *Wallet) Options() Options {
	return w.options
}

// TxNotes returns a copy of the transaction notes
func (w *Wallet) TxNotes() map[string]string {
	notes := make(map[string]string, len(w.txNotes))
	for k, v := range w.txNotes {
		notes[k] = v
	}
	return notes
}

// AddressBook returns a copy of the address book
func (w *Wallet) AddressBook() []AddressBookEntry {
	return append([]AddressBookEntry{}, w.addressBook...)
}

// ImportedAddresses returns a copy of the imported address list
func (w *Wallet) ImportedAddresses() []ImportedAddress {
	return append([]ImportedAddress{}, w.importedAddresses...)
}

// WalletBodies returns a copy of the HD trees of the wallet
func (w *Wallet) WalletBodies() []WalletBody {
	return append([]WalletBody{}, w.walletBodies...)
}

// WalletBody returns the primary HD tree of the wallet
func (w *Wallet) WalletBody() (WalletBody, error) {
	if len(w.walletBodies) <= 0 {
		return WalletBody{}, ErrNoWalletBody
	}
	return w.walletBodies[DefaultWalletBodyIndex], nil
}

// ActiveXpubs returns the xpubs of the non archived accounts of the primary
// HD tree
func (w *Wallet) ActiveXpubs() []string {
	body, err := w.WalletBody()
	if err != nil {
		return nil
	}
	return body.ActiveXpubs()
}

// ValidateSecondPassword checks the given second password against the stored
// hash without decrypting any secret. An empty password means none: it's
// expected if and only if the wallet is not double encrypted
func (w *Wallet) ValidateSecondPassword(secondPassword string) error {
	if !w.doubleEncryption {
		if len(secondPassword) > 0 {
			return ErrSecondPasswordNotExpected
		}
		return nil
	}
	return wallet.ValidateSecondPassword(
		w.dpasswordHash, w.sharedKey, secondPassword, w.options.Pbkdf2Iterations,
	)
}

// IsEncryptionConsistent returns whether every stored secret is encrypted or
// not according to the double encryption flag
func (w *Wallet) IsEncryptionConsistent() bool {
	for _, s := range w.secrets() {
		if s.IsZero() {
			continue
		}
		if wallet.IsKeyEncrypted(s.Stored()) != w.doubleEncryption {
			return false
		}
	}
	return true
}

// AddAccount derives the next account of the primary HD tree. The second
// password is required for double encrypted wallets
func (w *Wallet) AddAccount(label, secondPassword string) (*Wallet, error) {
	codec, err := w.secretCodec(secondPassword)
	if err != nil {
		return nil, err
	}
	body, err := w.WalletBody()
	if err != nil {
		return nil, err
	}
	body, err = body.withNewAccount(label, w.version, codec)
	if err != nil {
		return nil, err
	}
	return w.withPrimaryBody(body), nil
}

// UpdateAccount replaces the account at index of the primary HD tree
func (w *Wallet) UpdateAccount(index int, account Account) (*Wallet, error) {
	if account.version != w.version {
		return nil, ErrUnsupportedVersion
	}
	body, err := w.WalletBody()
	if err != nil {
		return nil, err
	}
	body, err = body.UpdateAccount(index, account)
	if err != nil {
		return nil, err
	}
	return w.withPrimaryBody(body), nil
}

// UpdateAccountLabel ...
func (w *Wallet) UpdateAccountLabel(index int, label string) (*Wallet, error) {
	if len(label) <= 0 {
		return nil, ErrNullLabel
	}
	return w.updateAccount(index, func(a Account) Account {
		return a.UpdateLabel(label)
	})
}

// UpdateAccountArchivedState archives or restores the account at index of
// the primary HD tree
func (w *Wallet) UpdateAccountArchivedState(
	index int, archived bool,
) (*Wallet, error) {
	return w.updateAccount(index, func(a Account) Account {
		return a.UpdateArchivedState(archived)
	})
}

// UpdateAddressLabel labels the receive address at addressIndex of the
// account at accountIndex
func (w *Wallet) UpdateAddressLabel(
	accountIndex, addressIndex int, label string,
) (*Wallet, error) {
	return w.updateAccount(accountIndex, func(a Account) Account {
		return a.UpdateAddressLabel(addressIndex, label)
	})
}

// UpdateDefaultIndex ...
func (w *Wallet) UpdateDefaultIndex(index int) (*Wallet, error) {
	body, err := w.WalletBody()
	if err != nil {
		return nil, err
	}
	body, err = body.UpdateDefaultIndex(index)
	if err != nil {
		return nil, err
	}
	return w.withPrimaryBody(body), nil
}

// UpdateMnemonicVerifiedState ...
func (w *Wallet) UpdateMnemonicVerifiedState(verified bool) (*Wallet, error) {
	body, err := w.WalletBody()
	if err != nil {
		return nil, err
	}
	return w.withPrimaryBody(body.UpdateMnemonicVerifiedState(verified)), nil
}

// UpgradeAccountsToV4 adds the bech32 derivation to the accounts of a V3
// wallet and bumps its version. V4 wallets are returned as they are
func (w *Wallet) UpgradeAccountsToV4(secondPassword string) (*Wallet, error) {
	codec, err := w.secretCodec(secondPassword)
	if err != nil {
		return nil, err
	}
	if w.version == WrapperV4 {
		return w, nil
	}

	bodies := make([]WalletBody, 0, len(w.walletBodies))
	for _, b := range w.walletBodies {
		body, err := b.withAccountsV4(codec)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}
	cp := w.clone()
	cp.walletBodies = bodies
	cp.version = WrapperV4
	return cp, nil
}

// WithUpdatedBodiesAndVersion returns a copy of the wallet with the given HD
// trees, serialized with the given version. Every account must match it
func (w *Wallet) WithUpdatedBodiesAndVersion(
	bodies []WalletBody, version int,
) (*Wallet, error) {
	if err := validateVersion(version); err != nil {
		return nil, err
	}
	for _, b := range bodies {
		for _, a := range b.accounts {
			if a.version != version {
				return nil, ErrUnsupportedVersion
			}
		}
	}
	cp := w.clone()
	cp.walletBodies = append([]WalletBody{}, bodies...)
	cp.version = version
	return cp, nil
}

// UpdatePbkdf2Iterations changes the iterations used to encrypt the wallet
// and its double encrypted secrets. These are encrypted again with the new
// iterations, that's why the second password is required for double
// encrypted wallets
func (w *Wallet) UpdatePbkdf2Iterations(
	iterations int, secondPassword string,
) (*Wallet, error) {
	if iterations < 1 {
		return nil, ErrInvalidIterations
	}
	codec, err := w.secretCodec(secondPassword)
	if err != nil {
		return nil, err
	}

	cp := w.clone()
	cp.options.Pbkdf2Iterations = iterations
	if !w.doubleEncryption || iterations == w.options.Pbkdf2Iterations {
		return cp, nil
	}

	next := codec
	next.iterations = iterations
	cp, err = cp.mapSecrets(codec.reseal(next))
	if err != nil {
		return nil, err
	}
	cp.dpasswordHash = wallet.HashSecondPassword(
		w.sharedKey, secondPassword, iterations,
	)
	return cp, nil
}

// UpdateFeePerKb ...
func (w *Wallet) UpdateFeePerKb(feePerKb int64) *Wallet {
	cp := w.clone()
	cp.options.FeePerKb = feePerKb
	return cp
}

// UpdateTxNotes sets the note of a transaction. An empty note removes it
func (w *Wallet) UpdateTxNotes(txHash, note string) *Wallet {
	notes := w.TxNotes()
	if len(note) > 0 {
		notes[txHash] = note
	} else {
		delete(notes, txHash)
	}
	cp := w.clone()
	cp.txNotes = notes
	return cp
}

// AddAddressBookEntry appends a contact to the address book
func (w *Wallet) AddAddressBookEntry(entry AddressBookEntry) *Wallet {
	cp := w.clone()
	cp.addressBook = append(w.AddressBook(), entry)
	return cp
}

// EnableDoubleEncryption encrypts every secret of the wallet with the given
// second password
func (w *Wallet) EnableDoubleEncryption(secondPassword string) (*Wallet, error) {
	if w.doubleEncryption {
		return nil, ErrAlreadyDoubleEncrypted
	}
	if len(secondPassword) <= 0 {
		return nil, wallet.ErrNullSecondPassword
	}

	next := secretCodec{
		sharedKey:      w.sharedKey,
		secondPassword: secondPassword,
		iterations:     w.options.Pbkdf2Iterations,
		enabled:        true,
	}
	cp, err := w.mapSecrets(secretCodec{}.reseal(next))
	if err != nil {
		return nil, err
	}
	cp.doubleEncryption = true
	cp.dpasswordHash = wallet.HashSecondPassword(
		w.sharedKey, secondPassword, w.options.Pbkdf2Iterations,
	)
	return cp, nil
}

// DisableDoubleEncryption stores every secret of the wallet in plain text
func (w *Wallet) DisableDoubleEncryption(secondPassword string) (*Wallet, error) {
	if !w.doubleEncryption {
		return nil, ErrNotDoubleEncrypted
	}
	codec, err := w.secretCodec(secondPassword)
	if err != nil {
		return nil, err
	}
	cp, err := w.mapSecrets(codec.reseal(secretCodec{}))
	if err != nil {
		return nil, err
	}
	cp.doubleEncryption = false
	cp.dpasswordHash = ""
	return cp, nil
}

// ImportedAddressFromKey returns the imported address for the given key,
// with the key sealed according to the wallet double encryption settings.
// If info carries no address the compressed P2PKH one is used, otherwise it
// must be either P2PKH address of the key
func (w *Wallet) ImportedAddressFromKey(
	key *btcec.PrivateKey, secondPassword string, info ImportedAddress,
) (ImportedAddress, error) {
	if key == nil {
		return ImportedAddress{}, wallet.ErrInvalidPrivateKey
	}
	codec, err := w.secretCodec(secondPassword)
	if err != nil {
		return ImportedAddress{}, err
	}
	compressed, uncompressed, err := wallet.LegacyAddresses(key.PubKey())
	if err != nil {
		return ImportedAddress{}, err
	}
	switch info.Address {
	case "":
		info.Address = compressed
	case compressed, uncompressed:
	default:
		return ImportedAddress{}, ErrKeyAddressMismatch
	}
	priv, err := codec.seal(wallet.EncodePrivateKey(key))
	if err != nil {
		return ImportedAddress{}, err
	}

	info.PrivateKey = priv
	return info, nil
}

// AddImportedAddress appends the address to the imported address list
func (w *Wallet) AddImportedAddress(addr ImportedAddress) *Wallet {
	cp := w.clone()
	cp.importedAddresses = append(w.ImportedAddresses(), addr)
	return cp
}

// ReplaceOrAddImportedAddress replaces the imported address with the same
// address, or appends it if not found
func (w *Wallet) ReplaceOrAddImportedAddress(addr ImportedAddress) *Wallet {
	addresses := w.ImportedAddresses()
	for i, a := range addresses {
		if a.Address == addr.Address {
			addresses[i] = addr
			cp := w.clone()
			cp.importedAddresses = addresses
			return cp
		}
	}
	return w.AddImportedAddress(addr)
}

// UpdateKeyForImportedAddress returns the imported address matching the
// given key, updated with the key sealed according to the wallet double
// encryption settings. The result is meant to be applied with
// ReplaceOrAddImportedAddress
func (w *Wallet) UpdateKeyForImportedAddress(
	key *btcec.PrivateKey, secondPassword string,
) (ImportedAddress, error) {
	if key == nil {
		return ImportedAddress{}, wallet.ErrInvalidPrivateKey
	}
	compressed, uncompressed, err := wallet.LegacyAddresses(key.PubKey())
	if err != nil {
		return ImportedAddress{}, err
	}
	existing, ok := w.importedAddress(compressed)
	if !ok {
		if existing, ok = w.importedAddress(uncompressed); !ok {
			return ImportedAddress{}, ErrNoSuchAddress
		}
	}
	return w.ImportedAddressFromKey(key, secondPassword, existing)
}

// UpdateImportedAddressArchivedState archives or restores an imported address
func (w *Wallet) UpdateImportedAddressArchivedState(
	address string, archived bool,
) (*Wallet, error) {
	existing, ok := w.importedAddress(address)
	if !ok {
		return nil, ErrNoSuchAddress
	}
	return w.ReplaceOrAddImportedAddress(existing.UpdateArchivedState(archived)), nil
}

// ContainsImportedAddress ...
func (w *Wallet) ContainsImportedAddress(address string) bool {
	_, ok := w.importedAddress(address)
	return ok
}

// LabelFromImportedAddress returns the label of the imported address, or the
// address itself when unlabelled
func (w *Wallet) LabelFromImportedAddress(address string) (string, error) {
	existing, ok := w.importedAddress(address)
	if !ok {
		return "", ErrNoSuchAddress
	}
	if len(existing.Label) > 0 {
		return existing.Label, nil
	}
	return existing.Address, nil
}

func (w *Wallet) importedAddress(address string) (ImportedAddress, bool) {
	for _, a := range w.importedAddresses {
		if a.Address == address {
			return a, true
		}
	}
	return ImportedAddress{}, false
}

func (w *Wallet) secretCodec(secondPassword string) (secretCodec, error) {
	if err := w.ValidateSecondPassword(secondPassword); err != nil {
		return secretCodec{}, err
	}
	return secretCodec{
		sharedKey:      w.sharedKey,
		secondPassword: secondPassword,
		iterations:     w.options.Pbkdf2Iterations,
		enabled:        w.doubleEncryption,
	}, nil
}

func (w *Wallet) updateAccount(
	index int, fn func(a Account) Account,
) (*Wallet, error) {
	body, err := w.WalletBody()
	if err != nil {
		return nil, err
	}
	account, err := body.Account(index)
	if err != nil {
		return nil, err
	}
	body, err = body.UpdateAccount(index, fn(account))
	if err != nil {
		return nil, err
	}
	return w.withPrimaryBody(body), nil
}

func (w *Wallet) withPrimaryBody(body WalletBody) *Wallet {
	bodies := w.WalletBodies()
	bodies[DefaultWalletBodyIndex] = body
	cp := w.clone()
	cp.walletBodies = bodies
	return cp
}

func (w *Wallet) mapSecrets(fn func(Secret) (Secret, error)) (*Wallet, error) {
	bodies := make([]WalletBody, 0, len(w.walletBodies))
	for _, b := range w.walletBodies {
		body, err := b.mapSecrets(fn)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}

	addresses := make([]ImportedAddress, 0, len(w.importedAddresses))
	for _, a := range w.importedAddresses {
		priv, err := fn(a.PrivateKey)
		if err != nil {
			return nil, err
		}
		a.PrivateKey = priv
		addresses = append(addresses, a)
	}

	cp := w.clone()
	cp.walletBodies = bodies
	cp.importedAddresses = addresses
	return cp, nil
}

func (w *Wallet) secrets() []Secret {
	secrets := make([]Secret, 0)
	for _, b := range w.walletBodies {
		secrets = append(secrets, b.secrets()...)
	}
	for _, a := range w.importedAddresses {
		secrets = append(secrets, a.PrivateKey)
	}
	return secrets
}

// clone returns a shallow copy of the wallet. Slices and maps are never
// modified in place, so sharing them between copies is safe
func (w *Wallet) clone() *Wallet {
	cp := *w
	return &cp
}
