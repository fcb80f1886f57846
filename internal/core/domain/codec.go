package domain

import (
	"encoding/json"
	"fmt"

	"github.com/tdex-network/tdex-payload/pkg/wallet"
)

// The types below are the JSON shapes of the decrypted payload. The write path
// always emits every field listed here, the read path ignores unknown keys.

type walletJSON struct {
	GUID             string                `json:"guid"`
	SharedKey        string                `json:"sharedKey"`
	DoubleEncryption bool                  `json:"double_encryption"`
	DPasswordHash    string                `json:"dpasswordhash"`
	TxNotes          map[string]string     `json:"tx_notes"`
	Options          optionsJSON           `json:"options"`
	AddressBook      []addressBookJSON     `json:"address_book"`
	Keys             []importedAddressJSON `json:"keys"`
	HDWallets        []walletBodyJSON      `json:"hd_wallets"`
}

type optionsJSON struct {
	Pbkdf2Iterations   int   `json:"pbkdf2_iterations"`
	FeePerKb           int64 `json:"fee_per_kb"`
	Html5Notifications bool  `json:"html5_notifications"`
	LogoutTime         int64 `json:"logout_time"`
}

type addressBookJSON struct {
	Label string `json:"label"`
	Addr  string `json:"addr"`
}

type importedAddressJSON struct {
	Addr                 string `json:"addr"`
	Priv                 string `json:"priv,omitempty"`
	Label                string `json:"label"`
	CreatedTime          int64  `json:"created_time"`
	CreatedDeviceName    string `json:"created_device_name"`
	CreatedDeviceVersion string `json:"created_device_version"`
	Tag                  int    `json:"tag"`
}

type walletBodyJSON struct {
	SeedHex           string            `json:"seed_hex"`
	Passphrase        string            `json:"passphrase"`
	MnemonicVerified  bool              `json:"mnemonic_verified"`
	DefaultAccountIdx int               `json:"default_account_idx"`
	Accounts          []json.RawMessage `json:"accounts"`
}

type addressCacheJSON struct {
	ReceiveAccount string `json:"receiveAccount"`
	ChangeAccount  string `json:"changeAccount"`
}

type addressLabelJSON struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

type derivationJSON struct {
	Type          string             `json:"type"`
	Purpose       uint32             `json:"purpose"`
	XPriv         string             `json:"xpriv"`
	XPub          string             `json:"xpub"`
	Cache         addressCacheJSON   `json:"cache"`
	AddressLabels []addressLabelJSON `json:"address_labels"`
}

type accountV4JSON struct {
	Label             string           `json:"label"`
	Archived          bool             `json:"archived"`
	DefaultDerivation string           `json:"default_derivation"`
	Derivations       []derivationJSON `json:"derivations"`
}

type accountV3JSON struct {
	Label         string             `json:"label"`
	Archived      bool               `json:"archived"`
	XPriv         string             `json:"xpriv"`
	XPub          string             `json:"xpub"`
	Cache         addressCacheJSON   `json:"cache"`
	AddressLabels []addressLabelJSON `json:"address_labels"`
}

// ToJSON serializes the wallet into its canonical payload form
func (w *Wallet) ToJSON() ([]byte, error) {
	bodies := make([]walletBodyJSON, 0, len(w.walletBodies))
	for _, b := range w.walletBodies {
		body, err := walletBodyToJSON(b, w.version)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}

	book := make([]addressBookJSON, 0, len(w.addressBook))
	for _, e := range w.addressBook {
		book = append(book, addressBookJSON{Label: e.Label, Addr: e.Address})
	}

	keys := make([]importedAddressJSON, 0, len(w.importedAddresses))
	for _, a := range w.importedAddresses {
		keys = append(keys, importedAddressJSON{
			Addr:                 a.Address,
			Priv:                 a.PrivateKey.Stored(),
			Label:                a.Label,
			CreatedTime:          a.CreatedTime,
			CreatedDeviceName:    a.CreatedDeviceName,
			CreatedDeviceVersion: a.CreatedDeviceVersion,
			Tag:                  a.Tag,
		})
	}

	return json.Marshal(walletJSON{
		GUID:             w.guid,
		SharedKey:        w.sharedKey,
		DoubleEncryption: w.doubleEncryption,
		DPasswordHash:    w.dpasswordHash,
		TxNotes:          w.TxNotes(),
		Options: optionsJSON{
			Pbkdf2Iterations:   w.options.Pbkdf2Iterations,
			FeePerKb:           w.options.FeePerKb,
			Html5Notifications: w.options.Html5Notifications,
			LogoutTime:         w.options.LogoutTime,
		},
		AddressBook: book,
		Keys:        keys,
		HDWallets:   bodies,
	})
}

// WalletFromJSON parses a decrypted payload of the given structural version.
// Missing secrets or public keys make the whole parsing fail
func WalletFromJSON(data []byte, version int) (*Wallet, error) {
	if err := validateVersion(version); err != nil {
		return nil, err
	}

	var w walletJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if len(w.GUID) <= 0 {
		return nil, missingField("guid")
	}
	if len(w.SharedKey) <= 0 {
		return nil, missingField("sharedKey")
	}

	bodies := make([]WalletBody, 0, len(w.HDWallets))
	for _, b := range w.HDWallets {
		body, err := walletBodyFromJSON(b, version, w.DoubleEncryption)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}

	book := make([]AddressBookEntry, 0, len(w.AddressBook))
	for _, e := range w.AddressBook {
		book = append(book, AddressBookEntry{Label: e.Label, Address: e.Addr})
	}

	addresses := make([]ImportedAddress, 0, len(w.Keys))
	for _, k := range w.Keys {
		if len(k.Addr) <= 0 {
			return nil, missingField("addr")
		}
		addresses = append(addresses, ImportedAddress{
			Address:              k.Addr,
			PrivateKey:           newSecret(k.Priv, w.DoubleEncryption && len(k.Priv) > 0),
			Label:                k.Label,
			CreatedTime:          k.CreatedTime,
			CreatedDeviceName:    k.CreatedDeviceName,
			CreatedDeviceVersion: k.CreatedDeviceVersion,
			Tag:                  k.Tag,
		})
	}

	notes := make(map[string]string, len(w.TxNotes))
	for k, v := range w.TxNotes {
		notes[k] = v
	}

	return &Wallet{
		guid:             w.GUID,
		sharedKey:        w.SharedKey,
		doubleEncryption: w.DoubleEncryption,
		dpasswordHash:    w.DPasswordHash,
		txNotes:          notes,
		options: Options{
			Pbkdf2Iterations:   w.Options.Pbkdf2Iterations,
			FeePerKb:           w.Options.FeePerKb,
			Html5Notifications: w.Options.Html5Notifications,
			LogoutTime:         w.Options.LogoutTime,
		}.withDefaults(),
		addressBook:       book,
		importedAddresses: addresses,
		walletBodies:      bodies,
		version:           version,
	}, nil
}

func walletBodyToJSON(b WalletBody, version int) (walletBodyJSON, error) {
	accounts := make([]json.RawMessage, 0, len(b.accounts))
	for _, a := range b.accounts {
		var (
			raw []byte
			err error
		)
		if version == WrapperV3 {
			d := a.derivations[0]
			raw, err = json.Marshal(accountV3JSON{
				Label:         a.label,
				Archived:      a.archived,
				XPriv:         d.xpriv.Stored(),
				XPub:          d.xpub,
				Cache:         addressCacheToJSON(d.cache),
				AddressLabels: addressLabelsToJSON(d.addressLabels),
			})
		} else {
			derivations := make([]derivationJSON, 0, len(a.derivations))
			for _, d := range a.derivations {
				derivations = append(derivations, derivationJSON{
					Type:          string(d.scheme),
					Purpose:       d.purpose,
					XPriv:         d.xpriv.Stored(),
					XPub:          d.xpub,
					Cache:         addressCacheToJSON(d.cache),
					AddressLabels: addressLabelsToJSON(d.addressLabels),
				})
			}
			raw, err = json.Marshal(accountV4JSON{
				Label:             a.label,
				Archived:          a.archived,
				DefaultDerivation: string(a.defaultType),
				Derivations:       derivations,
			})
		}
		if err != nil {
			return walletBodyJSON{}, err
		}
		accounts = append(accounts, raw)
	}

	return walletBodyJSON{
		SeedHex:           b.seedHex.Stored(),
		Passphrase:        b.passphrase,
		MnemonicVerified:  b.mnemonicVerified,
		DefaultAccountIdx: b.defaultAccountIdx,
		Accounts:          accounts,
	}, nil
}

func walletBodyFromJSON(
	b walletBodyJSON, version int, encrypted bool,
) (WalletBody, error) {
	if len(b.SeedHex) <= 0 {
		return WalletBody{}, missingField("seed_hex")
	}

	accounts := make([]Account, 0, len(b.Accounts))
	for _, raw := range b.Accounts {
		var (
			account Account
			err     error
		)
		if version == WrapperV3 {
			account, err = accountV3FromJSON(raw, encrypted)
		} else {
			account, err = accountV4FromJSON(raw, encrypted)
		}
		if err != nil {
			return WalletBody{}, err
		}
		accounts = append(accounts, account)
	}

	defaultIdx := b.DefaultAccountIdx
	if defaultIdx < 0 || defaultIdx >= len(accounts) {
		defaultIdx = 0
	}

	return WalletBody{
		seedHex:           newSecret(b.SeedHex, encrypted),
		passphrase:        b.Passphrase,
		mnemonicVerified:  b.MnemonicVerified,
		defaultAccountIdx: defaultIdx,
		accounts:          accounts,
	}, nil
}

func accountV3FromJSON(raw []byte, encrypted bool) (Account, error) {
	var a accountV3JSON
	if err := json.Unmarshal(raw, &a); err != nil {
		return Account{}, err
	}
	d, err := derivationFromJSON(derivationJSON{
		Type:          string(wallet.SchemeLegacy),
		XPriv:         a.XPriv,
		XPub:          a.XPub,
		Cache:         a.Cache,
		AddressLabels: a.AddressLabels,
	}, encrypted)
	if err != nil {
		return Account{}, err
	}
	return NewAccountV3(a.Label, d).UpdateArchivedState(a.Archived), nil
}

func accountV4FromJSON(raw []byte, encrypted bool) (Account, error) {
	var a accountV4JSON
	if err := json.Unmarshal(raw, &a); err != nil {
		return Account{}, err
	}
	if len(a.Derivations) <= 0 {
		return Account{}, missingField("derivations")
	}

	derivations := make([]Derivation, 0, len(a.Derivations))
	for _, dj := range a.Derivations {
		d, err := derivationFromJSON(dj, encrypted)
		if err != nil {
			return Account{}, err
		}
		derivations = append(derivations, d)
	}

	defaultType := wallet.Scheme(a.DefaultDerivation)
	if _, err := defaultType.Purpose(); err != nil {
		defaultType = derivations[0].scheme
	}
	return NewAccountV4(a.Label, defaultType, derivations).
		UpdateArchivedState(a.Archived), nil
}

func derivationFromJSON(d derivationJSON, encrypted bool) (Derivation, error) {
	if len(d.XPub) <= 0 {
		return Derivation{}, missingField("xpub")
	}
	if len(d.XPriv) <= 0 {
		return Derivation{}, missingField("xpriv")
	}
	derivation, err := NewDerivation(
		wallet.Scheme(d.Type), d.XPub, newSecret(d.XPriv, encrypted),
		AddressCache{
			ReceiveAccount: d.Cache.ReceiveAccount,
			ChangeAccount:  d.Cache.ChangeAccount,
		},
	)
	if err != nil {
		return Derivation{}, err
	}

	labels := make([]AddressLabel, 0, len(d.AddressLabels))
	for _, l := range d.AddressLabels {
		labels = append(labels, AddressLabel{Index: l.Index, Label: l.Label})
	}
	return derivation.withAddressLabels(labels), nil
}

func addressCacheToJSON(c AddressCache) addressCacheJSON {
	return addressCacheJSON{
		ReceiveAccount: c.ReceiveAccount,
		ChangeAccount:  c.ChangeAccount,
	}
}

func addressLabelsToJSON(labels []AddressLabel) []addressLabelJSON {
	out := make([]addressLabelJSON, 0, len(labels))
	for _, l := range labels {
		out = append(out, addressLabelJSON{Index: l.Index, Label: l.Label})
	}
	return out
}

func missingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}
