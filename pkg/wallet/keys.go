package wallet

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

const (
	// ReceiveChain is the external branch of an account
	ReceiveChain uint32 = 0
	// ChangeChain is the internal branch of an account
	ChangeChain uint32 = 1

	// LegacyPurpose is the BIP44 purpose
	LegacyPurpose uint32 = 44
	// SegwitPurpose is the BIP84 purpose
	SegwitPurpose uint32 = 84
)

// Scheme identifies the address scheme of an account derivation
type Scheme string

const (
	// SchemeLegacy derives P2PKH addresses at m/44'/0'/account'
	SchemeLegacy Scheme = "legacy"
	// SchemeBech32 derives P2WPKH addresses at m/84'/0'/account'
	SchemeBech32 Scheme = "bech32"
)

// Schemes lists the supported schemes in the order accounts store them
var Schemes = []Scheme{SchemeLegacy, SchemeBech32}

// Purpose returns the BIP43 purpose of the scheme
func (s Scheme) Purpose() (uint32, error) {
	switch s {
	case SchemeLegacy:
		return LegacyPurpose, nil
	case SchemeBech32:
		return SegwitPurpose, nil
	default:
		return 0, ErrInvalidScheme
	}
}

// ScriptType returns the script type of the addresses of the scheme
func (s Scheme) ScriptType() (ScriptType, error) {
	switch s {
	case SchemeLegacy:
		return P2PKH, nil
	case SchemeBech32:
		return P2WPKH, nil
	default:
		return 0, ErrInvalidScheme
	}
}

// NetParams are the chain params used to encode keys and addresses
var NetParams = &chaincfg.MainNetParams

// NewMasterKey returns the HD root for the given BIP39 seed
func NewMasterKey(seed []byte) (*hdkeychain.ExtendedKey, error) {
	if len(seed) <= 0 {
		return nil, ErrNullSeed
	}
	return hdkeychain.NewMaster(seed, NetParams)
}

// DeriveAccountKey derives the extended private key of an account for the
// given scheme from the master key
func DeriveAccountKey(
	masterKey *hdkeychain.ExtendedKey, scheme Scheme, account uint32,
) (*hdkeychain.ExtendedKey, error) {
	if masterKey == nil {
		return nil, ErrNullExtendedKey
	}
	path, err := AccountPath(scheme, account)
	if err != nil {
		return nil, err
	}
	return derivePath(masterKey, path)
}

// AccountKeys contains the serialized keys of an account derivation, together
// with the neutered receive and change branches
type AccountKeys struct {
	XPriv       string
	XPub        string
	ReceiveXPub string
	ChangeXPub  string
}

// ExtendedKeysForAccount serializes the given account key. XPriv is left empty
// for neutered keys
func ExtendedKeysForAccount(accountKey *hdkeychain.ExtendedKey) (*AccountKeys, error) {
	if accountKey == nil {
		return nil, ErrNullExtendedKey
	}

	xpub, err := accountKey.Neuter()
	if err != nil {
		return nil, err
	}
	receive, err := xpub.Derive(ReceiveChain)
	if err != nil {
		return nil, err
	}
	change, err := xpub.Derive(ChangeChain)
	if err != nil {
		return nil, err
	}

	keys := &AccountKeys{
		XPub:        xpub.String(),
		ReceiveXPub: receive.String(),
		ChangeXPub:  change.String(),
	}
	if accountKey.IsPrivate() {
		keys.XPriv = accountKey.String()
	}
	return keys, nil
}

// DeriveSigningKey derives the private key at chain/index of an account
func DeriveSigningKey(
	accountKey *hdkeychain.ExtendedKey, chain, index uint32,
) (*btcec.PrivateKey, error) {
	if accountKey == nil {
		return nil, ErrNullExtendedKey
	}
	if chain != ReceiveChain && chain != ChangeChain {
		return nil, ErrInvalidChain
	}
	key, err := derivePath(accountKey, DerivationPath{chain, index})
	if err != nil {
		return nil, err
	}
	return key.ECPrivKey()
}

// AddressFromBranch derives the address at index of a neutered branch key,
// like the ones stored in an account address cache
func AddressFromBranch(branchXPub string, index uint32, scheme Scheme) (string, error) {
	branch, err := hdkeychain.NewKeyFromString(branchXPub)
	if err != nil {
		return "", err
	}
	child, err := branch.Derive(index)
	if err != nil {
		return "", err
	}
	pubkey, err := child.ECPubKey()
	if err != nil {
		return "", err
	}
	return AddressFromPubKey(pubkey, scheme)
}

// AddressFromPubKey encodes the compressed public key as an address of the
// given scheme
func AddressFromPubKey(pubkey *btcec.PublicKey, scheme Scheme) (string, error) {
	hash := btcutil.Hash160(pubkey.SerializeCompressed())
	switch scheme {
	case SchemeLegacy:
		addr, err := btcutil.NewAddressPubKeyHash(hash, NetParams)
		if err != nil {
			return "", err
		}
		return addr.EncodeAddress(), nil
	case SchemeBech32:
		addr, err := btcutil.NewAddressWitnessPubKeyHash(hash, NetParams)
		if err != nil {
			return "", err
		}
		return addr.EncodeAddress(), nil
	default:
		return "", ErrInvalidScheme
	}
}

// LegacyAddresses returns the P2PKH addresses of the public key, in its
// compressed and uncompressed serialization
func LegacyAddresses(pubkey *btcec.PublicKey) (compressed, uncompressed string, err error) {
	compressed, err = AddressFromPubKey(pubkey, SchemeLegacy)
	if err != nil {
		return "", "", err
	}
	addr, err := btcutil.NewAddressPubKeyHash(
		btcutil.Hash160(pubkey.SerializeUncompressed()), NetParams,
	)
	if err != nil {
		return "", "", err
	}
	return compressed, addr.EncodeAddress(), nil
}

// ParseExtendedKey deserializes an xpub or xpriv
func ParseExtendedKey(key string) (*hdkeychain.ExtendedKey, error) {
	if len(key) <= 0 {
		return nil, ErrNullExtendedKey
	}
	return hdkeychain.NewKeyFromString(key)
}

// EncodePrivateKey returns the base58 encoding of the raw private key, the
// format imported addresses store their keys in
func EncodePrivateKey(key *btcec.PrivateKey) string {
	return base58.Encode(key.Serialize())
}

// DecodePrivateKey is the inverse of EncodePrivateKey
func DecodePrivateKey(encoded string) (*btcec.PrivateKey, error) {
	raw := base58.Decode(encoded)
	if len(raw) != btcec.PrivKeyBytesLen {
		return nil, ErrInvalidPrivateKey
	}
	key, _ := btcec.PrivKeyFromBytes(raw)
	return key, nil
}

// EncodeWIF returns the compressed WIF encoding of the key
func EncodeWIF(key *btcec.PrivateKey) (string, error) {
	wif, err := btcutil.NewWIF(key, NetParams, true)
	if err != nil {
		return "", err
	}
	return wif.String(), nil
}

func derivePath(
	key *hdkeychain.ExtendedKey, path DerivationPath,
) (*hdkeychain.ExtendedKey, error) {
	var err error
	for _, step := range path {
		key, err = key.Derive(step)
		if err != nil {
			return nil, err
		}
	}
	return key, nil
}

// ScriptTypeFromAddress returns the type of the output script locking funds to
// the given address
func ScriptTypeFromAddress(address string) (ScriptType, error) {
	addr, err := btcutil.DecodeAddress(address, NetParams)
	if err != nil {
		return 0, err
	}
	switch addr.(type) {
	case *btcutil.AddressPubKeyHash:
		return P2PKH, nil
	case *btcutil.AddressScriptHash:
		return P2SH_P2WPKH, nil
	case *btcutil.AddressWitnessPubKeyHash:
		return P2WPKH, nil
	case *btcutil.AddressTaproot:
		return P2TR, nil
	default:
		return 0, ErrInvalidScriptType
	}
}
