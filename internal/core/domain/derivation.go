package domain

import (
	"sort"

	"github.com/tdex-network/tdex-payload/pkg/wallet"
)

// AddressCache holds the neutered receive and change branches of an account
// derivation, so that addresses can be derived without touching the xpriv
type AddressCache struct {
	ReceiveAccount string
	ChangeAccount  string
}

// AddressLabel is a user label for the receive address at Index
type AddressLabel struct {
	Index int
	Label string
}

// Derivation is the key tree of an account for one address scheme
type Derivation struct {
	scheme        wallet.Scheme
	purpose       uint32
	xpub          string
	xpriv         Secret
	cache         AddressCache
	addressLabels []AddressLabel
}

// NewDerivation returns a derivation for the given scheme and keys
func NewDerivation(
	scheme wallet.Scheme, xpub string, xpriv Secret, cache AddressCache,
) (Derivation, error) {
	purpose, err := scheme.Purpose()
	if err != nil {
		return Derivation{}, err
	}
	return Derivation{
		scheme:  scheme,
		purpose: purpose,
		xpub:    xpub,
		xpriv:   xpriv,
		cache:   cache,
	}, nil
}

// Scheme ...
func (d Derivation) Scheme() wallet.Scheme {
	return d.scheme
}

// Purpose ...
func (d Derivation) Purpose() uint32 {
	return d.purpose
}

// XPub ...
func (d Derivation) XPub() string {
	return d.xpub
}

// XPriv ...
func (d Derivation) XPriv() Secret {
	return d.xpriv
}

// Cache ...
func (d Derivation) Cache() AddressCache {
	return d.cache
}

// AddressLabels returns a copy of the receive address labels
func (d Derivation) AddressLabels() []AddressLabel {
	return append([]AddressLabel{}, d.addressLabels...)
}

// ReceiveAddress derives the receive address at index from the cache
func (d Derivation) ReceiveAddress(index uint32) (string, error) {
	return wallet.AddressFromBranch(d.cache.ReceiveAccount, index, d.scheme)
}

// ChangeAddress derives the change address at index from the cache
func (d Derivation) ChangeAddress(index uint32) (string, error) {
	return wallet.AddressFromBranch(d.cache.ChangeAccount, index, d.scheme)
}

func (d Derivation) withXPriv(xpriv Secret) Derivation {
	d.xpriv = xpriv
	return d
}

func (d Derivation) withAddressLabel(index int, label string) Derivation {
	labels := make([]AddressLabel, 0, len(d.addressLabels)+1)
	for _, l := range d.addressLabels {
		if l.Index != index {
			labels = append(labels, l)
		}
	}
	if len(label) > 0 {
		labels = append(labels, AddressLabel{Index: index, Label: label})
	}
	sort.SliceStable(labels, func(i, j int) bool {
		return labels[i].Index < labels[j].Index
	})
	return d.withAddressLabels(labels)
}

func (d Derivation) withAddressLabels(labels []AddressLabel) Derivation {
	if len(labels) <= 0 {
		d.addressLabels = nil
		return d
	}
	d.addressLabels = append([]AddressLabel{}, labels...)
	return d
}
