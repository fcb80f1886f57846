package domain

import "github.com/tdex-network/tdex-payload/pkg/wallet"

// Account is an HD account of a wallet body. Its shape depends on the
// wrapper version it comes from: V3 accounts have a single legacy derivation,
// V4 accounts have one derivation per supported scheme
type Account struct {
	version     int
	label       string
	defaultType wallet.Scheme
	archived    bool
	derivations []Derivation
}

// NewAccountV3 returns a legacy-only account
func NewAccountV3(label string, derivation Derivation) Account {
	return Account{
		version:     WrapperV3,
		label:       label,
		defaultType: wallet.SchemeLegacy,
		derivations: []Derivation{derivation},
	}
}

// NewAccountV4 returns an account with the given derivations, the default
// one being of type defaultType
func NewAccountV4(
	label string, defaultType wallet.Scheme, derivations []Derivation,
) Account {
	return Account{
		version:     WrapperV4,
		label:       label,
		defaultType: defaultType,
		derivations: append([]Derivation{}, derivations...),
	}
}

// Version ...
func (a Account) Version() int {
	return a.version
}

// Label ...
func (a Account) Label() string {
	return a.label
}

// DefaultType ...
func (a Account) DefaultType() wallet.Scheme {
	return a.defaultType
}

// IsArchived ...
func (a Account) IsArchived() bool {
	return a.archived
}

// Derivations returns a copy of the account derivations
func (a Account) Derivations() []Derivation {
	return append([]Derivation{}, a.derivations...)
}

// Derivation returns the derivation of the given scheme, if any
func (a Account) Derivation(scheme wallet.Scheme) (Derivation, bool) {
	for _, d := range a.derivations {
		if d.scheme == scheme {
			return d, true
		}
	}
	return Derivation{}, false
}

// DefaultDerivation ...
func (a Account) DefaultDerivation() Derivation {
	if d, ok := a.Derivation(a.defaultType); ok {
		return d
	}
	return a.derivations[0]
}

// XPub returns the xpub of the derivation of the given scheme, or an empty
// string if the account doesn't support it
func (a Account) XPub(scheme wallet.Scheme) string {
	d, _ := a.Derivation(scheme)
	return d.xpub
}

// ID identifies the account within a wallet body
func (a Account) ID() string {
	return a.derivations[0].xpub
}

// AddressLabels returns the receive address labels of the default derivation
func (a Account) AddressLabels() []AddressLabel {
	return a.DefaultDerivation().AddressLabels()
}

// UpdateLabel returns a copy of the account with the new label
func (a Account) UpdateLabel(label string) Account {
	a.label = label
	return a
}

// UpdateArchivedState returns a copy of the account with the archived flag
// set accordingly
func (a Account) UpdateArchivedState(archived bool) Account {
	a.archived = archived
	return a
}

// UpdateDefaultType returns a copy of the account with a new default
// derivation. Unsupported schemes leave the account untouched
func (a Account) UpdateDefaultType(scheme wallet.Scheme) Account {
	if _, ok := a.Derivation(scheme); ok {
		a.defaultType = scheme
	}
	return a
}

// UpdateAddressLabel sets (or clears when empty) the label of the receive
// address at index of the default derivation
func (a Account) UpdateAddressLabel(index int, label string) Account {
	def := a.DefaultDerivation()
	return a.replaceDerivation(def.withAddressLabel(index, label))
}

func (a Account) withDerivations(derivations []Derivation) Account {
	a.derivations = derivations
	return a
}

func (a Account) replaceDerivation(derivation Derivation) Account {
	derivations := make([]Derivation, 0, len(a.derivations))
	for _, d := range a.derivations {
		if d.scheme == derivation.scheme {
			d = derivation
		}
		derivations = append(derivations, d)
	}
	return a.withDerivations(derivations)
}

func (a Account) mapXPrivs(fn func(Secret) (Secret, error)) (Account, error) {
	derivations := make([]Derivation, 0, len(a.derivations))
	for _, d := range a.derivations {
		xpriv, err := fn(d.xpriv)
		if err != nil {
			return Account{}, err
		}
		derivations = append(derivations, d.withXPriv(xpriv))
	}
	return a.withDerivations(derivations), nil
}
