package domain

// ImportedAddress is a standalone address not derived from any HD tree.
// Watch-only addresses have no private key
type ImportedAddress struct {
	Address              string
	PrivateKey           Secret
	Label                string
	CreatedTime          int64
	CreatedDeviceName    string
	CreatedDeviceVersion string
	Tag                  int
}

// IsArchived ...
func (a ImportedAddress) IsArchived() bool {
	return a.Tag == ArchivedTag
}

// IsWatchOnly returns whether the address can't be spent from
func (a ImportedAddress) IsWatchOnly() bool {
	return a.PrivateKey.IsZero()
}

// UpdateArchivedState returns a copy of the address with the tag set
// accordingly
func (a ImportedAddress) UpdateArchivedState(archived bool) ImportedAddress {
	if archived {
		a.Tag = ArchivedTag
	} else {
		a.Tag = NormalTag
	}
	return a
}

// AddressBookEntry is a contact of the wallet address book
type AddressBookEntry struct {
	Label   string
	Address string
}
