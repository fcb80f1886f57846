package domain

import (
	"errors"

	"github.com/tdex-network/tdex-payload/pkg/wallet"
)

var (
	// ErrDecryption is returned for wrong (second) passwords and malformed
	// cyphers
	ErrDecryption = wallet.ErrDecryption
	// ErrNoSuchAddress is returned when an operation references an address
	// not contained in the wallet
	ErrNoSuchAddress = errors.New("no matching address found in wallet")
	// ErrKeyAddressMismatch is returned when a private key doesn't control
	// the imported address it's assigned to
	ErrKeyAddressMismatch = errors.New("private key doesn't match address")
	// ErrHDWallet is returned when HD key material is used before being
	// decrypted or can't be derived
	ErrHDWallet = errors.New("hd wallet private keys unavailable")
	// ErrSecretEncrypted is returned when accessing the plain value of a
	// double encrypted secret
	ErrSecretEncrypted = errors.New("secret is double encrypted")
	// ErrSecondPasswordNotExpected is returned when a second password is
	// provided for a wallet without double encryption
	ErrSecondPasswordNotExpected = errors.New(
		"second password specified on non double encrypted wallet",
	)
	// ErrMissingField is returned when a required field is missing from a
	// decrypted payload
	ErrMissingField = errors.New("missing required field")
	// ErrUnsupportedVersion ...
	ErrUnsupportedVersion = errors.New("unsupported wallet wrapper version")
	// ErrEmptyPayload is returned when decrypting a wrapper of a wallet not
	// yet populated
	ErrEmptyPayload = errors.New("wrapper payload is empty")
	// ErrNoWalletBody ...
	ErrNoWalletBody = errors.New("wallet has no hd wallet body")
	// ErrAccountNotFound ...
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountIndexOutOfRange ...
	ErrAccountIndexOutOfRange = errors.New("account index out of range")
	// ErrArchivedDefaultAccount is returned when the default account of a
	// wallet body would end up archived
	ErrArchivedDefaultAccount = errors.New("default account can't be archived")
	// ErrNullLabel ...
	ErrNullLabel = errors.New("label must not be null")
	// ErrInvalidIterations ...
	ErrInvalidIterations = wallet.ErrInvalidIterations
	// ErrWalletNotFound ...
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrWalletAlreadyExists ...
	ErrWalletAlreadyExists = errors.New("wallet already exists")
	// ErrChecksumMismatch is returned when updating a stored wallet whose
	// payload changed since it was fetched
	ErrChecksumMismatch = errors.New("stored payload checksum mismatch")
	// ErrAlreadyDoubleEncrypted ...
	ErrAlreadyDoubleEncrypted = errors.New("wallet is already double encrypted")
	// ErrNotDoubleEncrypted ...
	ErrNotDoubleEncrypted = errors.New("wallet is not double encrypted")
)
