package wallet

import (
	"errors"
	"fmt"
)

var (
	// ErrDecryption is returned when a cypher can't be opened with the given
	// password, either because the password is wrong or the cypher malformed
	ErrDecryption = errors.New("decryption failed: wrong password or malformed cypher")
	// ErrNullPassword ...
	ErrNullPassword = errors.New("password must not be null")
	// ErrNullPlainText ...
	ErrNullPlainText = errors.New("text to encrypt must not be null")
	// ErrNullCypherText ...
	ErrNullCypherText = errors.New("cypher to decrypt must not be null")
	// ErrNullSharedKey ...
	ErrNullSharedKey = errors.New("shared key must not be null")
	// ErrNullSecondPassword is returned when a double encrypted secret is
	// accessed without second password
	ErrNullSecondPassword = fmt.Errorf("second %w", ErrNullPassword)
	// ErrNullDerivationPath ...
	ErrNullDerivationPath = errors.New("derivation path must not be null")
	// ErrNullSeed ...
	ErrNullSeed = errors.New("seed must not be null")
	// ErrNullExtendedKey ...
	ErrNullExtendedKey = errors.New("extended key must not be null")

	// ErrInvalidIterations ...
	ErrInvalidIterations = errors.New("pbkdf2 iterations must be a positive number")
	// ErrInvalidCypherText ...
	ErrInvalidCypherText = errors.New("cypher must be in base64 format")
	// ErrInvalidEntropySize ...
	ErrInvalidEntropySize = errors.New(
		"entropy size must be a multiple of 32 in the range [128,256]",
	)
	// ErrInvalidMnemonic ...
	ErrInvalidMnemonic = errors.New("mnemonic is invalid")
	// ErrInvalidSeedHex ...
	ErrInvalidSeedHex = errors.New("seed must be an hex encoded entropy")
	// ErrInvalidDerivationPath ...
	ErrInvalidDerivationPath = errors.New("invalid derivation path")
	// ErrInvalidDerivationPathLength ...
	ErrInvalidDerivationPathLength = errors.New(
		"derivation path must be a relative path in the form \"M/chain/index\"",
	)
	// ErrInvalidChain ...
	ErrInvalidChain = errors.New("chain must be either 0 (receive) or 1 (change)")
	// ErrInvalidScheme ...
	ErrInvalidScheme = errors.New("unknown derivation scheme")
	// ErrInvalidPrivateKey ...
	ErrInvalidPrivateKey = errors.New("private key must be a base58 encoded 32 byte array")
	// ErrInvalidScriptType ...
	ErrInvalidScriptType = errors.New("unknown script type")
	// ErrMalformedDerivationPath ...
	ErrMalformedDerivationPath = errors.New(
		"path must not start or end with a '/' and " +
			"can optionally start with 'm/' for absolute paths",
	)
	// ErrOutOfRangeAccount ...
	ErrOutOfRangeAccount = fmt.Errorf(
		"account index must be in range [0, %d]", MaxHardenedValue,
	)
)
