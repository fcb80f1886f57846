package domain

import "github.com/tdex-network/tdex-payload/pkg/wallet"

// Secret is a wallet secret (seed, xpriv or private key) as stored in the
// payload: either in plain text or double encrypted with the wallet second
// password. Only Reveal gives access to the plain value of an encrypted one
type Secret struct {
	value     string
	encrypted bool
}

// PlainSecret ...
func PlainSecret(value string) Secret {
	return Secret{value: value}
}

// EncryptedSecret ...
func EncryptedSecret(cypher string) Secret {
	return Secret{value: cypher, encrypted: true}
}

func newSecret(value string, encrypted bool) Secret {
	return Secret{value: value, encrypted: encrypted}
}

// IsZero returns whether the secret is not set at all
func (s Secret) IsZero() bool {
	return len(s.value) <= 0
}

// IsEncrypted ...
func (s Secret) IsEncrypted() bool {
	return s.encrypted
}

// Stored returns the secret as it is persisted in the payload
func (s Secret) Stored() string {
	return s.value
}

// Plain returns the value of a plain secret and ErrSecretEncrypted otherwise
func (s Secret) Plain() (string, error) {
	if s.encrypted {
		return "", ErrSecretEncrypted
	}
	return s.value, nil
}

// Reveal returns the plain value of the secret, decrypting it if needed
func (s Secret) Reveal(
	sharedKey, secondPassword string, iterations int,
) (string, error) {
	if !s.encrypted {
		return s.value, nil
	}
	return wallet.DecryptSecret(s.value, sharedKey, secondPassword, iterations)
}

// Encrypt double encrypts a plain secret. Encrypted secrets are returned
// as they are
func (s Secret) Encrypt(
	sharedKey, secondPassword string, iterations int,
) (Secret, error) {
	if s.encrypted || s.IsZero() {
		return s, nil
	}
	cypher, err := wallet.EncryptSecret(s.value, sharedKey, secondPassword, iterations)
	if err != nil {
		return Secret{}, err
	}
	return EncryptedSecret(cypher), nil
}

// secretCodec seals and reveals the secrets of a wallet according to its
// double encryption settings. It's built only after the second password has
// been validated
type secretCodec struct {
	sharedKey      string
	secondPassword string
	iterations     int
	enabled        bool
}

func (c secretCodec) reveal(s Secret) (string, error) {
	if !s.IsEncrypted() {
		return s.value, nil
	}
	if !c.enabled {
		return "", ErrDecryption
	}
	return s.Reveal(c.sharedKey, c.secondPassword, c.iterations)
}

func (c secretCodec) seal(plain string) (Secret, error) {
	if !c.enabled {
		return PlainSecret(plain), nil
	}
	return PlainSecret(plain).Encrypt(c.sharedKey, c.secondPassword, c.iterations)
}

// reseal reveals the secret with c and seals it again with next
func (c secretCodec) reseal(next secretCodec) func(Secret) (Secret, error) {
	return func(s Secret) (Secret, error) {
		if s.IsZero() {
			return s, nil
		}
		plain, err := c.reveal(s)
		if err != nil {
			return Secret{}, err
		}
		return next.seal(plain)
	}
}
