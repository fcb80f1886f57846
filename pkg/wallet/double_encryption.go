package wallet

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// EncryptSecret double encrypts a wallet secret (seed, xpriv or private key)
// with the concatenation of the wallet shared key and the second password
func EncryptSecret(
	plaintext, sharedKey, secondPassword string, iterations int,
) (string, error) {
	if len(sharedKey) <= 0 {
		return "", ErrNullSharedKey
	}
	if len(secondPassword) <= 0 {
		return "", ErrNullSecondPassword
	}
	return Encrypt(EncryptOpts{
		PlainText:  plaintext,
		Password:   sharedKey + secondPassword,
		Iterations: iterations,
	})
}

// DecryptSecret reverts EncryptSecret. A missing or wrong second password
// always results in ErrDecryption
func DecryptSecret(
	cyphertext, sharedKey, secondPassword string, iterations int,
) (string, error) {
	if len(sharedKey) <= 0 {
		return "", ErrNullSharedKey
	}
	if len(secondPassword) <= 0 {
		return "", ErrDecryption
	}
	plaintext, err := Decrypt(DecryptOpts{
		CypherText: cyphertext,
		Password:   sharedKey + secondPassword,
		Iterations: iterations,
	})
	if err != nil {
		if err == ErrInvalidCypherText {
			return "", ErrDecryption
		}
		return "", err
	}
	return plaintext, nil
}

// HashSecondPassword returns the hex encoded digest stored in a wallet to
// validate a candidate second password without decrypting any secret.
// The digest is sha256 applied iterations times to sharedKey+password
func HashSecondPassword(sharedKey, password string, iterations int) string {
	if iterations < 1 {
		iterations = 1
	}
	digest := sha256.Sum256([]byte(sharedKey + password))
	for i := 1; i < iterations; i++ {
		digest = sha256.Sum256(digest[:])
	}
	return hex.EncodeToString(digest[:])
}

// ValidateSecondPassword checks the candidate password against the stored
// hash and returns ErrDecryption on mismatch
func ValidateSecondPassword(
	passwordHash, sharedKey, candidate string, iterations int,
) error {
	if len(candidate) <= 0 {
		return ErrDecryption
	}
	hash := HashSecondPassword(sharedKey, candidate, iterations)
	if subtle.ConstantTimeCompare([]byte(hash), []byte(passwordHash)) != 1 {
		return ErrDecryption
	}
	return nil
}
