package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations is the number of pbkdf2 rounds used when a wallet
	// doesn't specify its own
	DefaultIterations = 5000

	keySize = 32
	ivSize  = aes.BlockSize
)

// EncryptOpts is the struct given to Encrypt method
type EncryptOpts struct {
	PlainText  string
	Password   string
	Iterations int
}

func (o EncryptOpts) validate() error {
	if len(o.PlainText) <= 0 {
		return ErrNullPlainText
	}
	if len(o.Password) <= 0 {
		return ErrNullPassword
	}
	if o.Iterations < 1 {
		return ErrInvalidIterations
	}
	return nil
}

// Encrypt encrypts (with AES-256-CBC) a plaintext with a key derived from the
// password through pbkdf2. The random IV doubles as the kdf salt and is
// prefixed to the returned base64 cypher
func Encrypt(opts EncryptOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	key := deriveKey(opts.Password, iv, opts.Iterations)
	blockCipher, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	padded, err := pad([]byte(opts.PlainText))
	if err != nil {
		return "", err
	}
	cyphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(blockCipher, iv).CryptBlocks(cyphertext, padded)

	return base64.StdEncoding.EncodeToString(append(iv, cyphertext...)), nil
}

// DecryptOpts is the struct given to Decrypt method
type DecryptOpts struct {
	CypherText string
	Password   string
	Iterations int
}

func (o DecryptOpts) validate() error {
	if len(o.CypherText) <= 0 {
		return ErrNullCypherText
	}
	if _, err := base64.StdEncoding.DecodeString(o.CypherText); err != nil {
		return ErrInvalidCypherText
	}
	if len(o.Password) <= 0 {
		return ErrNullPassword
	}
	if o.Iterations < 1 {
		return ErrInvalidIterations
	}
	return nil
}

// Decrypt decrypts (with AES-256-CBC) a cyphertext with the provided password.
// ErrDecryption is returned if the cypher is malformed or if the result isn't
// a valid non-empty utf8 text, which is what happens with a wrong password
func Decrypt(opts DecryptOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}

	data, _ := base64.StdEncoding.DecodeString(opts.CypherText)
	if len(data) < ivSize+aes.BlockSize || len(data)%aes.BlockSize != 0 {
		return "", ErrDecryption
	}
	iv, data := data[:ivSize], data[ivSize:]

	key := deriveKey(opts.Password, iv, opts.Iterations)
	blockCipher, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	plaintext := make([]byte, len(data))
	cipher.NewCBCDecrypter(blockCipher, iv).CryptBlocks(plaintext, data)

	plaintext, err = unpad(plaintext)
	if err != nil {
		return "", err
	}
	if len(plaintext) <= 0 || !utf8.Valid(plaintext) {
		return "", ErrDecryption
	}
	return string(plaintext), nil
}

func deriveKey(password string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, keySize, sha1.New)
}

// pad applies ISO 10126 padding: random filler with the pad length as last
// byte
func pad(data []byte) ([]byte, error) {
	padLen := aes.BlockSize - len(data)%aes.BlockSize
	filler := make([]byte, padLen)
	if _, err := rand.Read(filler[:padLen-1]); err != nil {
		return nil, err
	}
	filler[padLen-1] = byte(padLen)
	return append(append([]byte{}, data...), filler...), nil
}

func unpad(data []byte) ([]byte, error) {
	padLen := int(data[len(data)-1])
	if padLen < 1 || padLen > aes.BlockSize || padLen > len(data) {
		return nil, ErrDecryption
	}
	return data[:len(data)-padLen], nil
}
