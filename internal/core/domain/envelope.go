package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/tdex-network/tdex-payload/pkg/wallet"
)

// WalletWrapper is the at-rest envelope of a wallet. Payload is the wallet
// JSON encrypted with the main password, empty for wallets not yet populated
type WalletWrapper struct {
	Version          int
	Pbkdf2Iterations int
	Payload          string
}

type walletWrapperJSON struct {
	Version          int             `json:"version"`
	Pbkdf2Iterations int             `json:"pbkdf2_iterations"`
	Payload          json.RawMessage `json:"payload,omitempty"`
}

// DecodeWalletWrapper parses an envelope. A missing payload, or one that is
// not a string, results in an empty wrapper rather than an error
func DecodeWalletWrapper(data []byte) (*WalletWrapper, error) {
	var w walletWrapperJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}

	var payload string
	if len(w.Payload) > 0 {
		if err := json.Unmarshal(w.Payload, &payload); err != nil {
			payload = ""
		}
	}
	iterations := w.Pbkdf2Iterations
	if iterations <= 0 {
		iterations = wallet.DefaultIterations
	}

	return &WalletWrapper{
		Version:          w.Version,
		Pbkdf2Iterations: iterations,
		Payload:          payload,
	}, nil
}

// Encode serializes the envelope
func (w *WalletWrapper) Encode() ([]byte, error) {
	wrapper := walletWrapperJSON{
		Version:          w.Version,
		Pbkdf2Iterations: w.Pbkdf2Iterations,
	}
	if w.HasPayload() {
		payload, err := json.Marshal(w.Payload)
		if err != nil {
			return nil, err
		}
		wrapper.Payload = payload
	}
	return json.Marshal(wrapper)
}

// HasPayload ...
func (w *WalletWrapper) HasPayload() bool {
	return len(w.Payload) > 0
}

// Checksum returns the checksum of the encrypted payload
func (w *WalletWrapper) Checksum() string {
	if !w.HasPayload() {
		return ""
	}
	return PayloadChecksum(w.Payload)
}

// WithDecryptedPayload opens the payload with the main password and parses
// it according to the wrapper version
func (w *WalletWrapper) WithDecryptedPayload(password string) (*WalletBase, error) {
	if !w.HasPayload() {
		return nil, ErrEmptyPayload
	}
	if err := validateVersion(w.Version); err != nil {
		return nil, err
	}

	plaintext, err := wallet.Decrypt(wallet.DecryptOpts{
		CypherText: w.Payload,
		Password:   password,
		Iterations: w.Pbkdf2Iterations,
	})
	if err != nil {
		if err == wallet.ErrInvalidCypherText {
			return nil, ErrDecryption
		}
		return nil, err
	}

	decoded, err := WalletFromJSON([]byte(plaintext), w.Version)
	if err != nil {
		return nil, err
	}
	return &WalletBase{
		Wallet:          decoded,
		PayloadChecksum: w.Checksum(),
	}, nil
}

// WalletBase is a decrypted wallet together with the checksum of the payload
// it was opened from, empty for wallets never stored
type WalletBase struct {
	Wallet          *Wallet
	PayloadChecksum string
}

// NewWalletBase ...
func NewWalletBase(w *Wallet) *WalletBase {
	return &WalletBase{Wallet: w}
}

// EncryptAndWrapPayload serializes the wallet and encrypts it with the main
// password and the wallet iterations. It returns the plain JSON and the
// envelope to store, carrying the wallet structural version
func (b *WalletBase) EncryptAndWrapPayload(
	password string,
) (string, *WalletWrapper, error) {
	if b.Wallet == nil {
		return "", nil, ErrEmptyPayload
	}

	plaintext, err := b.Wallet.ToJSON()
	if err != nil {
		return "", nil, err
	}
	iterations := b.Wallet.options.Pbkdf2Iterations
	payload, err := wallet.Encrypt(wallet.EncryptOpts{
		PlainText:  string(plaintext),
		Password:   password,
		Iterations: iterations,
	})
	if err != nil {
		return "", nil, err
	}

	return string(plaintext), &WalletWrapper{
		Version:          b.Wallet.version,
		Pbkdf2Iterations: iterations,
		Payload:          payload,
	}, nil
}

// PayloadChecksum returns the hex encoded sha256 of the encrypted payload
func PayloadChecksum(payload string) string {
	digest := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(digest[:])
}
