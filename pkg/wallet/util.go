package wallet

import (
	"encoding/base64"
	"encoding/hex"
	"math"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

const (
	// MaxHardenedValue is the max value for hardened indexes of BIP32
	// derivation paths
	MaxHardenedValue = math.MaxUint32 - hdkeychain.HardenedKeyStart
)

// IsKeyUnencrypted returns whether the given secret looks like a plain key:
// an extended private key, or a raw 32 byte key in base58 or hex format
func IsKeyUnencrypted(key string) bool {
	if strings.HasPrefix(key, "xprv") || strings.HasPrefix(key, "tprv") {
		_, err := hdkeychain.NewKeyFromString(key)
		return err == nil
	}
	if len(key) == 64 {
		if _, err := hex.DecodeString(key); err == nil {
			return true
		}
	}
	decoded := base58.Decode(key)
	return len(decoded) == 32 || len(decoded) == 33
}

// IsKeyEncrypted returns whether the given secret looks like the output of
// Encrypt: base64 of at least an iv and one cypher block
func IsKeyEncrypted(key string) bool {
	if IsKeyUnencrypted(key) {
		return false
	}
	data, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return false
	}
	return len(data) >= 2*ivSize && len(data)%ivSize == 0
}
