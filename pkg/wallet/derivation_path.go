package wallet

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// DerivationPath is the internal representation of a hierarchical
// deterministic wallet path
type DerivationPath []uint32

// AccountPath returns the BIP44-like path m/purpose'/0'/account' of the given
// scheme
func AccountPath(scheme Scheme, account uint32) (DerivationPath, error) {
	purpose, err := scheme.Purpose()
	if err != nil {
		return nil, err
	}
	if account > MaxHardenedValue {
		return nil, ErrOutOfRangeAccount
	}
	return DerivationPath{
		hdkeychain.HardenedKeyStart + purpose,
		hdkeychain.HardenedKeyStart + 0,
		hdkeychain.HardenedKeyStart + account,
	}, nil
}

// ParseDerivationPath converts a derivation path string to the
// internal binary representation
func ParseDerivationPath(strPath string) (DerivationPath, error) {
	var path DerivationPath

	elems := strings.Split(strPath, "/")
	switch {
	case strPath == "":
		return nil, ErrNullDerivationPath
	case containsEmptyString(elems):
		return nil, ErrMalformedDerivationPath
	case len(elems) < 2:
		return nil, ErrMalformedDerivationPath
	default:
		if first := strings.TrimSpace(elems[0]); first == "m" || first == "M" {
			elems = elems[1:]
		}
	}

	for _, elem := range elems {
		elem = strings.TrimSpace(elem)
		var value uint32

		if strings.HasSuffix(elem, "'") {
			value = hdkeychain.HardenedKeyStart
			elem = strings.TrimSpace(strings.TrimSuffix(elem, "'"))
		}

		bigval, ok := new(big.Int).SetString(elem, 0)
		if !ok {
			return nil, fmt.Errorf("invalid elem '%s' in path", elem)
		}

		max := math.MaxUint32 - value
		if bigval.Sign() < 0 || bigval.Cmp(big.NewInt(int64(max))) > 0 {
			if value == 0 {
				return nil, fmt.Errorf("elem %v must be in range [0, %d]", bigval, max)
			}
			return nil, fmt.Errorf("elem %v must be in hardened range [0, %d]", bigval, max)
		}
		value += uint32(bigval.Uint64())

		path = append(path, value)
	}

	return path, nil
}

// ParseAddressPath parses the account-relative path "M/chain/index" that
// balance services attach to unspents derived from an account xpub
func ParseAddressPath(strPath string) (chain, index uint32, err error) {
	path, err := ParseDerivationPath(strPath)
	if err != nil {
		return 0, 0, err
	}
	if len(path) != 2 {
		return 0, 0, ErrInvalidDerivationPathLength
	}
	if path[0] != ReceiveChain && path[0] != ChangeChain {
		return 0, 0, ErrInvalidChain
	}
	if path[1] >= hdkeychain.HardenedKeyStart {
		return 0, 0, ErrInvalidDerivationPath
	}
	return path[0], path[1], nil
}

// AddressPath formats chain and index as "M/chain/index"
func AddressPath(chain, index uint32) string {
	return "M/" + strconv.FormatUint(uint64(chain), 10) + "/" +
		strconv.FormatUint(uint64(index), 10)
}

// String converts a binary derivation path to its canonical representation
func (path DerivationPath) String() string {
	if len(path) <= 0 {
		return ""
	}

	result := "m"
	for _, component := range path {
		var hardened bool
		if component >= hdkeychain.HardenedKeyStart {
			component -= hdkeychain.HardenedKeyStart
			hardened = true
		}
		result = fmt.Sprintf("%s/%d", result, component)
		if hardened {
			result += "'"
		}
	}
	return result
}

func containsEmptyString(composedPath []string) bool {
	for _, s := range composedPath {
		if s == "" {
			return true
		}
	}
	return false
}
