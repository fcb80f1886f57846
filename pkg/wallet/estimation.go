package wallet

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txsizes"
)

// ScriptType is the standard type of an input or output script
type ScriptType int

const (
	P2PKH ScriptType = iota
	P2SH_P2WPKH
	P2WPKH
	P2TR
)

var scriptSizeByType = map[ScriptType]int{
	P2PKH:       txsizes.P2PKHPkScriptSize,
	P2SH_P2WPKH: txsizes.NestedP2WPKHPkScriptSize,
	P2WPKH:      txsizes.P2WPKHPkScriptSize,
	P2TR:        txsizes.P2TRPkScriptSize,
}

// String ...
func (t ScriptType) String() string {
	switch t {
	case P2PKH:
		return "p2pkh"
	case P2SH_P2WPKH:
		return "p2sh-p2wpkh"
	case P2WPKH:
		return "p2wpkh"
	case P2TR:
		return "p2tr"
	default:
		return "unknown"
	}
}

// IsSegwit returns whether spending the script requires witness data
func (t ScriptType) IsSegwit() bool {
	return t != P2PKH
}

// PkScriptSize returns the size of an output script of the given type
func (t ScriptType) PkScriptSize() (int, error) {
	size, ok := scriptSizeByType[t]
	if !ok {
		return 0, ErrInvalidScriptType
	}
	return size, nil
}

// TemplatePkScript returns an output script of the given type locking funds
// to an all-zero hash or key
func (t ScriptType) TemplatePkScript() ([]byte, error) {
	var (
		addr btcutil.Address
		err  error
	)
	switch t {
	case P2PKH:
		addr, err = btcutil.NewAddressPubKeyHash(make([]byte, 20), NetParams)
	case P2SH_P2WPKH:
		addr, err = btcutil.NewAddressScriptHashFromHash(make([]byte, 20), NetParams)
	case P2WPKH:
		addr, err = btcutil.NewAddressWitnessPubKeyHash(make([]byte, 20), NetParams)
	case P2TR:
		addr, err = btcutil.NewAddressTaproot(make([]byte, 32), NetParams)
	default:
		return nil, ErrInvalidScriptType
	}
	if err != nil {
		return nil, err
	}
	return txscript.PayToAddrScript(addr)
}

// InputVirtualSize returns the upper bound virtual size an input spending a
// script of the given type adds to a transaction
func (t ScriptType) InputVirtualSize() (int, error) {
	if _, ok := scriptSizeByType[t]; !ok {
		return 0, ErrInvalidScriptType
	}
	withInput, err := EstimateTxSize([]ScriptType{t}, nil, nil)
	if err != nil {
		return 0, err
	}
	withoutInputs, _ := EstimateTxSize(nil, nil, nil)
	return withInput - withoutInputs, nil
}

// ParseScriptType is the inverse of ScriptType.String
func ParseScriptType(str string) (ScriptType, error) {
	for t := range scriptSizeByType {
		if t.String() == str {
			return t, nil
		}
	}
	return 0, ErrInvalidScriptType
}

// EstimateTxSize makes an estimation of the virtual size of a transaction
// spending inputs of the given types to outputs of the given types.
// A non-nil changeType adds a change output of that type
func EstimateTxSize(
	inScriptTypes, outScriptTypes []ScriptType, changeType *ScriptType,
) (int, error) {
	var numP2PKH, numP2TR, numP2WPKH, numNested int
	for _, t := range inScriptTypes {
		switch t {
		case P2PKH:
			numP2PKH++
		case P2SH_P2WPKH:
			numNested++
		case P2WPKH:
			numP2WPKH++
		case P2TR:
			numP2TR++
		default:
			return 0, ErrInvalidScriptType
		}
	}

	outputs := make([]*wire.TxOut, 0, len(outScriptTypes))
	for _, t := range outScriptTypes {
		size, err := t.PkScriptSize()
		if err != nil {
			return 0, err
		}
		outputs = append(outputs, wire.NewTxOut(0, make([]byte, size)))
	}

	changeScriptSize := 0
	if changeType != nil {
		size, err := changeType.PkScriptSize()
		if err != nil {
			return 0, err
		}
		changeScriptSize = size
	}

	return txsizes.EstimateVirtualSize(
		numP2PKH, numP2TR, numP2WPKH, numNested, outputs, changeScriptSize,
	), nil
}
