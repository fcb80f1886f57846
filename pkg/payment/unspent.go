package payment

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/tdex-network/tdex-payload/pkg/wallet"
)

// Utxo is a spendable output as returned by a balance service, enriched with
// the account-relative derivation path of the address holding it
type Utxo struct {
	TxHash        string
	Index         uint32
	Value         btcutil.Amount
	Address       string
	Confirmations int
	// XPub is the account xpub the output was derived from, if any
	XPub string
	// Path is relative to XPub in the form "M/chain/index"
	Path       string
	ScriptType wallet.ScriptType
}

// IsSegwit returns whether the output is spent with witness data
func (u Utxo) IsSegwit() bool {
	return u.ScriptType.IsSegwit()
}

func totalValue(utxos []Utxo) btcutil.Amount {
	var total btcutil.Amount
	for _, u := range utxos {
		total += u.Value
	}
	return total
}

func scriptTypes(utxos []Utxo) []wallet.ScriptType {
	types := make([]wallet.ScriptType, 0, len(utxos))
	for _, u := range utxos {
		types = append(types, u.ScriptType)
	}
	return types
}
