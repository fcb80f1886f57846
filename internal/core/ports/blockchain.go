package ports

import "context"

// BalanceService is the blockchain data source used to discover the activity
// of accounts and addresses and to list their spendable outputs.
// Identifiers can be either extended public keys or addresses
type BalanceService interface {
	GetBalance(
		ctx context.Context, identifiers []string,
	) (map[string]Balance, error)
	GetUnspentOutputs(
		ctx context.Context, addresses []string,
	) ([]Unspent, error)
}

type Balance interface {
	GetFinalBalance() int64
	GetTxCount() int
	GetTotalReceived() int64
}

// Unspent is an output spendable by one of the queried identifiers. XPub and
// Path are set only for outputs found by querying an extended public key,
// Path being relative to the account, like M/0/3
type Unspent interface {
	GetTxHash() string
	GetIndex() uint32
	GetValue() int64
	GetAddress() string
	GetConfirmations() int
	GetXPub() string
	GetPath() string
}
