package payment

import (
	"errors"
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/mempool"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/tdex-network/tdex-payload/pkg/wallet"
)

var (
	// ErrInvalidAmount ...
	ErrInvalidAmount = errors.New("amount must be a positive number")
	// ErrInvalidFeeRate ...
	ErrInvalidFeeRate = errors.New("fee rate must not be negative")
)

// SpendableCoinsOpts is the struct given to SpendableCoins method
type SpendableCoinsOpts struct {
	Unspents    []Utxo
	PaymentType wallet.ScriptType
	ChangeType  wallet.ScriptType
	Amount      btcutil.Amount
	FeePerKb    btcutil.Amount
	// Sweep makes every provided unspent an input of the spend
	Sweep bool
}

func (o SpendableCoinsOpts) validate() error {
	if o.Amount <= 0 {
		return ErrInvalidAmount
	}
	if o.FeePerKb < 0 {
		return ErrInvalidFeeRate
	}
	if _, err := o.PaymentType.PkScriptSize(); err != nil {
		return err
	}
	if _, err := o.ChangeType.PkScriptSize(); err != nil {
		return err
	}
	for _, u := range o.Unspents {
		if _, err := u.ScriptType.PkScriptSize(); err != nil {
			return err
		}
	}
	return nil
}

// SpendableUnspentOutputs is the spend plan returned by SpendableCoins.
// When InsufficientFunds is set the provided unspents can't cover amount and
// fees, Outputs is empty and Shortfall reports the missing value
type SpendableUnspentOutputs struct {
	Outputs           []Utxo
	AbsoluteFee       btcutil.Amount
	Change            btcutil.Amount
	InsufficientFunds bool
	Shortfall         btcutil.Amount
}

// HasChange returns whether the spend requires a change output
func (s SpendableUnspentOutputs) HasChange() bool {
	return s.Change > 0
}

// Total returns the value of the selected outputs
func (s SpendableUnspentOutputs) Total() btcutil.Amount {
	return totalValue(s.Outputs)
}

// SpendableCoins selects the unspents to cover the given amount and computes
// fee and change of the resulting transaction.
// Unspents that cost more to spend than they're worth are skipped, the others
// are consumed largest first until they cover amount plus the fee of a
// transaction without change. A change below the dust threshold of its script
// type is left to miners.
func SpendableCoins(opts SpendableCoinsOpts) (*SpendableUnspentOutputs, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	candidates := opts.Unspents
	if !opts.Sweep {
		var err error
		candidates, err = positiveYieldUnspents(opts.Unspents, opts.FeePerKb)
		if err != nil {
			return nil, err
		}
		sortByValueDesc(candidates)
	}

	var (
		selected   = make([]Utxo, 0, len(candidates))
		total      btcutil.Amount
		baseFee    btcutil.Amount
		enough     bool
		outputType = []wallet.ScriptType{opts.PaymentType}
	)
	for _, u := range candidates {
		selected = append(selected, u)
		total += u.Value
		if !opts.Sweep || len(selected) == len(candidates) {
			fee, err := estimateFee(selected, outputType, nil, opts.FeePerKb)
			if err != nil {
				return nil, err
			}
			baseFee = fee
			if total >= opts.Amount+baseFee {
				enough = true
				if !opts.Sweep {
					break
				}
			}
		}
	}

	if !enough {
		if len(selected) <= 0 {
			fee, err := estimateFee(nil, outputType, nil, opts.FeePerKb)
			if err != nil {
				return nil, err
			}
			baseFee = fee
		}
		return &SpendableUnspentOutputs{
			Outputs:           []Utxo{},
			InsufficientFunds: true,
			Shortfall:         opts.Amount + baseFee - total,
		}, nil
	}

	changeType := opts.ChangeType
	feeWithChange, err := estimateFee(
		selected, outputType, &changeType, opts.FeePerKb,
	)
	if err != nil {
		return nil, err
	}

	dust, err := DustThreshold(opts.ChangeType, opts.FeePerKb)
	if err != nil {
		return nil, err
	}

	change := total - opts.Amount - feeWithChange
	if change < dust {
		return &SpendableUnspentOutputs{
			Outputs:     selected,
			AbsoluteFee: total - opts.Amount,
		}, nil
	}

	return &SpendableUnspentOutputs{
		Outputs:     selected,
		AbsoluteFee: feeWithChange,
		Change:      change,
	}, nil
}

// MaximumAvailable returns the amount that can be sent to an output of the
// given type by spending every unspent worth spending, and the relative fee
func MaximumAvailable(
	unspents []Utxo, paymentType wallet.ScriptType, feePerKb btcutil.Amount,
) (btcutil.Amount, btcutil.Amount, error) {
	if feePerKb < 0 {
		return 0, 0, ErrInvalidFeeRate
	}

	spendable, err := positiveYieldUnspents(unspents, feePerKb)
	if err != nil {
		return 0, 0, err
	}
	if len(spendable) <= 0 {
		return 0, 0, nil
	}

	fee, err := estimateFee(
		spendable, []wallet.ScriptType{paymentType}, nil, feePerKb,
	)
	if err != nil {
		return 0, 0, err
	}

	available := totalValue(spendable) - fee
	if available <= 0 {
		return 0, fee, nil
	}
	return available, fee, nil
}

// DustThreshold returns the minimum value of an output of the given type.
// The threshold is the relay policy one, scaled up for fee rates above the
// default relay fee
func DustThreshold(
	scriptType wallet.ScriptType, feePerKb btcutil.Amount,
) (btcutil.Amount, error) {
	pkScript, err := scriptType.TemplatePkScript()
	if err != nil {
		return 0, err
	}
	dust := btcutil.Amount(mempool.GetDustThreshold(&wire.TxOut{PkScript: pkScript}))
	if feePerKb > txrules.DefaultRelayFeePerKb {
		dust = dust * feePerKb / txrules.DefaultRelayFeePerKb
	}
	return dust, nil
}

func estimateFee(
	inputs []Utxo, outputs []wallet.ScriptType, changeType *wallet.ScriptType,
	feePerKb btcutil.Amount,
) (btcutil.Amount, error) {
	size, err := wallet.EstimateTxSize(scriptTypes(inputs), outputs, changeType)
	if err != nil {
		return 0, err
	}
	return txrules.FeeForSerializeSize(feePerKb, size), nil
}

// positiveYieldUnspents filters out the unspents whose value doesn't cover
// the fee for spending them
func positiveYieldUnspents(
	unspents []Utxo, feePerKb btcutil.Amount,
) ([]Utxo, error) {
	spendable := make([]Utxo, 0, len(unspents))
	for _, u := range unspents {
		inputSize, err := u.ScriptType.InputVirtualSize()
		if err != nil {
			return nil, err
		}
		if u.Value > txrules.FeeForSerializeSize(feePerKb, inputSize) {
			spendable = append(spendable, u)
		}
	}
	return spendable, nil
}

func sortByValueDesc(utxos []Utxo) {
	sort.SliceStable(utxos, func(i, j int) bool {
		return utxos[i].Value > utxos[j].Value
	})
}
