package main

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

var btcUnit = decimal.New(1, 8)

var plan = cli.Command{
	Name:  "plan",
	Usage: "select the outputs of an account to spend for a payment",
	Flags: []cli.Flag{
		guidFlag, passwordFlag, secondPasswordFlag, accountFlag,
		&cli.StringFlag{
			Name:     "address",
			Usage:    "the destination address",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "amount",
			Usage:    "the amount in BTC to send, ie. 0.0004",
			Required: true,
		},
		&cli.Int64Flag{
			Name:  "fee_per_kb",
			Usage: "the fee rate in satoshis per kilobyte, defaults to the wallet one",
		},
		&cli.BoolFlag{
			Name:  "show_keys",
			Usage: "print the public keys that sign the selected inputs",
		},
	},
	Action: planAction,
}

func planAction(ctx *cli.Context) error {
	amount, err := parseBtcAmount(ctx.String("amount"))
	if err != nil {
		return err
	}

	svc, cleanup, err := getService()
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := svc.PlanPayment(
		context.Background(), ctx.String("guid"), ctx.String("password"),
		ctx.String("second_password"), ctx.Int("account"),
		ctx.String("address"), amount, btcutil.Amount(ctx.Int64("fee_per_kb")),
	)
	if err != nil {
		return err
	}

	inputs := make([]map[string]interface{}, 0, len(res.Spendable.Outputs))
	for i, u := range res.Spendable.Outputs {
		input := map[string]interface{}{
			"txid":    u.TxHash,
			"vout":    u.Index,
			"value":   int64(u.Value),
			"address": u.Address,
		}
		if ctx.Bool("show_keys") {
			input["pubkey"] = hex.EncodeToString(
				res.Keys[i].PubKey().SerializeCompressed(),
			)
		}
		inputs = append(inputs, input)
	}

	return printJSON(map[string]interface{}{
		"inputs": inputs,
		"fee":    formatBtcAmount(res.Spendable.AbsoluteFee),
		"change": formatBtcAmount(res.Spendable.Change),
	})
}

// parseBtcAmount converts an amount expressed in BTC into satoshis
func parseBtcAmount(amount string) (btcutil.Amount, error) {
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %s", err)
	}
	if !value.IsPositive() {
		return 0, fmt.Errorf("amount must be greater than zero")
	}
	sats := value.Mul(btcUnit)
	if !sats.Equal(sats.Truncate(0)) {
		return 0, fmt.Errorf("amount must have at most 8 decimal places")
	}
	if sats.GreaterThan(decimal.NewFromInt(btcutil.MaxSatoshi)) {
		return 0, fmt.Errorf("amount exceeds the max supply")
	}
	return btcutil.Amount(sats.IntPart()), nil
}

func formatBtcAmount(amount btcutil.Amount) string {
	return decimal.NewFromInt(int64(amount)).Div(btcUnit).StringFixed(8)
}
