package main

import (
	"context"

	"github.com/urfave/cli/v2"
)

var addaccount = cli.Command{
	Name:  "addaccount",
	Usage: "derive a new account for a wallet",
	Flags: []cli.Flag{
		guidFlag, passwordFlag, secondPasswordFlag,
		&cli.StringFlag{
			Name:     "label",
			Usage:    "the label of the new account",
			Required: true,
		},
	},
	Action: addAccountAction,
}

var archive = cli.Command{
	Name:  "archive",
	Usage: "archive or restore an account",
	Flags: []cli.Flag{
		guidFlag, passwordFlag, accountFlag,
		&cli.BoolFlag{
			Name:  "restore",
			Usage: "unarchive the account",
		},
	},
	Action: archiveAction,
}

var balance = cli.Command{
	Name:   "balance",
	Usage:  "get the final balance of an account",
	Flags:  []cli.Flag{guidFlag, passwordFlag, accountFlag},
	Action: balanceAction,
}

var note = cli.Command{
	Name:  "note",
	Usage: "set or remove the note of a transaction",
	Flags: []cli.Flag{
		guidFlag, passwordFlag,
		&cli.StringFlag{
			Name:     "txid",
			Usage:    "the hash of the transaction",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "note",
			Usage: "the note, if empty the existing one is removed",
		},
	},
	Action: noteAction,
}

var mnemonic = cli.Command{
	Name:   "mnemonic",
	Usage:  "reveal the mnemonic of a wallet",
	Flags:  []cli.Flag{guidFlag, passwordFlag, secondPasswordFlag},
	Action: mnemonicAction,
}

func addAccountAction(ctx *cli.Context) error {
	svc, cleanup, err := getService()
	if err != nil {
		return err
	}
	defer cleanup()

	base, err := svc.AddAccount(
		context.Background(), ctx.String("guid"), ctx.String("password"),
		ctx.String("second_password"), ctx.String("label"),
	)
	if err != nil {
		return err
	}
	return printWalletInfo(base)
}

func archiveAction(ctx *cli.Context) error {
	svc, cleanup, err := getService()
	if err != nil {
		return err
	}
	defer cleanup()

	base, err := svc.UpdateAccountArchivedState(
		context.Background(), ctx.String("guid"), ctx.String("password"),
		ctx.Int("account"), !ctx.Bool("restore"),
	)
	if err != nil {
		return err
	}
	return printWalletInfo(base)
}

func balanceAction(ctx *cli.Context) error {
	svc, cleanup, err := getService()
	if err != nil {
		return err
	}
	defer cleanup()

	amount, err := svc.AccountBalance(
		context.Background(), ctx.String("guid"), ctx.String("password"),
		ctx.Int("account"),
	)
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{
		"satoshis": int64(amount),
		"btc":      formatBtcAmount(amount),
	})
}

func noteAction(ctx *cli.Context) error {
	svc, cleanup, err := getService()
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = svc.UpdateTxNote(
		context.Background(), ctx.String("guid"), ctx.String("password"),
		ctx.String("txid"), ctx.String("note"),
	)
	return err
}

func mnemonicAction(ctx *cli.Context) error {
	svc, cleanup, err := getService()
	if err != nil {
		return err
	}
	defer cleanup()

	words, err := svc.Mnemonic(
		context.Background(), ctx.String("guid"), ctx.String("password"),
		ctx.String("second_password"),
	)
	if err != nil {
		return err
	}
	return printJSON(map[string][]string{"mnemonic": words})
}
