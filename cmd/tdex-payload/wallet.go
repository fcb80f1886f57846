package main

import (
	"context"
	"strings"

	"github.com/tdex-network/tdex-payload/internal/core/domain"
	"github.com/tdex-network/tdex-payload/pkg/wallet"
	"github.com/urfave/cli/v2"
)

const defaultLabel = "My Bitcoin Wallet"

var create = cli.Command{
	Name:  "create",
	Usage: "create a new wallet with a random seed",
	Flags: []cli.Flag{
		passwordFlag,
		&cli.StringFlag{
			Name:  "label",
			Usage: "the label of the first account",
			Value: defaultLabel,
		},
	},
	Action: createAction,
}

var recoverwallet = cli.Command{
	Name:  "recover",
	Usage: "recover a wallet from its mnemonic",
	Flags: []cli.Flag{
		passwordFlag,
		&cli.StringFlag{
			Name:     "mnemonic",
			Usage:    "the space separated words of the seed",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "passphrase",
			Usage: "the optional BIP39 passphrase",
		},
		&cli.StringFlag{
			Name:  "label",
			Usage: "the label of the first account",
			Value: defaultLabel,
		},
		&cli.IntFlag{
			Name: "accounts",
			Usage: "the number of accounts to restore, if not set used accounts " +
				"are discovered by querying the explorer",
		},
	},
	Action: recoverAction,
}

var list = cli.Command{
	Name:   "list",
	Usage:  "list the identifiers of the stored wallets",
	Action: listAction,
}

var info = cli.Command{
	Name:   "info",
	Usage:  "get info about the accounts of a wallet",
	Flags:  []cli.Flag{guidFlag, passwordFlag},
	Action: infoAction,
}

var deletewallet = cli.Command{
	Name:   "delete",
	Usage:  "delete a wallet",
	Flags:  []cli.Flag{guidFlag, passwordFlag},
	Action: deleteAction,
}

var address = cli.Command{
	Name:  "address",
	Usage: "derive a receive address of an account",
	Flags: []cli.Flag{
		guidFlag, passwordFlag, accountFlag,
		&cli.UintFlag{
			Name:  "index",
			Usage: "the index of the address",
		},
	},
	Action: addressAction,
}

func createAction(ctx *cli.Context) error {
	svc, cleanup, err := getService()
	if err != nil {
		return err
	}
	defer cleanup()

	base, err := svc.CreateWallet(
		context.Background(), ctx.String("password"), ctx.String("label"),
	)
	if err != nil {
		return err
	}
	return printWalletInfo(base)
}

func recoverAction(ctx *cli.Context) error {
	svc, cleanup, err := getService()
	if err != nil {
		return err
	}
	defer cleanup()

	words := strings.Fields(ctx.String("mnemonic"))
	passphrase := ctx.String("passphrase")
	password := ctx.String("password")
	label := ctx.String("label")

	var base *domain.WalletBase
	if numAccounts := ctx.Int("accounts"); numAccounts > 0 {
		base, err = svc.RestoreWallet(
			context.Background(), words, passphrase, password, label,
			numAccounts,
		)
	} else {
		base, err = svc.RecoverWallet(
			context.Background(), words, passphrase, password, label,
		)
	}
	if err != nil {
		return err
	}
	return printWalletInfo(base)
}

func listAction(ctx *cli.Context) error {
	svc, cleanup, err := getService()
	if err != nil {
		return err
	}
	defer cleanup()

	guids, err := svc.ListWallets(context.Background())
	if err != nil {
		return err
	}
	return printJSON(map[string][]string{"wallets": guids})
}

func infoAction(ctx *cli.Context) error {
	svc, cleanup, err := getService()
	if err != nil {
		return err
	}
	defer cleanup()

	base, err := svc.LoadWallet(
		context.Background(), ctx.String("guid"), ctx.String("password"),
	)
	if err != nil {
		return err
	}
	return printWalletInfo(base)
}

func deleteAction(ctx *cli.Context) error {
	svc, cleanup, err := getService()
	if err != nil {
		return err
	}
	defer cleanup()

	return svc.DeleteWallet(
		context.Background(), ctx.String("guid"), ctx.String("password"),
	)
}

func addressAction(ctx *cli.Context) error {
	svc, cleanup, err := getService()
	if err != nil {
		return err
	}
	defer cleanup()

	addr, err := svc.ReceiveAddress(
		context.Background(), ctx.String("guid"), ctx.String("password"),
		ctx.Int("account"), uint32(ctx.Uint("index")),
	)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"address": addr})
}

type accountInfo struct {
	Index       int               `json:"index"`
	Label       string            `json:"label"`
	Archived    bool              `json:"archived"`
	DefaultType wallet.Scheme     `json:"default_type"`
	XPubs       map[string]string `json:"xpubs"`
}

type walletInfo struct {
	GUID             string        `json:"guid"`
	Version          int           `json:"version"`
	DoubleEncrypted  bool          `json:"double_encrypted"`
	Pbkdf2Iterations int           `json:"pbkdf2_iterations"`
	FeePerKb         int64         `json:"fee_per_kb"`
	DefaultAccount   int           `json:"default_account"`
	Accounts         []accountInfo `json:"accounts"`
	TxNotes          int           `json:"tx_notes"`
	Checksum         string        `json:"checksum"`
}

func newWalletInfo(base *domain.WalletBase) (walletInfo, error) {
	w := base.Wallet
	body, err := w.WalletBody()
	if err != nil {
		return walletInfo{}, err
	}

	accounts := make([]accountInfo, 0, body.NumAccounts())
	for i, a := range body.Accounts() {
		xpubs := make(map[string]string)
		for _, d := range a.Derivations() {
			xpubs[string(d.Scheme())] = d.XPub()
		}
		accounts = append(accounts, accountInfo{
			Index:       i,
			Label:       a.Label(),
			Archived:    a.IsArchived(),
			DefaultType: a.DefaultType(),
			XPubs:       xpubs,
		})
	}

	return walletInfo{
		GUID:             w.GUID(),
		Version:          w.Version(),
		DoubleEncrypted:  w.IsDoubleEncrypted(),
		Pbkdf2Iterations: w.Options().Pbkdf2Iterations,
		FeePerKb:         w.Options().FeePerKb,
		DefaultAccount:   body.DefaultAccountIdx(),
		Accounts:         accounts,
		TxNotes:          len(w.TxNotes()),
		Checksum:         base.PayloadChecksum,
	}, nil
}

func printWalletInfo(base *domain.WalletBase) error {
	res, err := newWalletInfo(base)
	if err != nil {
		return err
	}
	return printJSON(res)
}
