package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-payload/internal/config"
	"github.com/tdex-network/tdex-payload/internal/core/application/payload"
	"github.com/tdex-network/tdex-payload/internal/core/domain"
	"github.com/tdex-network/tdex-payload/internal/core/ports"
	"github.com/tdex-network/tdex-payload/internal/infrastructure/blockchain"
	dbbadger "github.com/tdex-network/tdex-payload/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/tdex-payload/internal/infrastructure/storage/db/inmemory"
	"github.com/urfave/cli/v2"
)

const envPrefix = config.EnvPrefix + "_"

var (
	guidFlag = &cli.StringFlag{
		Name:     "guid",
		Usage:    "the identifier of the wallet",
		Required: true,
	}
	passwordFlag = &cli.StringFlag{
		Name:     "password",
		Usage:    "the main password of the wallet",
		Required: true,
	}
	secondPasswordFlag = &cli.StringFlag{
		Name:  "second_password",
		Usage: "the second password of a double encrypted wallet",
	}
	accountFlag = &cli.IntFlag{
		Name:  "account",
		Usage: "the index of the account",
	}
)

func main() {
	app := cli.NewApp()

	app.Version = "0.0.1"
	app.Name = "tdex-payload"
	app.Usage = "Command line interface to manage encrypted HD wallet payloads"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "datadir",
			Usage: "the directory where wallets are stored",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "the database type, either badger or inmemory",
		},
		&cli.BoolFlag{
			Name:  "offline",
			Usage: "don't connect to the explorer",
		},
	}
	app.Before = initConfig
	app.Commands = append(
		app.Commands,
		&create,
		&recoverwallet,
		&list,
		&info,
		&deletewallet,
		&address,
		&addaccount,
		&archive,
		&balance,
		&note,
		&mnemonic,
		&plan,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func initConfig(ctx *cli.Context) error {
	// flags take precedence over the environment
	flagsToEnv := map[string]string{
		"datadir": config.DatadirKey,
		"db":      config.DBTypeKey,
		"offline": config.OfflineKey,
	}
	for flag, key := range flagsToEnv {
		if !ctx.IsSet(flag) {
			continue
		}
		if err := os.Setenv(envPrefix+key, ctx.String(flag)); err != nil {
			return err
		}
	}

	if err := config.InitConfig(); err != nil {
		return err
	}

	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))
	return nil
}

// getService returns the payload service and a function to release the
// resources it holds
func getService() (*payload.Service, func(), error) {
	repo, err := newWalletRepository()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { repo.Close() }

	var balances ports.BalanceService
	if !config.GetBool(config.OfflineKey) {
		explorerSvc := blockchain.NewService(
			config.GetString(config.ExplorerEndpointKey),
			config.GetExplorerRequestTimeout(),
		)
		balances, err = blockchain.NewGuardedBalanceService(
			explorerSvc, config.GetInt(config.ExplorerRateLimitKey),
		)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	svc, err := payload.NewService(repo, balances, payload.Config{
		Pbkdf2Iterations:  config.GetInt(config.Pbkdf2IterationsKey),
		FeePerKb:          config.GetInt64(config.FeePerKbKey),
		RecoveryGapLimit:  config.GetInt(config.RecoveryGapLimitKey),
		RecoveryBatchSize: config.GetInt(config.RecoveryBatchSizeKey),
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

func newWalletRepository() (domain.WalletRepository, error) {
	switch dbType := config.GetString(config.DBTypeKey); dbType {
	case config.DBInMemory:
		return inmemory.NewWalletRepository(), nil
	case config.DBBadger:
		return dbbadger.NewWalletRepository(config.GetDbDir(), nil)
	default:
		return nil, fmt.Errorf("unsupported db type %s", dbType)
	}
}

func printJSON(v interface{}) error {
	buf, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("unable to encode response: %w", err)
	}
	fmt.Println(string(buf))
	return nil
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[tdex-payload] %v\n", err)
	}
	os.Exit(1)
}
