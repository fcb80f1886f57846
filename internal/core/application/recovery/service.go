package recovery

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-payload/internal/core/domain"
	"github.com/tdex-network/tdex-payload/internal/core/ports"
	"github.com/tdex-network/tdex-payload/pkg/wallet"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultGapLimit is the number of consecutive unused accounts after which
	// the discovery stops
	DefaultGapLimit = 5
	// DefaultBatchSize is the number of accounts queried with a single balance
	// request
	DefaultBatchSize = 5
)

var (
	// ErrInvalidMnemonic ...
	ErrInvalidMnemonic = fmt.Errorf("invalid mnemonic")
	// ErrMissingBalanceService ...
	ErrMissingBalanceService = fmt.Errorf("missing balance service")
	// ErrInvalidGapLimit ...
	ErrInvalidGapLimit = fmt.Errorf("gap limit must be a positive number")
	// ErrInvalidBatchSize ...
	ErrInvalidBatchSize = fmt.Errorf("batch size must be a positive number")
)

// Service rebuilds the HD tree of a wallet from its mnemonic by discovering
// which accounts have been used
type Service struct {
	balances  ports.BalanceService
	gapLimit  int
	batchSize int
}

func NewService(
	balances ports.BalanceService, gapLimit, batchSize int,
) (*Service, error) {
	if balances == nil {
		return nil, ErrMissingBalanceService
	}
	if gapLimit <= 0 {
		return nil, ErrInvalidGapLimit
	}
	if batchSize <= 0 {
		return nil, ErrInvalidBatchSize
	}
	return &Service{balances, gapLimit, batchSize}, nil
}

// Recover derives accounts from index 0 and returns a body sized after the
// scheme with the most activity: one account per used account plus a
// trailing unused one, never leaving out the last used account.
// The first account is labelled with label
func (s *Service) Recover(
	ctx context.Context, mnemonic []string, passphrase, label string,
) (*domain.WalletBody, error) {
	seedHex, master, err := masterKeyFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}

	sizes := make([]int, len(wallet.Schemes))
	eg, egCtx := errgroup.WithContext(ctx)
	for i := range wallet.Schemes {
		i := i
		eg.Go(func() error {
			usage, err := s.scanAccounts(egCtx, master, wallet.Schemes[i])
			if err != nil {
				return err
			}
			sizes[i] = usage.walletSize()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	numAccounts := 1
	for _, size := range sizes {
		if size > numAccounts {
			numAccounts = size
		}
	}
	log.Infof("recovery: restoring %d account(s)", numAccounts)

	return domain.NewWalletBodyFromSeedHex(
		seedHex, passphrase, label, numAccounts, domain.LatestWrapperVersion,
	)
}

// RecoverWithSize restores numAccounts accounts without querying the
// balance service
func (s *Service) RecoverWithSize(
	mnemonic []string, passphrase, label string, numAccounts int,
) (*domain.WalletBody, error) {
	seedHex, _, err := masterKeyFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	return domain.NewWalletBodyFromSeedHex(
		seedHex, passphrase, label, numAccounts, domain.LatestWrapperVersion,
	)
}

// accountUsage summarizes the accounts found used for a scheme
type accountUsage struct {
	used     int
	lastUsed int
}

// walletSize is the number of accounts to restore: the used ones plus the
// next unused one, extended to cover the last used account when unused
// accounts lie in between
func (u accountUsage) walletSize() int {
	size := u.used + 1
	if u.lastUsed+1 > size {
		size = u.lastUsed + 1
	}
	return size
}

// scanAccounts queries accounts of the given scheme in batches, in index
// order, until gapLimit consecutive unused ones are found
func (s *Service) scanAccounts(
	ctx context.Context, master *hdkeychain.ExtendedKey, scheme wallet.Scheme,
) (accountUsage, error) {
	usage := accountUsage{lastUsed: -1}
	unused := 0
	for start := 0; unused < s.gapLimit; start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return accountUsage{}, err
		}

		xpubs := make([]string, 0, s.batchSize)
		for i := start; i < start+s.batchSize; i++ {
			xpub, err := receiveXPub(master, scheme, uint32(i))
			if err != nil {
				return accountUsage{}, err
			}
			xpubs = append(xpubs, xpub)
		}

		balances, err := s.balances.GetBalance(ctx, xpubs)
		if err != nil {
			return accountUsage{}, fmt.Errorf(
				"failed to fetch %s account balances: %w", scheme, err,
			)
		}
		log.Debugf(
			"recovery: fetched %s balances for accounts %d-%d",
			scheme, start, start+s.batchSize-1,
		)

		for i, xpub := range xpubs {
			if isUsed(balances[xpub]) {
				usage.used++
				usage.lastUsed = start + i
				unused = 0
				continue
			}
			unused++
			if unused >= s.gapLimit {
				break
			}
		}
	}
	return usage, nil
}

func isUsed(balance ports.Balance) bool {
	if balance == nil {
		return false
	}
	return balance.GetTxCount() > 0 || balance.GetTotalReceived() > 0
}

func receiveXPub(
	master *hdkeychain.ExtendedKey, scheme wallet.Scheme, account uint32,
) (string, error) {
	key, err := wallet.DeriveAccountKey(master, scheme, account)
	if err != nil {
		return "", err
	}
	keys, err := wallet.ExtendedKeysForAccount(key)
	if err != nil {
		return "", err
	}
	return keys.ReceiveXPub, nil
}

func masterKeyFromMnemonic(
	mnemonic []string, passphrase string,
) (string, *hdkeychain.ExtendedKey, error) {
	if !wallet.IsMnemonicValid(mnemonic) {
		return "", nil, ErrInvalidMnemonic
	}
	seedHex, err := wallet.SeedHexFromMnemonic(mnemonic)
	if err != nil {
		return "", nil, err
	}
	seed, err := wallet.SeedFromSeedHex(seedHex, passphrase)
	if err != nil {
		return "", nil, err
	}
	master, err := wallet.NewMasterKey(seed)
	if err != nil {
		return "", nil, err
	}
	return seedHex, master, nil
}
