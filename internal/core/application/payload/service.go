package payload

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-payload/internal/core/application/recovery"
	"github.com/tdex-network/tdex-payload/internal/core/domain"
	"github.com/tdex-network/tdex-payload/internal/core/ports"
	"github.com/tdex-network/tdex-payload/pkg/payment"
	"github.com/tdex-network/tdex-payload/pkg/wallet"
)

var (
	// ErrMissingRepository ...
	ErrMissingRepository = fmt.Errorf("missing wallet repository")
	// ErrMissingBalanceService is returned by operations that need to query
	// the blockchain when the service runs offline
	ErrMissingBalanceService = fmt.Errorf("balance service not available")
	// ErrNullPassword ...
	ErrNullPassword = wallet.ErrNullPassword
	// ErrInsufficientFunds is returned when the account can't pay for a payment
	ErrInsufficientFunds = fmt.Errorf("insufficient funds")
)

// Config holds the defaults applied to new wallets and the recovery settings
type Config struct {
	Pbkdf2Iterations  int
	FeePerKb          int64
	RecoveryGapLimit  int
	RecoveryBatchSize int
}

func (c Config) withDefaults() Config {
	if c.Pbkdf2Iterations <= 0 {
		c.Pbkdf2Iterations = wallet.DefaultIterations
	}
	if c.FeePerKb <= 0 {
		c.FeePerKb = domain.DefaultFeePerKb
	}
	if c.RecoveryGapLimit <= 0 {
		c.RecoveryGapLimit = recovery.DefaultGapLimit
	}
	if c.RecoveryBatchSize <= 0 {
		c.RecoveryBatchSize = recovery.DefaultBatchSize
	}
	return c
}

// Service manages the lifecycle of stored wallets: every mutation opens the
// envelope with the main password, applies a domain operation and stores the
// result, failing if the stored envelope changed in the meanwhile
type Service struct {
	repo     domain.WalletRepository
	balances ports.BalanceService
	recovery *recovery.Service
	cfg      Config
}

// NewService returns a new payload service. balances can be nil, in which
// case only the offline operations are available
func NewService(
	repo domain.WalletRepository, balances ports.BalanceService, cfg Config,
) (*Service, error) {
	if repo == nil {
		return nil, ErrMissingRepository
	}
	cfg = cfg.withDefaults()

	var recoverySvc *recovery.Service
	if balances != nil {
		svc, err := recovery.NewService(
			balances, cfg.RecoveryGapLimit, cfg.RecoveryBatchSize,
		)
		if err != nil {
			return nil, err
		}
		recoverySvc = svc
	}

	return &Service{repo, balances, recoverySvc, cfg}, nil
}

// CreateWallet creates and stores a brand new wallet
func (s *Service) CreateWallet(
	ctx context.Context, password, label string,
) (*domain.WalletBase, error) {
	w, err := domain.NewWallet(label)
	if err != nil {
		return nil, err
	}
	return s.addWallet(ctx, password, w)
}

// RecoverWallet rebuilds a wallet from its mnemonic by discovering its used
// accounts and stores it with fresh identifiers
func (s *Service) RecoverWallet(
	ctx context.Context, mnemonic []string, passphrase, password, label string,
) (*domain.WalletBase, error) {
	if s.recovery == nil {
		return nil, ErrMissingBalanceService
	}
	body, err := s.recovery.Recover(ctx, mnemonic, passphrase, label)
	if err != nil {
		return nil, err
	}
	w, err := domain.NewWalletFromBody(body)
	if err != nil {
		return nil, err
	}
	return s.addWallet(ctx, password, w)
}

// RestoreWallet is like RecoverWallet for a known number of accounts, it
// doesn't query the balance service
func (s *Service) RestoreWallet(
	ctx context.Context, mnemonic []string, passphrase, password, label string,
	numAccounts int,
) (*domain.WalletBase, error) {
	if !wallet.IsMnemonicValid(mnemonic) {
		return nil, recovery.ErrInvalidMnemonic
	}
	body, err := domain.NewWalletBodyFromMnemonic(
		mnemonic, passphrase, label, numAccounts, domain.LatestWrapperVersion,
	)
	if err != nil {
		return nil, err
	}
	w, err := domain.NewWalletFromBody(body)
	if err != nil {
		return nil, err
	}
	return s.addWallet(ctx, password, w)
}

// LoadWallet fetches and opens the wallet with the given guid
func (s *Service) LoadWallet(
	ctx context.Context, guid, password string,
) (*domain.WalletBase, error) {
	wrapper, err := s.repo.GetWallet(ctx, guid)
	if err != nil {
		return nil, err
	}
	return wrapper.WithDecryptedPayload(password)
}

// SaveWallet stores the given wallet in place of the one it was loaded from.
// It fails with domain.ErrChecksumMismatch if the stored envelope changed
// since then
func (s *Service) SaveWallet(
	ctx context.Context, password string, base *domain.WalletBase,
) (*domain.WalletBase, error) {
	if len(password) <= 0 {
		return nil, ErrNullPassword
	}
	_, wrapper, err := base.EncryptAndWrapPayload(password)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateWallet(
		ctx, base.Wallet.GUID(), base.PayloadChecksum,
		func(*domain.WalletWrapper) (*domain.WalletWrapper, error) {
			return wrapper, nil
		},
	); err != nil {
		return nil, err
	}

	return &domain.WalletBase{
		Wallet:          base.Wallet,
		PayloadChecksum: wrapper.Checksum(),
	}, nil
}

// UpdateWallet loads the wallet, applies updateFn and stores the result
func (s *Service) UpdateWallet(
	ctx context.Context, guid, password string,
	updateFn func(w *domain.Wallet) (*domain.Wallet, error),
) (*domain.WalletBase, error) {
	base, err := s.LoadWallet(ctx, guid, password)
	if err != nil {
		return nil, err
	}
	updated, err := updateFn(base.Wallet)
	if err != nil {
		return nil, err
	}
	return s.SaveWallet(ctx, password, &domain.WalletBase{
		Wallet:          updated,
		PayloadChecksum: base.PayloadChecksum,
	})
}

// AddAccount appends a new account to the wallet
func (s *Service) AddAccount(
	ctx context.Context, guid, password, secondPassword, label string,
) (*domain.WalletBase, error) {
	return s.UpdateWallet(ctx, guid, password,
		func(w *domain.Wallet) (*domain.Wallet, error) {
			return w.AddAccount(label, secondPassword)
		},
	)
}

// UpdateAccountArchivedState archives or restores an account
func (s *Service) UpdateAccountArchivedState(
	ctx context.Context, guid, password string, index int, archived bool,
) (*domain.WalletBase, error) {
	return s.UpdateWallet(ctx, guid, password,
		func(w *domain.Wallet) (*domain.Wallet, error) {
			return w.UpdateAccountArchivedState(index, archived)
		},
	)
}

// UpdateTxNote sets the note of a transaction, an empty note removes it
func (s *Service) UpdateTxNote(
	ctx context.Context, guid, password, txHash, note string,
) (*domain.WalletBase, error) {
	return s.UpdateWallet(ctx, guid, password,
		func(w *domain.Wallet) (*domain.Wallet, error) {
			return w.UpdateTxNotes(txHash, note), nil
		},
	)
}

// Mnemonic reveals the words of the wallet seed
func (s *Service) Mnemonic(
	ctx context.Context, guid, password, secondPassword string,
) ([]string, error) {
	base, err := s.LoadWallet(ctx, guid, password)
	if err != nil {
		return nil, err
	}
	hd, err := hdWallet(base.Wallet, secondPassword)
	if err != nil {
		return nil, err
	}
	return hd.Mnemonic()
}

// ReceiveAddress returns the receive address at index of an account for its
// default derivation scheme
func (s *Service) ReceiveAddress(
	ctx context.Context, guid, password string, accountIndex int, index uint32,
) (string, error) {
	base, err := s.LoadWallet(ctx, guid, password)
	if err != nil {
		return "", err
	}
	body, err := base.Wallet.WalletBody()
	if err != nil {
		return "", err
	}
	account, err := body.Account(accountIndex)
	if err != nil {
		return "", err
	}
	hd, err := base.Wallet.HDWallet()
	if err != nil {
		return "", err
	}
	return hd.ReceiveAddress(accountIndex, account.DefaultType(), index)
}

// ListWallets returns the guids of all stored wallets
func (s *Service) ListWallets(ctx context.Context) ([]string, error) {
	return s.repo.ListWallets(ctx)
}

// DeleteWallet removes the wallet with the given guid once the password is
// verified
func (s *Service) DeleteWallet(ctx context.Context, guid, password string) error {
	if _, err := s.LoadWallet(ctx, guid, password); err != nil {
		return err
	}
	log.Infof("deleting wallet %s", guid)
	return s.repo.DeleteWallet(ctx, guid)
}

// AccountBalance returns the final balance of the account, summed over
// its derivations
func (s *Service) AccountBalance(
	ctx context.Context, guid, password string, accountIndex int,
) (btcutil.Amount, error) {
	if s.balances == nil {
		return 0, ErrMissingBalanceService
	}
	account, err := s.account(ctx, guid, password, accountIndex)
	if err != nil {
		return 0, err
	}

	xpubs := accountXPubs(account)
	balances, err := s.balances.GetBalance(ctx, xpubs)
	if err != nil {
		return 0, err
	}

	var total btcutil.Amount
	for _, xpub := range xpubs {
		if b, ok := balances[xpub]; ok {
			total += btcutil.Amount(b.GetFinalBalance())
		}
	}
	return total, nil
}

// PaymentPlan is the selection of outputs to spend for a payment together
// with the keys to sign them
type PaymentPlan struct {
	Spendable *payment.SpendableUnspentOutputs
	Keys      []*btcec.PrivateKey
}

// PlanPayment selects the outputs of the account to spend for paying amount
// to the destination address and returns the keys to sign them.
// A non positive feePerKb means the wallet fee rate
func (s *Service) PlanPayment(
	ctx context.Context, guid, password, secondPassword string,
	accountIndex int, destination string, amount, feePerKb btcutil.Amount,
) (*PaymentPlan, error) {
	if s.balances == nil {
		return nil, ErrMissingBalanceService
	}
	paymentType, err := wallet.ScriptTypeFromAddress(destination)
	if err != nil {
		return nil, err
	}

	base, err := s.LoadWallet(ctx, guid, password)
	if err != nil {
		return nil, err
	}
	w := base.Wallet
	body, err := w.WalletBody()
	if err != nil {
		return nil, err
	}
	account, err := body.Account(accountIndex)
	if err != nil {
		return nil, err
	}
	changeType, err := account.DefaultType().ScriptType()
	if err != nil {
		return nil, err
	}
	if feePerKb <= 0 {
		feePerKb = btcutil.Amount(w.Options().FeePerKb)
	}

	unspents, err := s.accountUnspents(ctx, account)
	if err != nil {
		return nil, err
	}
	spendable, err := payment.SpendableCoins(payment.SpendableCoinsOpts{
		Unspents:    unspents,
		PaymentType: paymentType,
		ChangeType:  changeType,
		Amount:      amount,
		FeePerKb:    feePerKb,
	})
	if err != nil {
		return nil, err
	}
	if spendable.InsufficientFunds {
		return nil, fmt.Errorf(
			"%w: missing %s", ErrInsufficientFunds, spendable.Shortfall,
		)
	}

	hd, err := hdWallet(w, secondPassword)
	if err != nil {
		return nil, err
	}
	keys, err := hd.KeysForSigning(accountIndex, spendable)
	if err != nil {
		return nil, err
	}

	log.Debugf(
		"planned payment of %s with %d input(s) and fee %s",
		amount, len(spendable.Outputs), spendable.AbsoluteFee,
	)
	return &PaymentPlan{spendable, keys}, nil
}

func (s *Service) addWallet(
	ctx context.Context, password string, w *domain.Wallet,
) (*domain.WalletBase, error) {
	if len(password) <= 0 {
		return nil, ErrNullPassword
	}

	w = w.UpdateFeePerKb(s.cfg.FeePerKb)
	w, err := w.UpdatePbkdf2Iterations(s.cfg.Pbkdf2Iterations, "")
	if err != nil {
		return nil, err
	}

	_, wrapper, err := domain.NewWalletBase(w).EncryptAndWrapPayload(password)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddWallet(ctx, w.GUID(), wrapper); err != nil {
		return nil, err
	}

	log.Infof("stored wallet %s", w.GUID())
	return &domain.WalletBase{
		Wallet:          w,
		PayloadChecksum: wrapper.Checksum(),
	}, nil
}

func (s *Service) account(
	ctx context.Context, guid, password string, index int,
) (domain.Account, error) {
	base, err := s.LoadWallet(ctx, guid, password)
	if err != nil {
		return domain.Account{}, err
	}
	body, err := base.Wallet.WalletBody()
	if err != nil {
		return domain.Account{}, err
	}
	return body.Account(index)
}

func (s *Service) accountUnspents(
	ctx context.Context, account domain.Account,
) ([]payment.Utxo, error) {
	unspents, err := s.balances.GetUnspentOutputs(ctx, accountXPubs(account))
	if err != nil {
		return nil, err
	}

	utxos := make([]payment.Utxo, 0, len(unspents))
	for _, u := range unspents {
		scriptType, err := utxoScriptType(account, u)
		if err != nil {
			return nil, err
		}
		utxos = append(utxos, payment.Utxo{
			TxHash:        u.GetTxHash(),
			Index:         u.GetIndex(),
			Value:         btcutil.Amount(u.GetValue()),
			Address:       u.GetAddress(),
			Confirmations: u.GetConfirmations(),
			XPub:          u.GetXPub(),
			Path:          u.GetPath(),
			ScriptType:    scriptType,
		})
	}
	return utxos, nil
}

func utxoScriptType(account domain.Account, u ports.Unspent) (wallet.ScriptType, error) {
	if len(u.GetAddress()) > 0 {
		return wallet.ScriptTypeFromAddress(u.GetAddress())
	}
	for _, d := range account.Derivations() {
		if d.XPub() == u.GetXPub() {
			return d.Scheme().ScriptType()
		}
	}
	return 0, domain.ErrNoSuchAddress
}

func accountXPubs(account domain.Account) []string {
	derivations := account.Derivations()
	xpubs := make([]string, 0, len(derivations))
	for _, d := range derivations {
		xpubs = append(xpubs, d.XPub())
	}
	return xpubs
}

func hdWallet(w *domain.Wallet, secondPassword string) (*domain.HDContainer, error) {
	if w.IsDoubleEncrypted() {
		return w.DecryptHDWallet(secondPassword)
	}
	if len(secondPassword) > 0 {
		return nil, domain.ErrSecondPasswordNotExpected
	}
	return w.HDWallet()
}
