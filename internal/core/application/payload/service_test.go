package payload_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-payload/internal/core/application/payload"
	"github.com/tdex-network/tdex-payload/internal/core/domain"
	"github.com/tdex-network/tdex-payload/internal/core/ports"
	"github.com/tdex-network/tdex-payload/internal/infrastructure/storage/db/inmemory"
	"github.com/tdex-network/tdex-payload/pkg/wallet"
)

const (
	password       = "MyTestWallet"
	secondPassword = "second password"
	label          = "My Bitcoin Wallet"
	// first legacy receive address of the test mnemonic
	destination = "1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA"
	testTxHash  = "9a2b5e39a3a4a4b1ed2ef4e0e7a6c8ef63ae42c1c0e9b7e4ed4e4e4c4b4a4a4a"
)

var (
	mnemonic = strings.Split(
		"abandon abandon abandon abandon abandon abandon abandon abandon "+
			"abandon abandon abandon about", " ",
	)
	testConfig = payload.Config{Pbkdf2Iterations: 10}
)

func TestCreateAndLoadWallet(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	ctx := context.Background()

	base, err := svc.CreateWallet(ctx, password, label)
	require.NoError(t, err)
	require.NotEmpty(t, base.PayloadChecksum)
	require.Equal(t, 10, base.Wallet.Options().Pbkdf2Iterations)
	require.Equal(t, int64(domain.DefaultFeePerKb), base.Wallet.Options().FeePerKb)

	loaded, err := svc.LoadWallet(ctx, base.Wallet.GUID(), password)
	require.NoError(t, err)
	require.Equal(t, base, loaded)

	_, err = svc.LoadWallet(ctx, base.Wallet.GUID(), "wrong password")
	require.ErrorIs(t, err, domain.ErrDecryption)
	_, err = svc.LoadWallet(ctx, "unknown", password)
	require.EqualError(t, err, domain.ErrWalletNotFound.Error())

	_, err = svc.CreateWallet(ctx, "", label)
	require.ErrorIs(t, err, payload.ErrNullPassword)
	_, err = svc.CreateWallet(ctx, password, "")
	require.EqualError(t, err, domain.ErrNullLabel.Error())
}

func TestUpdateWallet(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	ctx := context.Background()

	base, err := svc.RestoreWallet(ctx, mnemonic, "", password, label, 1)
	require.NoError(t, err)
	guid := base.Wallet.GUID()

	updated, err := svc.AddAccount(ctx, guid, password, "", "Savings")
	require.NoError(t, err)
	body, err := updated.Wallet.WalletBody()
	require.NoError(t, err)
	require.Equal(t, 2, body.NumAccounts())
	require.NotEqual(t, base.PayloadChecksum, updated.PayloadChecksum)

	updated, err = svc.UpdateAccountArchivedState(ctx, guid, password, 1, true)
	require.NoError(t, err)
	body, err = updated.Wallet.WalletBody()
	require.NoError(t, err)
	savings, err := body.Account(1)
	require.NoError(t, err)
	require.True(t, savings.IsArchived())

	_, err = svc.UpdateAccountArchivedState(ctx, guid, password, 0, true)
	require.EqualError(t, err, domain.ErrArchivedDefaultAccount.Error())

	updated, err = svc.UpdateTxNote(ctx, guid, password, testTxHash, "Bought Pizza")
	require.NoError(t, err)
	require.Equal(t, map[string]string{testTxHash: "Bought Pizza"}, updated.Wallet.TxNotes())

	loaded, err := svc.LoadWallet(ctx, guid, password)
	require.NoError(t, err)
	require.Equal(t, updated, loaded)

	// saving a stale wallet fails
	_, err = svc.SaveWallet(ctx, password, base)
	require.EqualError(t, err, domain.ErrChecksumMismatch.Error())

	_, err = svc.SaveWallet(ctx, password, loaded)
	require.NoError(t, err)

	expectedErr := errors.New("something went wrong")
	_, err = svc.UpdateWallet(ctx, guid, password,
		func(*domain.Wallet) (*domain.Wallet, error) {
			return nil, expectedErr
		},
	)
	require.ErrorIs(t, err, expectedErr)
}

func TestMnemonic(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	ctx := context.Background()

	base, err := svc.RestoreWallet(ctx, mnemonic, "", password, label, 1)
	require.NoError(t, err)
	guid := base.Wallet.GUID()

	words, err := svc.Mnemonic(ctx, guid, password, "")
	require.NoError(t, err)
	require.Equal(t, mnemonic, words)

	_, err = svc.Mnemonic(ctx, guid, password, secondPassword)
	require.EqualError(t, err, domain.ErrSecondPasswordNotExpected.Error())

	_, err = svc.UpdateWallet(ctx, guid, password,
		func(w *domain.Wallet) (*domain.Wallet, error) {
			return w.EnableDoubleEncryption(secondPassword)
		},
	)
	require.NoError(t, err)

	words, err = svc.Mnemonic(ctx, guid, password, secondPassword)
	require.NoError(t, err)
	require.Equal(t, mnemonic, words)

	_, err = svc.Mnemonic(ctx, guid, password, "wrong password")
	require.ErrorIs(t, err, domain.ErrDecryption)
}

func TestReceiveAddressAndWalletList(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	ctx := context.Background()

	base, err := svc.RestoreWallet(ctx, mnemonic, "", password, label, 1)
	require.NoError(t, err)
	guid := base.Wallet.GUID()

	addr, err := svc.ReceiveAddress(ctx, guid, password, 0, 0)
	require.NoError(t, err)
	require.Equal(t, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", addr)

	_, err = svc.ReceiveAddress(ctx, guid, password, 1, 0)
	require.EqualError(t, err, domain.ErrAccountNotFound.Error())

	guids, err := svc.ListWallets(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{guid}, guids)

	err = svc.DeleteWallet(ctx, guid, "wrong password")
	require.ErrorIs(t, err, domain.ErrDecryption)

	err = svc.DeleteWallet(ctx, guid, password)
	require.NoError(t, err)

	guids, err = svc.ListWallets(ctx)
	require.NoError(t, err)
	require.Empty(t, guids)
}

func TestRecoverWallet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	offline := newTestService(t, nil)
	_, err := offline.RecoverWallet(ctx, mnemonic, "", password, label)
	require.EqualError(t, err, payload.ErrMissingBalanceService.Error())

	chain := newTestChain(t, 3)
	balances := &mockBalanceService{}
	balances.On("GetBalance", mock.Anything, mock.AnythingOfType("[]string")).
		Return(chain.balances, nil)
	svc := newTestService(t, balances)

	base, err := svc.RecoverWallet(ctx, mnemonic, "", password, label)
	require.NoError(t, err)
	body, err := base.Wallet.WalletBody()
	require.NoError(t, err)
	require.Equal(t, 4, body.NumAccounts())

	loaded, err := svc.LoadWallet(ctx, base.Wallet.GUID(), password)
	require.NoError(t, err)
	require.Equal(t, base, loaded)

	balance, err := svc.AccountBalance(ctx, base.Wallet.GUID(), password, 0)
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(5000), balance)
	balances.AssertCalled(t, "GetBalance", mock.Anything, chain.firstAccountXPubs)
	balances.AssertExpectations(t)
}

func TestPlanPayment(t *testing.T) {
	t.Parallel()

	values := []int64{8290, 4616, 5860, 3784, 2290, 13990, 8141}
	chain := newTestChain(t, 1, values...)
	balances := &mockBalanceService{}
	balances.On("GetUnspentOutputs", mock.Anything, chain.firstAccountXPubs).
		Return(chain.unspents, nil)
	svc := newTestService(t, balances)
	ctx := context.Background()

	base, err := svc.RestoreWallet(ctx, mnemonic, "", password, label, 1)
	require.NoError(t, err)
	guid := base.Wallet.GUID()

	plan, err := svc.PlanPayment(ctx, guid, password, "", 0, destination, 40108, 1000)
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(789), plan.Spendable.AbsoluteFee)
	require.Len(t, plan.Spendable.Outputs, 5)
	require.Len(t, plan.Keys, 5)

	for i, u := range plan.Spendable.Outputs {
		addr, err := wallet.AddressFromPubKey(plan.Keys[i].PubKey(), wallet.SchemeLegacy)
		require.NoError(t, err)
		require.Equal(t, u.Address, addr)
	}

	_, err = svc.PlanPayment(ctx, guid, password, "", 0, destination, 100000, 1000)
	require.ErrorIs(t, err, payload.ErrInsufficientFunds)

	_, err = svc.PlanPayment(ctx, guid, password, "", 0, "invalid", 40108, 1000)
	require.Error(t, err)

	_, err = svc.UpdateWallet(ctx, guid, password,
		func(w *domain.Wallet) (*domain.Wallet, error) {
			return w.EnableDoubleEncryption(secondPassword)
		},
	)
	require.NoError(t, err)

	_, err = svc.PlanPayment(ctx, guid, password, "wrong password", 0, destination, 40108, 1000)
	require.ErrorIs(t, err, domain.ErrDecryption)

	plan, err = svc.PlanPayment(ctx, guid, password, secondPassword, 0, destination, 40108, 1000)
	require.NoError(t, err)
	require.Len(t, plan.Keys, 5)
	balances.AssertExpectations(t)
	balances.AssertNotCalled(t, "GetBalance", mock.Anything, mock.Anything)
}

func newTestService(t *testing.T, balances ports.BalanceService) *payload.Service {
	svc, err := payload.NewService(inmemory.NewWalletRepository(), balances, testConfig)
	require.NoError(t, err)
	return svc
}

// testChain holds the blockchain data served by the mocked balance service:
// activity for the first numActive accounts of the test mnemonic and the
// given unspents for the legacy receive addresses of the first account
type testChain struct {
	balances          map[string]ports.Balance
	unspents          []ports.Unspent
	firstAccountXPubs []string
}

func newTestChain(t *testing.T, numActive int, values ...int64) testChain {
	seedHex, err := wallet.SeedHexFromMnemonic(mnemonic)
	require.NoError(t, err)
	seed, err := wallet.SeedFromSeedHex(seedHex, "")
	require.NoError(t, err)
	master, err := wallet.NewMasterKey(seed)
	require.NoError(t, err)

	chain := testChain{balances: make(map[string]ports.Balance)}
	var legacy *wallet.AccountKeys
	for i := 0; i < numActive; i++ {
		for _, scheme := range wallet.Schemes {
			key, err := wallet.DeriveAccountKey(master, scheme, uint32(i))
			require.NoError(t, err)
			keys, err := wallet.ExtendedKeysForAccount(key)
			require.NoError(t, err)
			chain.balances[keys.ReceiveXPub] = mockBalance{finalBalance: 2500, txCount: 1}
			chain.balances[keys.XPub] = mockBalance{finalBalance: 2500, txCount: 1}
			if i == 0 {
				chain.firstAccountXPubs = append(chain.firstAccountXPubs, keys.XPub)
				if scheme == wallet.SchemeLegacy {
					legacy = keys
				}
			}
		}
	}

	for i, v := range values {
		addr, err := wallet.AddressFromBranch(
			legacy.ReceiveXPub, uint32(i), wallet.SchemeLegacy,
		)
		require.NoError(t, err)
		chain.unspents = append(chain.unspents, mockUnspent{
			txHash:  testTxHash,
			index:   uint32(i),
			value:   v,
			address: addr,
			xpub:    legacy.XPub,
			path:    wallet.AddressPath(wallet.ReceiveChain, uint32(i)),
		})
	}
	return chain
}
