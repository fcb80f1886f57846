package payload_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/tdex-payload/internal/core/ports"
)

// **** BalanceService ****

type mockBalanceService struct {
	mock.Mock
}

func (m *mockBalanceService) GetBalance(
	ctx context.Context, identifiers []string,
) (map[string]ports.Balance, error) {
	args := m.Called(ctx, identifiers)

	var res map[string]ports.Balance
	if a := args.Get(0); a != nil {
		res = a.(map[string]ports.Balance)
	}
	return res, args.Error(1)
}

func (m *mockBalanceService) GetUnspentOutputs(
	ctx context.Context, addresses []string,
) ([]ports.Unspent, error) {
	args := m.Called(ctx, addresses)

	var res []ports.Unspent
	if a := args.Get(0); a != nil {
		res = a.([]ports.Unspent)
	}
	return res, args.Error(1)
}

type mockBalance struct {
	finalBalance int64
	txCount      int
}

func (b mockBalance) GetFinalBalance() int64 { return b.finalBalance }
func (b mockBalance) GetTxCount() int { return b.txCount }
func (b mockBalance) GetTotalReceived() int64 { return b.finalBalance }

type mockUnspent struct {
	txHash  string
	index   uint32
	value   int64
	address string
	xpub    string
	path    string
}

func (u mockUnspent) GetTxHash() string { return u.txHash }
func (u mockUnspent) GetIndex() uint32 { return u.index }
func (u mockUnspent) GetValue() int64 { return u.value }
func (u mockUnspent) GetAddress() string { return u.address }
func (u mockUnspent) GetConfirmations() int { return 1 }
func (u mockUnspent) GetXPub() string { return u.xpub }
func (u mockUnspent) GetPath() string { return u.path }
