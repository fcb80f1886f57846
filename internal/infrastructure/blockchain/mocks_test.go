package blockchain_test

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
