package blockchain

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker"
	"github.com/tdex-network/tdex-payload/internal/core/ports"
	"github.com/tdex-network/tdex-payload/pkg/circuitbreaker"
	"go.uber.org/ratelimit"
)

const breakerName = "balance service"

type guardedService struct {
	svc     ports.BalanceService
	limiter ratelimit.Limiter
	cb      *gobreaker.CircuitBreaker
}

// NewGuardedBalanceService wraps svc so that at most requestsPerSecond
// requests are issued every second, and requests stop being forwarded while
// svc keeps failing. A non positive requestsPerSecond disables the limit
func NewGuardedBalanceService(
	svc ports.BalanceService, requestsPerSecond int,
) (ports.BalanceService, error) {
	if svc == nil {
		return nil, fmt.Errorf("missing balance service")
	}

	limiter := ratelimit.NewUnlimited()
	if requestsPerSecond > 0 {
		limiter = ratelimit.New(requestsPerSecond)
	}
	return &guardedService{
		svc:     svc,
		limiter: limiter,
		cb:      circuitbreaker.NewCircuitBreaker(breakerName),
	}, nil
}

func (g *guardedService) GetBalance(
	ctx context.Context, identifiers []string,
) (map[string]ports.Balance, error) {
	res, err := g.execute(ctx, func() (interface{}, error) {
		return g.svc.GetBalance(ctx, identifiers)
	})
	if err != nil {
		return nil, err
	}
	return res.(map[string]ports.Balance), nil
}

func (g *guardedService) GetUnspentOutputs(
	ctx context.Context, addresses []string,
) ([]ports.Unspent, error) {
	res, err := g.execute(ctx, func() (interface{}, error) {
		return g.svc.GetUnspentOutputs(ctx, addresses)
	})
	if err != nil {
		return nil, err
	}
	return res.([]ports.Unspent), nil
}

func (g *guardedService) execute(
	ctx context.Context, req func() (interface{}, error),
) (interface{}, error) {
	g.limiter.Take()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.cb.Execute(req)
}
