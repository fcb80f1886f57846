package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/tdex-network/tdex-payload/internal/core/domain"
)

type walletRepository struct {
	wallets map[string]domain.WalletWrapper
	lock    *sync.RWMutex
}

// NewWalletRepository returns an empty in memory wallet store
func NewWalletRepository() domain.WalletRepository {
	return &walletRepository{
		wallets: make(map[string]domain.WalletWrapper),
		lock:    &sync.RWMutex{},
	}
}

func (r *walletRepository) AddWallet(
	_ context.Context, guid string, wrapper *domain.WalletWrapper,
) error {
	if wrapper == nil {
		return domain.ErrEmptyPayload
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.wallets[guid]; ok {
		return domain.ErrWalletAlreadyExists
	}
	r.wallets[guid] = *wrapper
	return nil
}

func (r *walletRepository) GetWallet(
	_ context.Context, guid string,
) (*domain.WalletWrapper, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	wrapper, ok := r.wallets[guid]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	return &wrapper, nil
}

func (r *walletRepository) UpdateWallet(
	_ context.Context, guid, checksum string,
	updateFn func(*domain.WalletWrapper) (*domain.WalletWrapper, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	wrapper, ok := r.wallets[guid]
	if !ok {
		return domain.ErrWalletNotFound
	}
	if wrapper.Checksum() != checksum {
		return domain.ErrChecksumMismatch
	}

	updated, err := updateFn(&wrapper)
	if err != nil {
		return err
	}
	if updated != nil {
		r.wallets[guid] = *updated
	}
	return nil
}

func (r *walletRepository) DeleteWallet(_ context.Context, guid string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.wallets, guid)
	return nil
}

func (r *walletRepository) ListWallets(_ context.Context) ([]string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	guids := make([]string, 0, len(r.wallets))
	for guid := range r.wallets {
		guids = append(guids, guid)
	}
	sort.Strings(guids)
	return guids, nil
}

func (r *walletRepository) Close() {}
