package domain

import "context"

// WalletRepository stores wallet envelopes by guid. Updates are guarded by
// the checksum of the stored payload: they fail with ErrChecksumMismatch if
// the envelope changed since it was fetched
type WalletRepository interface {
	AddWallet(ctx context.Context, guid string, wrapper *WalletWrapper) error
	GetWallet(ctx context.Context, guid string) (*WalletWrapper, error)
	UpdateWallet(
		ctx context.Context,
		guid, checksum string,
		updateFn func(w *WalletWrapper) (*WalletWrapper, error),
	) error
	DeleteWallet(ctx context.Context, guid string) error
	ListWallets(ctx context.Context) ([]string, error)
	Close()
}
