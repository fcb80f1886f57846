package dbbadger

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-payload/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const (
	walletDir = "wallets"

	valueLogGCInterval = 30 * time.Minute
)

type walletRecord struct {
	GUID             string
	Version          int
	Pbkdf2Iterations int
	Payload          string
	Checksum         string
}

func newWalletRecord(guid string, w *domain.WalletWrapper) walletRecord {
	return walletRecord{
		GUID:             guid,
		Version:          w.Version,
		Pbkdf2Iterations: w.Pbkdf2Iterations,
		Payload:          w.Payload,
		Checksum:         w.Checksum(),
	}
}

func (r walletRecord) toWrapper() *domain.WalletWrapper {
	return &domain.WalletWrapper{
		Version:          r.Version,
		Pbkdf2Iterations: r.Pbkdf2Iterations,
		Payload:          r.Payload,
	}
}

type walletRepository struct {
	store *badgerhold.Store

	quit      chan struct{}
	gcDone    chan struct{}
	closeOnce sync.Once
}

// NewWalletRepository opens (or creates if not exists) the wallet store in
// a dedicated subdirectory of baseDbDir. An empty baseDbDir results in an
// in-memory store
func NewWalletRepository(
	baseDbDir string, logger badger.Logger,
) (domain.WalletRepository, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, walletDir)
	}

	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening wallet db: %w", err)
	}

	r := &walletRepository{
		store:  store,
		quit:   make(chan struct{}),
		gcDone: make(chan struct{}),
	}
	if len(dbDir) > 0 {
		go r.runValueLogGC(valueLogGCInterval)
	} else {
		close(r.gcDone)
	}
	return r, nil
}

func (r *walletRepository) AddWallet(
	_ context.Context, guid string, wrapper *domain.WalletWrapper,
) error {
	if wrapper == nil {
		return domain.ErrEmptyPayload
	}
	record := newWalletRecord(guid, wrapper)
	if err := r.store.Insert(guid, &record); err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrWalletAlreadyExists
		}
		return err
	}
	return nil
}

func (r *walletRepository) GetWallet(
	_ context.Context, guid string,
) (*domain.WalletWrapper, error) {
	var record walletRecord
	if err := r.store.Get(guid, &record); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}
	return record.toWrapper(), nil
}

// UpdateWallet runs read, compare and write in a single badger transaction.
// Concurrent updates of the same wallet make all but one fail with
// badger.ErrConflict
func (r *walletRepository) UpdateWallet(
	_ context.Context, guid, checksum string,
	updateFn func(*domain.WalletWrapper) (*domain.WalletWrapper, error),
) error {
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		var record walletRecord
		if err := r.store.TxGet(tx, guid, &record); err != nil {
			if err == badgerhold.ErrNotFound {
				return domain.ErrWalletNotFound
			}
			return err
		}
		if record.Checksum != checksum {
			return domain.ErrChecksumMismatch
		}

		updated, err := updateFn(record.toWrapper())
		if err != nil {
			return err
		}
		if updated == nil {
			return nil
		}

		updatedRecord := newWalletRecord(guid, updated)
		return r.store.TxUpdate(tx, guid, &updatedRecord)
	})
}

func (r *walletRepository) DeleteWallet(_ context.Context, guid string) error {
	if err := r.store.Delete(guid, walletRecord{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return err
	}
	return nil
}

func (r *walletRepository) ListWallets(_ context.Context) ([]string, error) {
	var records []walletRecord
	if err := r.store.Find(&records, nil); err != nil {
		return nil, err
	}

	guids := make([]string, 0, len(records))
	for _, record := range records {
		guids = append(guids, record.GUID)
	}
	sort.Strings(guids)
	return guids, nil
}

// Close stops the value log GC and waits for it to return before closing
// the store. It's safe to call it more than once
func (r *walletRepository) Close() {
	r.closeOnce.Do(func() {
		close(r.quit)
		<-r.gcDone
		r.store.Close()
	})
}

func (r *walletRepository) runValueLogGC(interval time.Duration) {
	defer close(r.gcDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case <-ticker.C:
			if err := r.store.Badger().RunValueLogGC(0.5); err != nil &&
				err != badger.ErrNoRewrite {
				log.Error(err)
			}
		}
	}
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}
