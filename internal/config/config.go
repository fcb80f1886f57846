package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory where wallets are stored
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// Pbkdf2IterationsKey is the number of PBKDF2 rounds used to encrypt new
	// wallets
	Pbkdf2IterationsKey = "PBKDF2_ITERATIONS"
	// FeePerKbKey is the fee rate in satoshis per kilobyte assigned to new
	// wallets
	FeePerKbKey = "FEE_PER_KB"
	// RecoveryGapLimitKey is the number of consecutive unused accounts after
	// which recovery stops looking for used ones
	RecoveryGapLimitKey = "RECOVERY_GAP_LIMIT"
	// RecoveryBatchSizeKey is the number of accounts queried with a single
	// request during recovery
	RecoveryBatchSizeKey = "RECOVERY_BATCH_SIZE"
	// ExplorerEndpointKey is the endpoint of the blockchain.info compatible
	// REST API used to fetch balances and unspents
	ExplorerEndpointKey = "EXPLORER_ENDPOINT"
	// ExplorerRequestTimeoutKey are the milliseconds to wait for HTTP
	// responses before timeouts
	ExplorerRequestTimeoutKey = "EXPLORER_REQUEST_TIMEOUT"
	// ExplorerRateLimitKey is the max number of requests per second sent to
	// the explorer, 0 means unlimited
	ExplorerRateLimitKey = "EXPLORER_RATE_LIMIT"
	// OfflineKey disables the explorer, operations that need to query the
	// blockchain are not available
	OfflineKey = "OFFLINE"

	// EnvPrefix is the prefix of the environment variables holding the
	// config values
	EnvPrefix = "TDEX_PAYLOAD"

	DbLocation = "db"

	DBBadger   = "badger"
	DBInMemory = "inmemory"
)

var (
	vip            *viper.Viper
	defaultDatadir = btcutil.AppDataDir("tdex-payload", false)

	supportedDBTypes = map[string]bool{
		DBBadger:   true,
		DBInMemory: true,
	}
)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix(EnvPrefix)
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(Pbkdf2IterationsKey, 5000)
	vip.SetDefault(FeePerKbKey, 10000)
	vip.SetDefault(RecoveryGapLimitKey, 5)
	vip.SetDefault(RecoveryBatchSizeKey, 5)
	vip.SetDefault(ExplorerEndpointKey, "https://blockchain.info")
	vip.SetDefault(ExplorerRequestTimeoutKey, 15000)
	vip.SetDefault(ExplorerRateLimitKey, 0)
	vip.SetDefault(OfflineKey, false)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

// Set overrides the value of key
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetInt64(key string) int64 {
	return vip.GetInt64(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetDbDir returns the directory for the badger db, empty for the inmemory
// one
func GetDbDir() string {
	if GetString(DBTypeKey) == DBInMemory {
		return ""
	}
	return filepath.Join(GetDatadir(), DbLocation)
}

// GetExplorerRequestTimeout ...
func GetExplorerRequestTimeout() time.Duration {
	return time.Duration(GetInt(ExplorerRequestTimeoutKey)) * time.Millisecond
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	dbType := GetString(DBTypeKey)
	if !supportedDBTypes[dbType] {
		return fmt.Errorf("unsupported db type %s", dbType)
	}

	if GetInt(Pbkdf2IterationsKey) <= 0 {
		return fmt.Errorf("%s must be a positive number", Pbkdf2IterationsKey)
	}
	if GetInt64(FeePerKbKey) <= 0 {
		return fmt.Errorf("%s must be a positive number", FeePerKbKey)
	}
	if GetInt(RecoveryGapLimitKey) <= 0 {
		return fmt.Errorf("%s must be a positive number", RecoveryGapLimitKey)
	}
	if GetInt(RecoveryBatchSizeKey) <= 0 {
		return fmt.Errorf("%s must be a positive number", RecoveryBatchSizeKey)
	}
	if GetInt(ExplorerRateLimitKey) < 0 {
		return fmt.Errorf("%s must not be negative", ExplorerRateLimitKey)
	}

	if !GetBool(OfflineKey) && len(GetString(ExplorerEndpointKey)) <= 0 {
		return fmt.Errorf("missing explorer endpoint")
	}

	return nil
}

func initDatadir() error {
	if GetString(DBTypeKey) == DBInMemory {
		return nil
	}
	return makeDirectoryIfNotExists(GetDbDir())
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
