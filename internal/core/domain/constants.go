package domain

const (
	// WrapperV3 payloads store accounts with a single legacy derivation
	WrapperV3 = 3
	// WrapperV4 payloads store accounts with one derivation per scheme
	WrapperV4 = 4
	// LatestWrapperVersion is the version of new and recovered wallets
	LatestWrapperVersion = WrapperV4

	// DefaultWalletBodyIndex is the HD tree used by the app
	DefaultWalletBodyIndex = 0

	DefaultFeePerKb   = 10000
	DefaultLogoutTime = 600000

	// ArchivedTag is the imported address tag of archived addresses
	ArchivedTag = 2
	// NormalTag ...
	NormalTag = 0
)
