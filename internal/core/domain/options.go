package domain

import "github.com/tdex-network/tdex-payload/pkg/wallet"

// Options are the wallet settings persisted along with the payload
type Options struct {
	Pbkdf2Iterations   int
	FeePerKb           int64
	Html5Notifications bool
	// LogoutTime is expressed in milliseconds
	LogoutTime int64
}

// NewOptions returns the options of a brand new wallet
func NewOptions() Options {
	return Options{
		Pbkdf2Iterations: wallet.DefaultIterations,
		FeePerKb:         DefaultFeePerKb,
		LogoutTime:       DefaultLogoutTime,
	}
}

func (o Options) withDefaults() Options {
	if o.Pbkdf2Iterations <= 0 {
		o.Pbkdf2Iterations = wallet.DefaultIterations
	}
	if o.LogoutTime <= 0 {
		o.LogoutTime = DefaultLogoutTime
	}
	return o
}
