package main

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
)

func TestParseBtcAmount(t *testing.T) {
	tests := []struct {
		amount   string
		expected btcutil.Amount
	}{
		{"0.00040108", 40108},
		{"1", 100000000},
		{"0.1", 10000000},
		{"21000000", btcutil.MaxSatoshi},
	}

	for _, tt := range tests {
		amount, err := parseBtcAmount(tt.amount)
		require.NoError(t, err)
		require.Equal(t, tt.expected, amount)
		require.Equal(t, tt.amount, trimZeros(formatBtcAmount(amount)))
	}
}

func TestFailingParseBtcAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{"not_a_number", "abc"},
		{"zero", "0"},
		{"negative", "-0.1"},
		{"too_many_decimals", "0.000000001"},
		{"exceeds_max_supply", "21000000.00000001"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseBtcAmount(tt.amount)
			require.Error(t, err)
		})
	}
}

func trimZeros(amount string) string {
	for amount[len(amount)-1] == '0' {
		amount = amount[:len(amount)-1]
	}
	if amount[len(amount)-1] == '.' {
		amount = amount[:len(amount)-1]
	}
	return amount
}
