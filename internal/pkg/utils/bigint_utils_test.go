package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBigInt(t *testing.T) {
	tests := []struct {
		name     string
		amount   *big.Int
		decimals uint8
		want     string
	}{
		{name: "nil amount", amount: nil, decimals: 18, want: "0"},
		{name: "zero", amount: big.NewInt(0), decimals: 18, want: "0"},
		{name: "whole ether", amount: big.NewInt(1_000_000_000_000_000_000), decimals: 18, want: "1"},
		{name: "fractional ether", amount: big.NewInt(1_234_500_000_000_000_000), decimals: 18, want: "1.2345"},
		{name: "tiny amount", amount: big.NewInt(21000), decimals: 18, want: "0.000000000000021"},
		{name: "no decimals", amount: big.NewInt(42), decimals: 0, want: "42"},
		{name: "negative", amount: big.NewInt(-1500), decimals: 3, want: "-1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBigInt(tt.amount, tt.decimals))
		})
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{in: "1.5", want: 1.5, wantOK: true},
		{in: " 0.002 ", want: 0, wantOK: false},
		{in: "0.002\n", want: 0, wantOK: false},
		{in: "0x1p-2", want: 0, wantOK: false},
		{in: "1_000", want: 0, wantOK: false},
		{in: "+.5", want: 0.5, wantOK: true},
		{in: "1e-3", want: 0.001, wantOK: true},
		{in: "", wantOK: false},
		{in: "abc", wantOK: false},
		{in: "NaN", wantOK: false},
		{in: "+Inf", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDecimal(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestWithUnit(t *testing.T) {
	assert.Equal(t, "21000 gas", WithUnit("21000", "gas"))
	assert.Equal(t, " Wei", WithUnit("", "Wei"))
}
