package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railguard/pkg/domain"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.Amount
		wantErr bool
	}{
		{name: "whole units", input: "10", want: 100_000_000},
		{name: "fractional", input: "0.88", want: 8_800_000},
		{name: "full precision", input: "0.0000001", want: 1},
		{name: "zero", input: "0", want: 0},
		{name: "too many decimals", input: "0.00000001", wantErr: true},
		{name: "not a number", input: "ten", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmountString(t *testing.T) {
	assert.Equal(t, "0.8800000", domain.Amount(8_800_000).String())
	assert.Equal(t, "10.0000000", domain.Amount(100_000_000).String())
}

func TestApplyBps(t *testing.T) {
	// an 88 bps fee on a 0.88 draw truncates to 0.0077440
	assert.Equal(t, domain.Amount(77_440), domain.ApplyBps(8_800_000, 88))
	// staker share of a fee, 88% of 0.88
	assert.Equal(t, domain.Amount(7_744_000), domain.ApplyBps(8_800_000, 8800))
	assert.Equal(t, domain.Amount(0), domain.ApplyBps(0, 8800))
	// truncation never rounds up
	assert.Equal(t, domain.Amount(0), domain.ApplyBps(1, 9999))
}
