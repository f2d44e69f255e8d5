package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/normalize"
)

func TestParseAmountMinor(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}

	tests := []testCase{
		{name: "Whole", input: "10.00", want: 1000},
		{name: "Negative", input: "-1.50", want: -150},
		{name: "Thousands", input: "1,234.56", want: 123456},
		{name: "ExplicitPlus", input: "+25.5", want: 2550},
		{name: "RoundsHalfAway", input: "0.005", want: 1},
		{name: "NoDecimals", input: "42", want: 4200},
		{name: "Padded", input: "  -25.50 ", want: -2550},
		{name: "Empty", input: "", wantErr: true},
		{name: "OnlySeparators", input: " , ", wantErr: true},
		{name: "Text", input: "abc", wantErr: true},
		{name: "Infinity", input: "Inf", wantErr: true},
		{name: "Exponent", input: "1e30", wantErr: true},
		{name: "ExponentUpper", input: "2.5E2", wantErr: true},
		{name: "Overflow", input: "99999999999999999999", wantErr: true},
		{name: "OverflowByOneMinorUnit", input: "92233720368547758.08", wantErr: true},
		{name: "NegativeOverflow", input: "-92233720368547758.09", wantErr: true},
		{name: "LargestMinor", input: "92233720368547758.07", want: 9223372036854775807},
		{name: "SmallestMinor", input: "-92233720368547758.08", want: -9223372036854775808},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalize.ParseAmountMinor(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, normalize.ErrInvalidAmount)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEuropeanAmountMinor(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}

	tests := []testCase{
		{name: "Thousands", input: "1.234,56", want: 123456},
		{name: "Negative", input: "-588,74", want: -58874},
		{name: "Simple", input: "10,00", want: 1000},
		{name: "LargeThousands", input: "48.825,46", want: 4882546},
		{name: "Empty", input: "  ", wantErr: true},
		{name: "Garbage", input: "x,y", wantErr: true},
		{name: "Exponent", input: "1e30", wantErr: true},
		{name: "Overflow", input: "99.999.999.999.999.999.999,00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalize.ParseEuropeanAmountMinor(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, normalize.ErrInvalidAmount)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
