package normalize_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/normalize"
)

func TestToISOLocalDateTime(t *testing.T) {
	type args struct {
		date string
		time string
	}

	type testCase struct {
		name    string
		args    args
		want    string
		wantErr error
	}

	tests := []testCase{
		{name: "Slashes", args: args{"15/01/2024", "10:30:45"}, want: "2024-01-15T10:30:45"},
		{name: "Dashes", args: args{"15-01-2024", "10:30"}, want: "2024-01-15T10:30:00"},
		{name: "NoTime", args: args{"01/02/2024", ""}, want: "2024-02-01T00:00:00"},
		{name: "BadDate", args: args{"2024/01/15", "10:30"}, wantErr: normalize.ErrInvalidDate},
		{name: "EmptyDate", args: args{"", "10:30"}, wantErr: normalize.ErrInvalidDate},
		{name: "BadTime", args: args{"15/01/2024", "25:99"}, wantErr: normalize.ErrInvalidTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalize.ToISOLocalDateTime(tt.args.date, tt.args.time)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCombinedDateTime(t *testing.T) {
	type args struct {
		combined string
		fallback string
	}

	type testCase struct {
		name    string
		args    args
		want    time.Time
		wantErr bool
	}

	tests := []testCase{
		{
			name: "ISOWithFraction",
			args: args{combined: "2024-01-15 10:30:45.123456"},
			want: time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC),
		},
		{
			name: "ISOWithT",
			args: args{combined: "2024-01-15T08:00:00Z"},
			want: time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC),
		},
		{
			name: "European",
			args: args{combined: "15/01/2024 10:30"},
			want: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name: "Fallback",
			args: args{combined: "", fallback: "16/01/2024"},
			want: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "NothingUsable",
			args:    args{combined: "", fallback: ""},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalize.ParseCombinedDateTime(tt.args.combined, tt.args.fallback)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseISO(t *testing.T) {
	got, err := normalize.ParseISO("2024-01-15T10:30:45")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15T10:30:45", normalize.FormatISO(got))

	got, err = normalize.ParseISO("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), got)

	_, err = normalize.ParseISO("yesterday")
	assert.ErrorIs(t, err, normalize.ErrInvalidDate)
}
