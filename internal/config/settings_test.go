package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

const sampleSettings = `
currency = "GBP"
rules_file = "rules.toml"

[[accounts]]
id = "Assets:Personal:Monzo"
group = "personal"
provider = "Monzo"

[[accounts]]
id = "Assets:Personal:CGD"
name = "Caixa"
group = "personal"
provider = "cgd"
inbox_folder = "CGD"
currency = "EUR"

[[accounts]]
id = "Assets:Investments:Vanguard"
group = "investments"
provider = "vanguard"
active = false

[[bank_presets]]
name = "Revolut"
delimiter = ","
fingerprint = "Type,Product,Started Date"

[bank_presets.columns]
datetime = "Completed Date"
description = "Description"
amount = "Amount"
`

func TestParseSettings(t *testing.T) {
	s, err := config.ParseSettings(sampleSettings)
	require.NoError(t, err)
	require.Len(t, s.Accounts, 3)

	monzo, ok := s.Account("Assets:Personal:Monzo")
	require.True(t, ok)
	assert.Equal(t, "monzo", monzo.Provider)
	assert.Equal(t, "Monzo", monzo.Name)
	assert.Equal(t, "monzo", monzo.InboxFolder)
	assert.Equal(t, "GBP", monzo.Currency)
	assert.True(t, monzo.IsActive())

	cgd, ok := s.AccountForFolder("cgd")
	require.True(t, ok)
	assert.Equal(t, ledger.AccountID("Assets:Personal:CGD"), cgd.ID)
	assert.Equal(t, "EUR", cgd.Currency)

	_, ok = s.AccountForFolder("unknown")
	assert.False(t, ok)

	assert.Len(t, s.AccountsByGroup("Personal"), 2)
	assert.Len(t, s.AccountsByProvider("vanguard"), 1)
	assert.Equal(t, []string{"cgd", "monzo", "vanguard"}, s.Providers())

	preset, ok := s.BankPreset("revolut")
	require.True(t, ok)
	assert.Equal(t, "Completed Date", preset.Columns.DateTime)

	vanguard, _ := s.Account("Assets:Investments:Vanguard")
	assert.False(t, vanguard.IsActive())
}

func TestParseSettings_Invalid(t *testing.T) {
	type testCase struct {
		name string
		data string
	}

	tests := []testCase{
		{
			name: "BadAccountID",
			data: "[[accounts]]\nid = \"Wallet:Cash\"\n",
		},
		{
			name: "ExpenseAccount",
			data: "[[accounts]]\nid = \"Expenses:Food\"\n",
		},
		{
			name: "DuplicateID",
			data: "[[accounts]]\nid = \"Assets:A\"\n[[accounts]]\nid = \"Assets:A\"\n",
		},
		{
			name: "DuplicateFolder",
			data: "[[accounts]]\nid = \"Assets:A:Bank\"\n[[accounts]]\nid = \"Assets:B:Bank\"\n",
		},
		{
			name: "UnnamedPreset",
			data: "[[bank_presets]]\ndelimiter = \";\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.ParseSettings(tt.data)
			assert.ErrorIs(t, err, config.ErrInvalidSettings)
		})
	}
}

func TestLoadSettings_RulesPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tally.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSettings), 0o600))

	s, err := config.LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "rules.toml"), s.RulesPath())

	leaves := s.ChartLeaves()
	require.Len(t, leaves, 3)
	assert.False(t, leaves[0].IsPlaceholder)
}
