package importer_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/importer"
)

func TestHeader(t *testing.T) {
	rows, err := importer.ReadCSV(strings.NewReader("Data mov. ;Descrição ;Montante;\n"), ';')
	require.NoError(t, err)

	h := importer.NewHeader(rows[0])
	assert.Equal(t, 0, h.Index("data mov."))
	assert.Equal(t, 1, h.Index("Descrição"))
	assert.Equal(t, -1, h.Index(""))
	assert.Equal(t, -1, h.Index("Saldo"))
	assert.True(t, h.Has("Montante", "Data mov."))
	assert.Equal(t, []string{"Saldo", "Balance"}, h.Missing("Saldo", "Montante", "Balance"))

	var missing *importer.MissingColumnsError
	require.True(t, errors.As(h.Require("Saldo"), &missing))
	assert.Equal(t, "missing columns: Saldo", missing.Error())
	assert.NoError(t, h.Require("Montante"))
}

func TestCell(t *testing.T) {
	row := []string{" a ", ""}

	assert.Equal(t, "a", importer.Cell(row, 0))
	assert.Equal(t, "", importer.Cell(row, 5))
	assert.Equal(t, "", importer.Cell(row, -1))
	assert.Nil(t, importer.OptionalCell(row, 1))
	assert.Equal(t, "a", *importer.OptionalCell(row, 0))
}

func TestResolveColumns(t *testing.T) {
	defaults := config.Columns{Date: "Date", Amount: "Amount", Description: "Description"}

	assert.Equal(t, defaults, importer.ResolveColumns(defaults, nil))

	got := importer.ResolveColumns(defaults, &config.BankPreset{Columns: config.Columns{Amount: "Value", Balance: "Saldo"}})
	assert.Equal(t, config.Columns{Date: "Date", Amount: "Value", Description: "Description", Balance: "Saldo"}, got)
}

func TestSyntheticID(t *testing.T) {
	a := importer.SyntheticID("vg-", "2024-01-02", "Deposit", "500.00")
	b := importer.SyntheticID("vg-", "2024-01-02", "Deposit", "500.00")
	c := importer.SyntheticID("vg-", "2024-01-02", "Deposit", "500.01")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 3+16)
}

func TestCurrency(t *testing.T) {
	src := importer.Source{Account: config.Account{Currency: "gbp"}}
	assert.Equal(t, "GBP", importer.Currency("", src))
	assert.Equal(t, "USD", importer.Currency("usd", src))

	src.Preset = &config.BankPreset{Currency: "EUR"}
	assert.Equal(t, "EUR", importer.Currency("", src))
}
