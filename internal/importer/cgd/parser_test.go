package cgd_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/importer/cgd"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

var src = importer.Source{
	Path:     "cgd.csv",
	Provider: importer.ProviderCGD,
	Account:  config.Account{ID: "Assets:Business:CGD", Provider: "cgd", Currency: "EUR"},
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func parse(t *testing.T, csv string) []*transaction.Parsed {
	t.Helper()

	res, err := cgd.NewParser().ParseReader(strings.NewReader(csv), src)
	require.NoError(t, err)

	return res.Transactions()
}

func TestParser_Conta(t *testing.T) {
	csv := `Consultar saldos e movimentos à ordem - 31-01-2026;"=""0000"""
Nome cliente;JOHN DOE
NIF;"=""123"""

Dados da conta
Conta;0000 - EUR - Conta Extracto
Saldo contabilístico;1.000,00 EUR

Data mov.;Data-valor;Descrição;Montante;Saldo contabilístico após movimento
30-01-2026;30-01-2026;INSTITUTO GESTAO FINA;-588,74;48.825,46
09-01-2026;09-01-2026;TFI Wise;8.608,52;52.532,78
`

	txs := parse(t, csv)
	require.Len(t, txs, 2)

	assert.Equal(t, date(2026, 1, 30), txs[0].PostedAt)
	assert.Equal(t, "INSTITUTO GESTAO FINA", txs[0].RawDescription)
	assert.Equal(t, int64(-58874), txs[0].AmountMinor)
	assert.Equal(t, int64(4882546), *txs[0].BalanceMinor)
	assert.Equal(t, "EUR", txs[0].Currency)
	assert.Equal(t, src.Account.ID, txs[0].ChartAccountID)

	assert.Equal(t, date(2026, 1, 9), txs[1].PostedAt)
	assert.Equal(t, "TFI Wise", txs[1].RawDescription)
	assert.Equal(t, int64(860852), txs[1].AmountMinor)
}

func TestParser_Extrato(t *testing.T) {
	csv := `Consultar extrato - 15-02-2026 : 0829015676030
Nome empresa ;VIBRANTGARDEN UNIPESSOAL,LDA
Saldo contabilístico final ;41.393,66

Data mov. ;Data valor ;Origem ;Descrição ;Movimento ;Estorno ;Saldo contabilístico após movimento ;
13-02-2026;13-02-2026;"=""0003""";PAGAMENTO TSU ;-608,13;  ;41.393,66;
04-02-2026;04-02-2026;SIBS ;TFI Wise ;4.324,06;  ;51.302,85;
`

	txs := parse(t, csv)
	require.Len(t, txs, 2)

	assert.Equal(t, date(2026, 2, 13), txs[0].PostedAt)
	assert.Equal(t, "PAGAMENTO TSU", txs[0].RawDescription)
	assert.Equal(t, int64(-60813), txs[0].AmountMinor)
	assert.Equal(t, int64(4139366), *txs[0].BalanceMinor)

	assert.Equal(t, int64(432406), txs[1].AmountMinor)
}

func TestParser_Cartao(t *testing.T) {
	csv := `Consultar saldos e movimentos de cartões - 15-02-2026
Conta cartão ;4163 **** **** 8016 - EUR - Business Débito

Data ;Data valor ;Descrição ;Débito ;Crédito ;
16-12-2025 ;14-12-2025 ;PA GONDOMAR         GONDOMAR ;64,00 ; ;
31-12-2025 ;29-12-2025 ;UBER   *TRIP             HELP.UBER.COMNL ;47,91 ; ;
16-12-2025 ;14-12-2025 ;REFUND AMAZON ;  ;25,00 ;
 ; ; ; ;Página 1/2 ;
`

	res, err := cgd.NewParser().ParseReader(strings.NewReader(csv), src)
	require.NoError(t, err)

	txs := res.Transactions()
	require.Len(t, txs, 3)

	assert.Equal(t, date(2025, 12, 16), txs[0].PostedAt)
	assert.Equal(t, "PA GONDOMAR         GONDOMAR", txs[0].RawDescription)
	assert.Equal(t, int64(-6400), txs[0].AmountMinor)
	assert.Nil(t, txs[0].BalanceMinor)

	assert.Equal(t, int64(-4791), txs[1].AmountMinor)
	assert.Equal(t, int64(2500), txs[2].AmountMinor)

	require.Len(t, res.SkippedRows(), 1, "page footer")
}

func TestParser_SyntheticIDs(t *testing.T) {
	csv := `Data mov.;Descrição;Montante
30-01-2026;COFFEE;-1,50
30-01-2026;COFFEE;-1,50
31-01-2026;COFFEE;-1,50
`

	first := parse(t, csv)
	require.Len(t, first, 3)

	ids := map[string]bool{}
	for _, tx := range first {
		require.NotNil(t, tx.ProviderTxnID)
		assert.True(t, strings.HasPrefix(*tx.ProviderTxnID, "cgd-"))
		ids[*tx.ProviderTxnID] = true
	}

	assert.Len(t, ids, 3, "identical same-day rows get distinct ids")

	second := parse(t, csv)
	assert.Equal(t, *first[1].ProviderTxnID, *second[1].ProviderTxnID, "ids are stable across runs")
}

func TestParser_Latin1Encoding(t *testing.T) {
	utf8CSV := "Data mov.;Descrição;Montante\n30-01-2026;CAFÉ CENTRAL;-10,00\n"

	latin1Bytes, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	res, err := cgd.NewParser().ParseReader(bytes.NewReader(latin1Bytes), src)
	require.NoError(t, err)
	require.Len(t, res.Transactions(), 1)

	assert.Equal(t, "CAFÉ CENTRAL", res.Transactions()[0].RawDescription)
}

func TestParser_DifferentColumnOrder(t *testing.T) {
	csv := `Random;MetaData
Montante;Descrição;Data mov.;Ignored
-10,00;TEST_ORDER;30-01-2026;XXX
`

	txs := parse(t, csv)
	require.Len(t, txs, 1)

	assert.Equal(t, "TEST_ORDER", txs[0].RawDescription)
	assert.Equal(t, int64(-1000), txs[0].AmountMinor)
}

func TestParser_NoMatchingLayout(t *testing.T) {
	type testCase struct {
		name string
		csv  string
		want []string
	}

	tests := []testCase{
		{
			name: "Empty",
			csv:  "",
			want: []string{"Data mov.", "Descrição", "Montante"},
		},
		{
			name: "AmountMissing",
			csv:  "Data mov.;Descrição;Valor\n30-01-2026;X;1,00\n",
			want: []string{"Movimento"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cgd.NewParser().ParseReader(strings.NewReader(tt.csv), src)

			var missing *importer.MissingColumnsError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, tt.want, missing.Columns)
		})
	}
}

func TestParser_PresetRenamesColumns(t *testing.T) {
	withPreset := src
	withPreset.Preset = &config.BankPreset{Name: "cgd", Columns: config.Columns{Amount: "Valor"}}

	res, err := cgd.NewParser().ParseReader(strings.NewReader("Data mov.;Descrição;Valor\n30-01-2026;PAG SERV;-12,50\n"), withPreset)
	require.NoError(t, err)

	txs := res.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, int64(-1250), txs[0].AmountMinor)
	assert.Equal(t, date(2026, 1, 30), txs[0].PostedAt)
}

func TestParser_HeaderOnly(t *testing.T) {
	txs := parse(t, `Data mov.;Data-valor;Descrição;Montante`)
	assert.Empty(t, txs)
}

func TestParser_MissingDescriptionSkipsRow(t *testing.T) {
	csv := `Data mov.;Descrição;Montante
30-01-2026;;-10,00
31-01-2026;OK;-1,00
`

	res, err := cgd.NewParser().ParseReader(strings.NewReader(csv), src)
	require.NoError(t, err)
	require.Len(t, res.Transactions(), 1)

	skipped := res.SkippedRows()
	require.Len(t, skipped, 1)
	assert.Equal(t, 2, skipped[0].Line)
	assert.Equal(t, "missing description", skipped[0].Reason)
}

func TestParser_LargeAmounts(t *testing.T) {
	txs := parse(t, "Data mov.;Descrição;Montante\n30-01-2026;BIG TRANSFER;-1.234.567,89\n")
	require.Len(t, txs, 1)

	assert.Equal(t, int64(-123456789), txs[0].AmountMinor)
}

func TestParser_SkipsFooterRows(t *testing.T) {
	txs := parse(t, "Data mov.;Descrição;Montante\n30-01-2026;TEST;-10,00\nTotais;;;;\n")
	require.Len(t, txs, 1)
}

func TestParser_ParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cgd.csv")
	require.NoError(t, os.WriteFile(path, []byte("Data mov.;Descrição;Montante\n30-01-2026;TEST;-10,00\n"), 0o600))

	s := src
	s.Path = path

	res, err := cgd.NewParser().Parse(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, res.Transactions(), 1)
	assert.Equal(t, path, res.Transactions()[0].SourceFile)

	s.Account.Provider = "monzo"
	_, err = cgd.NewParser().Parse(context.Background(), s)
	assert.ErrorIs(t, err, importer.ErrWrongProviderForAccount)
}
