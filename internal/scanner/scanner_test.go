package scanner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/scanner"
)

const settingsTOML = `
[[accounts]]
id = "Assets:Personal:Monzo"
provider = "monzo"

[[accounts]]
id = "Assets:Personal:CGD"
provider = "cgd"

[[accounts]]
id = "Assets:Investments:Vanguard"
provider = "vanguard"
`

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestScan(t *testing.T) {
	settings, err := config.ParseSettings(settingsTOML)
	require.NoError(t, err)

	inbox := t.TempDir()

	monzo := filepath.Join(inbox, "Monzo", "jan.csv")
	write(t, monzo, "Transaction ID,Date,Time,Amount\n")
	write(t, filepath.Join(inbox, "monzo", ".DS_Store"), "")
	write(t, filepath.Join(inbox, "monzo", "notes.txt"), "hi")

	wrong := filepath.Join(inbox, "monzo", "cgd-export.csv")
	write(t, wrong, "Data mov.;Descrição;Montante\n")

	ambiguous := filepath.Join(inbox, "cgd", "export.csv")
	write(t, ambiguous, "Date;Amount\n")

	pdf := filepath.Join(inbox, "vanguard", "Q1.pdf")
	write(t, pdf, "%PDF")
	strayPDF := filepath.Join(inbox, "cgd", "extrato.pdf")
	write(t, strayPDF, "%PDF")

	write(t, filepath.Join(inbox, "unknown", "a.csv"), "Transaction ID,Date,Time\n")
	write(t, filepath.Join(inbox, "loose.csv"), "Transaction ID,Date,Time\n")

	res, err := scanner.Scan(context.Background(), inbox, settings)
	require.NoError(t, err)

	files := map[string]importer.File{}
	for _, f := range res.Files {
		files[f.Path] = f
	}

	require.Len(t, files, 3)
	assert.Equal(t, importer.File{Path: monzo, Provider: importer.ProviderMonzo, AccountID: "Assets:Personal:Monzo"}, files[monzo])
	assert.Equal(t, importer.ProviderCGD, files[ambiguous].Provider, "ambiguous header falls back to the account provider")
	assert.Equal(t, ledger.AccountID("Assets:Investments:Vanguard"), files[pdf].AccountID)

	rejected := map[string]string{}
	for _, r := range res.Rejected {
		rejected[r.Path] = r.Reason
	}

	assert.Len(t, rejected, 3)
	assert.Contains(t, rejected[wrong], "looks like cgd")
	assert.Contains(t, rejected[strayPDF], "belong to vanguard")
	assert.Equal(t, "unsupported file type", rejected[filepath.Join(inbox, "monzo", "notes.txt")])
}

func TestScan_MissingInbox(t *testing.T) {
	settings, err := config.ParseSettings(settingsTOML)
	require.NoError(t, err)

	res, err := scanner.Scan(context.Background(), filepath.Join(t.TempDir(), "nope"), settings)
	require.NoError(t, err)
	assert.Empty(t, res.Files)
}
