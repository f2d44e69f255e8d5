package importer

import (
	"path/filepath"
	"strings"

	"github.com/MrJamesThe3rd/tally/internal/config"
)

type fingerprint struct {
	provider Provider
	marker   string
}

// fingerprints are header substrings that identify a provider's CSV export.
// Matching is case-insensitive; more specific markers come first.
var fingerprints = []fingerprint{
	{ProviderMonzo, "transaction id,date,time"},
	{ProviderVanguard, "date,details,amount,balance"},
	{ProviderCGD, "consultar saldos"},
	{ProviderCGD, "consultar extrato"},
	{ProviderCGD, "data mov."},
}

// documentTypes maps file extensions to the provider whose non-CSV documents
// they are.
var documentTypes = map[string]Provider{
	".pdf": ProviderVanguard,
}

// Detect names the provider whose fingerprint appears in a CSV file's first
// line. Preset fingerprints are consulted after the built-in ones. It returns
// false when no fingerprint matches.
func Detect(firstLine string, presets []config.BankPreset) (Provider, bool) {
	line := strings.ToLower(strings.ReplaceAll(firstLine, `"`, ""))
	line = strings.Join(strings.Fields(strings.ReplaceAll(line, ", ", ",")), " ")

	for _, fp := range fingerprints {
		if strings.Contains(line, fp.marker) {
			return fp.provider, true
		}
	}

	for _, p := range presets {
		if p.Fingerprint != "" && strings.Contains(line, strings.ToLower(p.Fingerprint)) {
			return Provider(p.Name), true
		}
	}

	return "", false
}

// DocumentProvider reports which provider owns a non-CSV document extension.
func DocumentProvider(path string) (Provider, bool) {
	p, ok := documentTypes[strings.ToLower(filepath.Ext(path))]
	return p, ok
}

// IsCSV reports whether path has a CSV extension.
func IsCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}
