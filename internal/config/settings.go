package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Account is a user-configured ledger account fed by a provider's statements.
type Account struct {
	ID          ledger.AccountID `toml:"id"`
	Name        string           `toml:"name"`
	Group       string           `toml:"group"`
	Type        string           `toml:"type"`
	Provider    string           `toml:"provider"`
	InboxFolder string           `toml:"inbox_folder"`
	Currency    string           `toml:"currency"`
	Active      *bool            `toml:"active"`
}

func (a Account) IsActive() bool {
	return a.Active == nil || *a.Active
}

// Columns maps the logical fields a parser needs to the header names in a CSV export.
type Columns struct {
	Date         string `toml:"date"`
	Time         string `toml:"time"`
	DateTime     string `toml:"datetime"`
	Description  string `toml:"description"`
	Amount       string `toml:"amount"`
	MoneyIn      string `toml:"money_in"`
	MoneyOut     string `toml:"money_out"`
	Counterparty string `toml:"counterparty"`
	Category     string `toml:"category"`
	Balance      string `toml:"balance"`
	ID           string `toml:"id"`
	Currency     string `toml:"currency"`
}

// BankPreset overrides the column mapping for a provider, or fully describes a
// provider that has no built-in parser.
type BankPreset struct {
	Name         string  `toml:"name"`
	Delimiter    string  `toml:"delimiter"`
	Currency     string  `toml:"currency"`
	Fingerprint  string  `toml:"fingerprint"`
	DecimalComma bool    `toml:"decimal_comma"`
	Columns      Columns `toml:"columns"`
}

// Settings is the read-only account and provider metadata loaded from the TOML settings file.
type Settings struct {
	Currency    string       `toml:"currency"`
	RulesFile   string       `toml:"rules_file"`
	Accounts    []Account    `toml:"accounts"`
	BankPresets []BankPreset `toml:"bank_presets"`

	dir string
}

// LoadSettings reads and validates the settings file at path.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	s, err := ParseSettings(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s.dir = filepath.Dir(path)

	return s, nil
}

// ParseSettings decodes TOML settings and fills defaults.
func ParseSettings(data string) (*Settings, error) {
	var s Settings
	if _, err := toml.Decode(data, &s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}

	if s.Currency == "" {
		s.Currency = "GBP"
	}

	if err := s.normalize(); err != nil {
		return nil, err
	}

	return &s, nil
}

func (s *Settings) normalize() error {
	ids := make(map[ledger.AccountID]bool, len(s.Accounts))
	folders := make(map[string]ledger.AccountID, len(s.Accounts))

	for i := range s.Accounts {
		a := &s.Accounts[i]

		id, err := ledger.ParseAccountID(string(a.ID))
		if err != nil {
			return fmt.Errorf("%w: account %d: %w", ErrInvalidSettings, i, err)
		}

		if t := id.Type(); t != ledger.TypeAsset && t != ledger.TypeLiability {
			return fmt.Errorf("%w: account %s must be an asset or liability", ErrInvalidSettings, id)
		}

		if ids[id] {
			return fmt.Errorf("%w: duplicate account %s", ErrInvalidSettings, id)
		}

		ids[id] = true
		a.ID = id
		a.Provider = strings.ToLower(strings.TrimSpace(a.Provider))

		if a.Name == "" {
			a.Name = id.Name()
		}

		if a.InboxFolder == "" {
			a.InboxFolder = strings.ToLower(a.Name)
		}

		if a.Currency == "" {
			a.Currency = s.Currency
		}

		key := strings.ToLower(a.InboxFolder)
		if other, dup := folders[key]; dup {
			return fmt.Errorf("%w: inbox folder %q used by %s and %s", ErrInvalidSettings, a.InboxFolder, other, id)
		}

		folders[key] = id
	}

	for i := range s.BankPresets {
		p := &s.BankPresets[i]
		p.Name = strings.ToLower(strings.TrimSpace(p.Name))

		if p.Name == "" {
			return fmt.Errorf("%w: bank preset %d has no name", ErrInvalidSettings, i)
		}
	}

	return nil
}

// Account resolves a configured account by id.
func (s *Settings) Account(id ledger.AccountID) (Account, bool) {
	for _, a := range s.Accounts {
		if a.ID == id {
			return a, true
		}
	}

	return Account{}, false
}

// AccountsByProvider returns the accounts fed by provider, in file order.
func (s *Settings) AccountsByProvider(provider string) []Account {
	provider = strings.ToLower(provider)

	var out []Account

	for _, a := range s.Accounts {
		if a.Provider == provider {
			out = append(out, a)
		}
	}

	return out
}

// AccountsByGroup returns the accounts in group, in file order.
func (s *Settings) AccountsByGroup(group string) []Account {
	var out []Account

	for _, a := range s.Accounts {
		if strings.EqualFold(a.Group, group) {
			out = append(out, a)
		}
	}

	return out
}

// BankPreset resolves a column-mapping preset by provider name.
func (s *Settings) BankPreset(name string) (*BankPreset, bool) {
	name = strings.ToLower(name)

	for i := range s.BankPresets {
		if s.BankPresets[i].Name == name {
			return &s.BankPresets[i], true
		}
	}

	return nil, false
}

// AccountForFolder maps an inbox folder name to its account, case-insensitively.
func (s *Settings) AccountForFolder(folder string) (Account, bool) {
	for _, a := range s.Accounts {
		if strings.EqualFold(a.InboxFolder, folder) {
			return a, true
		}
	}

	return Account{}, false
}

// RulesPath resolves the rules file relative to the settings file.
func (s *Settings) RulesPath() string {
	if s.RulesFile == "" || filepath.IsAbs(s.RulesFile) {
		return s.RulesFile
	}

	return filepath.Join(s.dir, s.RulesFile)
}

// Providers lists the distinct providers across accounts, sorted.
func (s *Settings) Providers() []string {
	var out []string

	for _, a := range s.Accounts {
		if a.Provider != "" && !slices.Contains(out, a.Provider) {
			out = append(out, a.Provider)
		}
	}

	slices.Sort(out)

	return out
}

// ChartLeaves turns the configured accounts into postable chart accounts.
func (s *Settings) ChartLeaves() []*ledger.ChartAccount {
	out := make([]*ledger.ChartAccount, 0, len(s.Accounts))
	for _, a := range s.Accounts {
		out = append(out, ledger.Leaf(a.ID, a.Name, a.Currency, a.IsActive()))
	}

	return out
}

// Presets returns the configured bank presets.
func (s *Settings) Presets() []BankPreset {
	return s.BankPresets
}
