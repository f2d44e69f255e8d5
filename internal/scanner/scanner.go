package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MrJamesThe3rd/tally/internal/config"
	enc "github.com/MrJamesThe3rd/tally/internal/encoding"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/logger"
)

// Settings resolves inbox folders to accounts.
type Settings interface {
	AccountForFolder(folder string) (config.Account, bool)
	Presets() []config.BankPreset
}

// Rejection is a file inside an account folder that will not be imported.
type Rejection struct {
	Path   string
	Reason string
}

type Result struct {
	Files    []importer.File
	Rejected []Rejection
}

// Scan lists the importable statements under inboxDir. Each subdirectory is
// matched to an account by folder name; folders with no account are ignored.
// A missing inbox yields an empty result.
func Scan(ctx context.Context, inboxDir string, settings Settings) (*Result, error) {
	log := logger.FromContext(ctx)
	res := &Result{}

	folders, err := os.ReadDir(inboxDir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("inbox", inboxDir).Msg("inbox does not exist")
			return res, nil
		}

		return nil, fmt.Errorf("read inbox: %w", err)
	}

	for _, folder := range folders {
		if !folder.IsDir() || hidden(folder.Name()) {
			continue
		}

		account, ok := settings.AccountForFolder(folder.Name())
		if !ok {
			log.Debug().Str("folder", folder.Name()).Msg("folder does not map to an account")
			continue
		}

		if err := scanFolder(ctx, filepath.Join(inboxDir, folder.Name()), account, settings.Presets(), res); err != nil {
			return nil, err
		}
	}

	return res, nil
}

func scanFolder(ctx context.Context, dir string, account config.Account, presets []config.BankPreset, res *Result) error {
	log := logger.FromContext(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read folder %s: %w", dir, err)
	}

	expected := importer.Provider(account.Provider)

	for _, e := range entries {
		if e.IsDir() || hidden(e.Name()) {
			continue
		}

		path := filepath.Join(dir, e.Name())

		provider, reason, err := identify(path, expected, presets)
		if err != nil {
			return err
		}

		if reason != "" {
			log.Warn().Str("file", path).Str("reason", reason).Msg("file rejected")
			res.Rejected = append(res.Rejected, Rejection{Path: path, Reason: reason})

			continue
		}

		log.Debug().Str("file", path).Str("provider", string(provider)).Msg("file accepted")
		res.Files = append(res.Files, importer.File{Path: path, Provider: provider, AccountID: account.ID})
	}

	return nil
}

// identify confirms the provider of one file. A non-empty reason rejects it.
func identify(path string, expected importer.Provider, presets []config.BankPreset) (importer.Provider, string, error) {
	if doc, ok := importer.DocumentProvider(path); ok {
		if doc != expected {
			return "", fmt.Sprintf("%s documents belong to %s, folder account uses %s", filepath.Ext(path), doc, expected), nil
		}

		return doc, "", nil
	}

	if !importer.IsCSV(path) {
		return "", "unsupported file type", nil
	}

	line, err := enc.FirstLine(path)
	if err != nil {
		return "", "", fmt.Errorf("sniff %s: %w", path, err)
	}

	detected, ok := importer.Detect(line, presets)
	if !ok {
		detected = expected
	}

	if detected != expected {
		return "", fmt.Sprintf("header looks like %s, folder account uses %s", detected, expected), nil
	}

	return detected, "", nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
