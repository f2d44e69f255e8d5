package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/MrJamesThe3rd/tally/internal/logger"
)

var ErrInvalidState = errors.New("invalid archive state")

type State int

const (
	StatePrepared State = iota
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StatePrepared:
		return "prepared"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled back"
	}

	return fmt.Sprintf("State(%d)", int(s))
}

// Source is one processed inbox file.
type Source struct {
	Path      string
	Provider  string
	AccountID string
}

// Move is a planned relocation of one file.
type Move struct {
	Source string
	Target string
}

// Plan is a set of moves computed up front and applied only once the ledger
// has committed. Commit and Rollback are idempotent.
type Plan struct {
	mu    sync.Mutex
	moves []Move
	done  []bool
	state State
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// Prepare computes a collision-free target for every source under
// <archiveDir>/<YYYY-MM-DD>/. Nothing is touched on disk.
func Prepare(archiveDir string, sources []Source, now time.Time) (*Plan, error) {
	if archiveDir == "" {
		return nil, errors.New("preparing archive: empty archive directory")
	}

	dir := filepath.Join(archiveDir, now.Format(time.DateOnly))
	stamp := now.Format("150405")
	taken := make(map[string]bool, len(sources))

	p := &Plan{state: StatePrepared}

	for i, src := range sources {
		base := filepath.Base(src.Path)

		var target string

		for seq := i + 1; ; seq += len(sources) {
			name := fmt.Sprintf("%s_%s_%s_%03d_%s", stamp, safe(src.Provider), safe(src.AccountID), seq, base)
			target = filepath.Join(dir, name)

			if taken[target] {
				continue
			}

			// Unreadable targets are left for Commit to report.
			if _, err := os.Lstat(target); err == nil {
				continue
			}

			break
		}

		taken[target] = true
		p.moves = append(p.moves, Move{Source: src.Path, Target: target})
	}

	p.done = make([]bool, len(p.moves))

	return p, nil
}

func safe(s string) string {
	s = strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if s == "" {
		return "unknown"
	}

	return s
}

// Moves returns the planned moves in order.
func (p *Plan) Moves() []Move {
	return append([]Move(nil), p.moves...)
}

func (p *Plan) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// Archived returns the targets of the files currently in the archive.
func (p *Plan) Archived() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []string

	for i, m := range p.moves {
		if p.done[i] {
			out = append(out, m.Target)
		}
	}

	return out
}

// Commit performs the moves. If one fails, the files already moved are put
// back, the plan ends rolled back and the move error is returned.
func (p *Plan) Commit(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateCommitted:
		return nil
	case StateRolledBack:
		return fmt.Errorf("%w: commit after rollback", ErrInvalidState)
	}

	log := logger.FromContext(ctx)

	for i, m := range p.moves {
		if err := move(m.Source, m.Target); err != nil {
			log.Error().Err(err).Str("source", m.Source).Msg("archive move failed, restoring")
			p.rollback(ctx)

			return fmt.Errorf("archiving %s: %w", m.Source, err)
		}

		p.done[i] = true

		log.Debug().Str("source", m.Source).Str("target", m.Target).Msg("archived")
	}

	p.state = StateCommitted

	return nil
}

// Rollback restores every moved file. Failures are logged and skipped so the
// caller's original error stays the one reported.
func (p *Plan) Rollback(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateRolledBack {
		return
	}

	p.rollback(ctx)
}

func (p *Plan) rollback(ctx context.Context) {
	log := logger.FromContext(ctx)

	for i := len(p.moves) - 1; i >= 0; i-- {
		if !p.done[i] {
			continue
		}

		m := p.moves[i]
		if err := move(m.Target, m.Source); err != nil {
			log.Error().Err(err).Str("target", m.Target).Str("source", m.Source).Msg("archive rollback failed")
			continue
		}

		p.done[i] = false
	}

	p.state = StateRolledBack
}

func move(from, to string) error {
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return err
	}

	err := os.Rename(from, to)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if err := copyFile(from, to); err != nil {
		return err
	}

	return os.Remove(from)
}

func copyFile(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(to)

		return err
	}

	return out.Close()
}
