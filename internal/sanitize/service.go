package sanitize

import (
	"context"
	"sync"

	"github.com/MrJamesThe3rd/tally/internal/logger"
)

// Service owns the compiled rule set for a rules file. The set is loaded on
// first use and kept until Reset.
type Service struct {
	path string

	mu    sync.Mutex
	rules *RuleSet
	diags []Diagnostic
}

// NewService returns a service for the rules file at path. An empty path
// means no rules: every description falls back to itself.
func NewService(path string) *Service {
	return &Service{path: path}
}

// RuleSet returns the compiled rules, loading them if needed. Invalid patterns
// are logged as warnings.
func (s *Service) RuleSet(ctx context.Context) (*RuleSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rules != nil {
		return s.rules, nil
	}

	if s.path == "" {
		s.rules, _ = Compile(nil, true)
		return s.rules, nil
	}

	rules, diags, err := LoadRules(s.path)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	for _, d := range diags {
		log.Warn().Str("rules", s.path).Msg(d.String())
	}

	s.rules, s.diags = rules, diags

	return rules, nil
}

// Diagnostics returns the problems found when the rules were last compiled.
func (s *Service) Diagnostics(ctx context.Context) ([]Diagnostic, error) {
	if _, err := s.RuleSet(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.diags, nil
}

// Reset drops the compiled rules so the next call reloads the file.
func (s *Service) Reset() {
	s.mu.Lock()
	s.rules, s.diags = nil, nil
	s.mu.Unlock()
}
