// Package catalog implements the skill query operations exposed to callers:
// listing the catalog, fetching one skill by name and ranking skills against
// a task. Every call reloads the skills tree, so results always reflect the
// files on disk at the time of the call.
package catalog

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/message"

	"github.com/jingkaihe/skills-mcp/pkg/skills"
	"github.com/jingkaihe/skills-mcp/pkg/telemetry"
)

// Repository loads the current skill collection
type Repository interface {
	LoadAll(ctx context.Context) ([]*skills.Skill, error)
}

// Service answers skill queries against a repository
type Service struct {
	repo    Repository
	printer *message.Printer
	minimal bool
	topN    int
}

// Option is a function that configures a Service
type Option func(*Service)

// WithLocale selects the language of result texts ("en" or "zh")
func WithLocale(locale string) Option {
	return func(s *Service) {
		s.printer = newPrinter(locale)
	}
}

// WithMinimal switches match results to the minimal form: every match is
// listed with its score, without ranking numbers, confidence tiers or a
// recommendation
func WithMinimal(minimal bool) Option {
	return func(s *Service) {
		s.minimal = minimal
	}
}

// WithTopN sets how many ranked matches are shown
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// NewService creates a query service backed by repo
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		printer: newPrinter("en"),
		topN:    skills.DefaultTopN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListSkills returns the name and description of every skill in load order
func (s *Service) ListSkills(ctx context.Context) (string, error) {
	var out string
	err := telemetry.WithSpan(ctx, "skills.list", func(ctx context.Context) error {
		loaded, err := s.repo.LoadAll(ctx)
		if err != nil {
			return err
		}
		telemetry.SetAttributes(ctx, attribute.Int("skills.count", len(loaded)))

		out = s.formatList(loaded)
		return nil
	})
	return out, err
}

// GetSkill returns the full text of the first skill whose name matches
// case-insensitively, or a not-found message
func (s *Service) GetSkill(ctx context.Context, name string) (string, error) {
	var out string
	err := telemetry.WithSpan(ctx, "skills.get", func(ctx context.Context) error {
		skill, found, err := s.Lookup(ctx, name)
		if err != nil {
			return err
		}
		telemetry.SetAttributes(ctx, attribute.Bool("skills.found", found))

		if !found {
			out = s.printer.Sprintf(msgSkillNotFound, name)
			return nil
		}
		out = skill.Content
		return nil
	}, attribute.String("skills.name", name))
	return out, err
}

// Lookup returns the first skill whose name matches case-insensitively
func (s *Service) Lookup(ctx context.Context, name string) (*skills.Skill, bool, error) {
	loaded, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, false, err
	}
	skill, found := skills.FindByName(name, loaded)
	return skill, found, nil
}

// MatchSkills ranks the skills against the task and returns the best matches
// with their scores and confidence tiers
func (s *Service) MatchSkills(ctx context.Context, task string) (string, error) {
	var out string
	err := telemetry.WithSpan(ctx, "skills.match", func(ctx context.Context) error {
		loaded, err := s.repo.LoadAll(ctx)
		if err != nil {
			return err
		}
		if len(loaded) == 0 {
			out = s.printer.Sprintf(msgNoSkillsAvailable)
			return nil
		}

		matches := skills.Match(task, loaded)
		telemetry.SetAttributes(ctx,
			attribute.Int("skills.count", len(loaded)),
			attribute.Int("skills.matches", len(matches)),
		)
		if len(matches) == 0 {
			out = s.printer.Sprintf(msgNoMatches)
			return nil
		}

		if s.minimal {
			out = s.formatMinimalMatches(task, matches)
			return nil
		}
		out = s.formatRankedMatches(task, matches)
		return nil
	})
	return out, err
}

// FindSkill returns the full text of the first skill whose name contains the
// keyword, or a not-found message
func (s *Service) FindSkill(ctx context.Context, keyword string) (string, error) {
	var out string
	err := telemetry.WithSpan(ctx, "skills.find", func(ctx context.Context) error {
		loaded, err := s.repo.LoadAll(ctx)
		if err != nil {
			return err
		}

		skill, found := skills.FindByKeyword(keyword, loaded)
		if !found {
			out = s.printer.Sprintf(msgNoKeywordMatch, keyword)
			return nil
		}
		out = skill.Content
		return nil
	}, attribute.String("skills.keyword", keyword))
	return out, err
}
