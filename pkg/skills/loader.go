package skills

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/jingkaihe/skills-mcp/pkg/logger"
)

const (
	skillFileName = "SKILL.md"
	markdownExt   = ".md"

	// DefaultSkillsDir is the skills root used when none is configured
	DefaultSkillsDir = "./skills"
)

// Loader discovers skill documents under a root directory
type Loader struct {
	root    string
	exclude []string
}

// Option is a function that configures a Loader
type Option func(*Loader) error

// WithRoot sets the skills root directory
func WithRoot(dir string) Option {
	return func(l *Loader) error {
		if strings.TrimSpace(dir) == "" {
			return errors.New("skills directory cannot be empty")
		}
		l.root = filepath.Clean(dir)
		return nil
	}
}

// WithExclude skips entries whose root-relative path matches any of the
// doublestar patterns. Excluded directories are not descended into.
func WithExclude(patterns ...string) Option {
	return func(l *Loader) error {
		for _, pattern := range patterns {
			if !doublestar.ValidatePattern(pattern) {
				return errors.Errorf("invalid exclude pattern: %s", pattern)
			}
		}
		l.exclude = patterns
		return nil
	}
}

// NewLoader creates a new skill loader
func NewLoader(opts ...Option) (*Loader, error) {
	l := &Loader{root: filepath.Clean(DefaultSkillsDir)}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// Root returns the directory the loader walks
func (l *Loader) Root() string {
	return l.root
}

// LoadReport is the outcome of a single load
type LoadReport struct {
	Root     string
	Skills   []*Skill
	Warnings *multierror.Error // Non-fatal problems: missing root, skipped files
}

// Err returns the aggregated warnings, or nil when there were none
func (r *LoadReport) Err() error {
	return r.Warnings.ErrorOrNil()
}

// Duplicate describes a name shared by more than one loaded skill
type Duplicate struct {
	Name  string
	Paths []string // In load order; the first entry is the one lookups resolve to
}

// Duplicates returns the names, compared case-insensitively, that more than
// one loaded skill uses. The result follows first-encounter order.
func (r *LoadReport) Duplicates() []Duplicate {
	index := make(map[string]int)
	var all []Duplicate

	for _, skill := range r.Skills {
		key := strings.ToLower(skill.Name)
		if i, ok := index[key]; ok {
			all[i].Paths = append(all[i].Paths, skill.Path)
			continue
		}
		index[key] = len(all)
		all = append(all, Duplicate{Name: skill.Name, Paths: []string{skill.Path}})
	}

	var dups []Duplicate
	for _, d := range all {
		if len(d.Paths) > 1 {
			dups = append(dups, d)
		}
	}
	return dups
}

func (r *LoadReport) warn(ctx context.Context, path string, err error, msg string) {
	logger.G(ctx).WithError(err).WithField("path", path).Warn(msg)
	r.Warnings = multierror.Append(r.Warnings, err)
}

// LoadAll loads every skill under the root in traversal order
func (l *Loader) LoadAll(ctx context.Context) ([]*Skill, error) {
	report, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return report.Skills, nil
}

// Load walks the root directory and loads every skill document it finds.
//
// A directory contributes its SKILL.md when present; any other .md file is
// loaded on its own. A missing root yields an empty report. Unreadable files
// are skipped with a warning, while failures to traverse the tree itself are
// returned as errors.
func (l *Loader) Load(ctx context.Context) (*LoadReport, error) {
	report := &LoadReport{Root: l.root, Skills: []*Skill{}}

	info, err := os.Stat(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			report.warn(ctx, l.root, errors.Errorf("skills directory not found: %s", l.root), "skills directory not found")
			return report, nil
		}
		return nil, errors.Wrapf(err, "failed to stat skills directory %s", l.root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("skills path is not a directory: %s", l.root)
	}

	walkRoot, err := resolveRoot(l.root)
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return errors.Wrapf(walkErr, "failed to traverse %s", path)
		}
		if path == walkRoot {
			return nil
		}

		if l.excluded(walkRoot, path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		switch {
		case d.IsDir():
			l.loadCanonical(ctx, walkRoot, path, report)
		case d.Type()&fs.ModeSymlink != 0:
			l.loadSymlink(ctx, walkRoot, path, report)
		case d.Type().IsRegular() && isLooseDocument(d.Name()):
			l.loadFile(ctx, path, report)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.G(ctx).WithField("root", l.root).WithField("count", len(report.Skills)).Debug("loaded skills")
	return report, nil
}

// resolveRoot follows a symlinked root so the walk descends into it
func resolveRoot(root string) (string, error) {
	info, err := os.Lstat(root)
	if err != nil {
		return "", errors.Wrapf(err, "failed to stat skills directory %s", root)
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		return root, nil
	}

	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve skills directory %s", root)
	}
	return resolved, nil
}

func (l *Loader) excluded(root, path string) bool {
	if len(l.exclude) == 0 {
		return false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range l.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// loadCanonical loads dir/SKILL.md when it exists and is not excluded.
// Anything but a regular file is ignored so a FIFO cannot block the read.
func (l *Loader) loadCanonical(ctx context.Context, root, dir string, report *LoadReport) {
	candidate := filepath.Join(dir, skillFileName)
	if l.excluded(root, candidate) {
		return
	}

	info, err := os.Stat(candidate)
	if err != nil {
		if !os.IsNotExist(err) {
			report.warn(ctx, candidate, errors.Wrapf(err, "failed to stat %s", candidate), "skipping skill file")
		}
		return
	}
	if !info.Mode().IsRegular() {
		return
	}

	l.loadFile(ctx, candidate, report)
}

// loadSymlink treats a symlink like its target: a directory gets the
// canonical file check without being descended into, a file gets the
// loose document rule
func (l *Loader) loadSymlink(ctx context.Context, root, path string, report *LoadReport) {
	info, err := os.Stat(path)
	if err != nil {
		logger.G(ctx).WithError(err).WithField("path", path).Debug("ignoring broken symlink")
		return
	}

	switch {
	case info.IsDir():
		l.loadCanonical(ctx, root, path, report)
	case info.Mode().IsRegular() && isLooseDocument(filepath.Base(path)):
		l.loadFile(ctx, path, report)
	}
}

func (l *Loader) loadFile(ctx context.Context, path string, report *LoadReport) {
	skill, err := loadSkill(ctx, path)
	if err != nil {
		report.warn(ctx, path, err, "skipping skill file")
		return
	}
	report.Skills = append(report.Skills, skill)
}

func isLooseDocument(name string) bool {
	return strings.HasSuffix(name, markdownExt) && name != skillFileName
}

// loadSkill loads a single skill from a markdown file
func loadSkill(ctx context.Context, path string) (*Skill, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read skill file %s", path)
	}
	if !utf8.Valid(content) {
		return nil, errors.Errorf("skill file %s is not valid UTF-8", path)
	}

	text := string(content)
	metadata, _, err := parseFrontmatter(text)
	if err != nil {
		logger.G(ctx).WithError(err).WithField("path", path).Warn("ignoring malformed header block")
	}

	md, err := DecodeMetadata(metadata)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode metadata of %s", path)
	}

	name := md.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), markdownExt)
	}

	return &Skill{
		Name:        name,
		Description: md.Description,
		Content:     text,
		Path:        path,
		Metadata:    metadata,
	}, nil
}
