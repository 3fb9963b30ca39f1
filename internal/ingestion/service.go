package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/rpattn/standards/internal/domain"
	"github.com/rpattn/standards/internal/logger"
	"github.com/rpattn/standards/internal/repository"
	"github.com/rpattn/standards/internal/standards"
)

// DefaultPattern matches the files written by the markdown publisher.
const DefaultPattern = ".packmind/standards/*.md"

const importSource = "import"

// Editor is the part of the standards service the importer drives.
type Editor interface {
	CreateStandard(ctx context.Context, req standards.CreateStandardRequest) (standards.EditResult, error)
	UpdateStandard(ctx context.Context, req standards.UpdateStandardRequest) (standards.EditResult, error)
	GetStandard(ctx context.Context, id uuid.UUID) (standards.StandardView, error)
}

// Service imports rendered standards back into a space. Imports carry no
// user, which marks the resulting versions as non-interactive.
type Service struct {
	editor    Editor
	standards repository.StandardRepository
	log       *logger.Logger
}

func NewService(editor Editor, standardRepo repository.StandardRepository, log *logger.Logger) *Service {
	return &Service{
		editor:    editor,
		standards: standardRepo,
		log:       logger.OrNop(log).With("component", "MarkdownImport"),
	}
}

// Request describes one file to import.
type Request struct {
	OrganizationID uuid.UUID
	SpaceID        uuid.UUID
	FileName       string
	OriginSkill    *string
	Data           io.Reader
}

// Summary reports what an import did.
type Summary struct {
	FileName     string    `json:"fileName"`
	StandardID   uuid.UUID `json:"standardId"`
	Slug         string    `json:"slug"`
	Version      int       `json:"version"`
	Created      bool      `json:"created"`
	Changed      bool      `json:"changed"`
	RulesCarried int       `json:"rulesCarried"`
	RulesAdded   int       `json:"rulesAdded"`
}

// Import creates the standard named by the file's slug, or forges a new
// version of it. Rules whose content already exists are carried forward.
func (s *Service) Import(ctx context.Context, req Request) (Summary, error) {
	if req.SpaceID == uuid.Nil {
		return Summary{}, fmt.Errorf("%w: space id is required", domain.ErrValidation)
	}
	if !strings.EqualFold(path.Ext(req.FileName), ".md") {
		return Summary{}, fmt.Errorf("%w: %w: %s", domain.ErrValidation, ErrUnsupportedFormat, req.FileName)
	}
	payload, err := io.ReadAll(req.Data)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read %s: %w", req.FileName, err)
	}
	parsed, err := ParseMarkdown(payload)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %s: %v", domain.ErrValidation, req.FileName, err)
	}

	actor := standards.Actor{OrganizationID: req.OrganizationID, OriginSkill: req.OriginSkill, Source: importSource}
	fileSlug := strings.TrimSuffix(path.Base(req.FileName), path.Ext(req.FileName))
	if fileSlug == "" {
		fileSlug = slug.Make(parsed.Name)
	}

	existing, err := s.standards.FindBySlug(ctx, req.SpaceID, fileSlug)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return s.create(ctx, req, actor, fileSlug, parsed)
	case err != nil:
		return Summary{}, fmt.Errorf("failed to look up standard %s: %w", fileSlug, err)
	}
	return s.update(ctx, req, actor, existing, parsed)
}

func (s *Service) create(ctx context.Context, req Request, actor standards.Actor, fileSlug string, parsed ParsedStandard) (Summary, error) {
	rules := make([]standards.RuleInput, 0, len(parsed.Rules))
	for _, content := range parsed.Rules {
		rules = append(rules, standards.RuleInput{Content: content})
	}
	result, err := s.editor.CreateStandard(ctx, standards.CreateStandardRequest{
		Actor:       actor,
		SpaceID:     req.SpaceID,
		Slug:        fileSlug,
		Name:        parsed.Name,
		Description: parsed.Description,
		Rules:       rules,
	})
	if err != nil {
		return Summary{}, err
	}
	s.log.Info("standard imported", "file", req.FileName, "standard_id", result.Standard.ID, "slug", result.Standard.Slug)
	return Summary{
		FileName:   req.FileName,
		StandardID: result.Standard.ID,
		Slug:       result.Standard.Slug,
		Version:    result.Version.Version,
		Created:    true,
		Changed:    true,
		RulesAdded: len(result.Rules),
	}, nil
}

func (s *Service) update(ctx context.Context, req Request, actor standards.Actor, existing domain.Standard, parsed ParsedStandard) (Summary, error) {
	view, err := s.editor.GetStandard(ctx, existing.ID)
	if err != nil {
		return Summary{}, err
	}

	// each existing rule can be matched once, first come first served
	available := make(map[string][]uuid.UUID, len(view.Rules))
	for _, rule := range view.Rules {
		available[rule.Content] = append(available[rule.Content], rule.ID)
	}
	updates := make([]standards.RuleUpdate, 0, len(parsed.Rules))
	carried := 0
	for _, content := range parsed.Rules {
		update := standards.RuleUpdate{Content: content}
		if ids := available[content]; len(ids) > 0 {
			id := ids[0]
			available[content] = ids[1:]
			update.ID = &id
			carried++
		}
		updates = append(updates, update)
	}

	result, err := s.editor.UpdateStandard(ctx, standards.UpdateStandardRequest{
		Actor:       actor,
		StandardID:  existing.ID,
		Name:        parsed.Name,
		Description: parsed.Description,
		Scope:       view.Version.Scope,
		Rules:       updates,
	})
	if err != nil {
		return Summary{}, err
	}
	s.log.Info("standard re-imported",
		"file", req.FileName,
		"standard_id", existing.ID,
		"version", result.Version.Version,
		"changed", result.Changed,
	)
	return Summary{
		FileName:     req.FileName,
		StandardID:   existing.ID,
		Slug:         result.Standard.Slug,
		Version:      result.Version.Version,
		Changed:      result.Changed,
		RulesCarried: carried,
		RulesAdded:   len(parsed.Rules) - carried,
	}, nil
}

// ImportTree imports every file of fsys matching pattern. Files are processed
// in order and the first failure stops the walk.
func (s *Service) ImportTree(ctx context.Context, fsys fs.FS, pattern string, organizationID, spaceID uuid.UUID) ([]Summary, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultPattern
	}
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to match %s: %w", pattern, err)
	}
	summaries := make([]Summary, 0, len(matches))
	for _, name := range matches {
		if err := ctx.Err(); err != nil {
			return summaries, err
		}
		summary, err := s.importFile(ctx, fsys, name, organizationID, spaceID)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *Service) importFile(ctx context.Context, fsys fs.FS, name string, organizationID, spaceID uuid.UUID) (Summary, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()
	return s.Import(ctx, Request{
		OrganizationID: organizationID,
		SpaceID:        spaceID,
		FileName:       name,
		Data:           f,
	})
}
