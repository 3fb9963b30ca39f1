package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/rpattn/standards/internal/domain"
	"github.com/rpattn/standards/internal/logger"
	"github.com/rpattn/standards/internal/standards"
)

// Reader is the read side of the standards service used for exports.
type Reader interface {
	GetStandard(ctx context.Context, id uuid.UUID) (standards.StandardView, error)
	ListVersions(ctx context.Context, standardID uuid.UUID) ([]domain.StandardVersion, error)
	GetVersion(ctx context.Context, standardID uuid.UUID, number int) (standards.VersionView, error)
}

// Service renders and publishes standards.
type Service struct {
	reader     Reader
	publishDir string
	log        *logger.Logger
}

type Option func(*Service)

// WithPublishDirectory sets the repository root markdown files are written under.
func WithPublishDirectory(dir string) Option {
	return func(s *Service) {
		if strings.TrimSpace(dir) != "" {
			s.publishDir = filepath.Clean(dir)
		}
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log.With("component", "ExportService")
		}
	}
}

func NewService(reader Reader, opts ...Option) *Service {
	service := &Service{
		reader:     reader,
		publishDir: ".",
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Document is a rendered markdown file and where it belongs.
type Document struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Version int    `json:"version"`
}

// Markdown renders the latest version, or the given version number when set.
func (s *Service) Markdown(ctx context.Context, standardID uuid.UUID, version *int) (Document, error) {
	view, err := s.reader.GetStandard(ctx, standardID)
	if err != nil {
		return Document{}, err
	}
	snapshot, rules := view.Version, view.Rules
	if version != nil && *version != view.Version.Version {
		historic, err := s.reader.GetVersion(ctx, standardID, *version)
		if err != nil {
			return Document{}, err
		}
		snapshot, rules = historic.Version, historic.Rules
	}
	return Document{
		Path:    MarkdownPath(view.Standard.Slug),
		Content: RenderMarkdown(snapshot, rules),
		Version: snapshot.Version,
	}, nil
}

// Publish writes the latest version under the publish directory and returns
// the absolute file path. The file is replaced atomically.
func (s *Service) Publish(ctx context.Context, standardID uuid.UUID) (string, error) {
	doc, err := s.Markdown(ctx, standardID, nil)
	if err != nil {
		return "", err
	}
	target := filepath.Join(s.publishDir, filepath.FromSlash(doc.Path))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create publish directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".standard-*.md")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.WriteString(doc.Content); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write markdown: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close markdown: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return "", fmt.Errorf("failed to move markdown into place: %w", err)
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	s.log.Info("standard published", "standard_id", standardID, "version", doc.Version, "path", abs)
	return abs, nil
}

// WriteHistory streams the full version history of a standard as XLSX.
func (s *Service) WriteHistory(ctx context.Context, standardID uuid.UUID, w io.Writer) (domain.Standard, error) {
	view, err := s.reader.GetStandard(ctx, standardID)
	if err != nil {
		return domain.Standard{}, err
	}
	versions, err := s.reader.ListVersions(ctx, standardID)
	if err != nil {
		return domain.Standard{}, err
	}
	history := make([]VersionHistory, 0, len(versions))
	for _, v := range versions {
		full, err := s.reader.GetVersion(ctx, standardID, v.Version)
		if err != nil {
			return domain.Standard{}, err
		}
		history = append(history, VersionHistory{Version: full.Version, Rules: full.Rules, Examples: full.Examples})
	}
	if err := WriteHistoryWorkbook(w, view.Standard, history); err != nil {
		return domain.Standard{}, err
	}
	return view.Standard, nil
}
