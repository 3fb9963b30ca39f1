package export

import (
	"fmt"
	"path"
	"strings"

	"github.com/rpattn/standards/internal/domain"
)

// MarkdownDir is where rendered standards live inside a repository.
const MarkdownDir = ".packmind/standards"

// MarkdownPath returns the repository-relative path for a standard's file.
func MarkdownPath(slug string) string {
	return path.Join(MarkdownDir, slug+".md")
}

// RenderMarkdown renders a version and its rules for publishing.
func RenderMarkdown(version domain.StandardVersion, rules []domain.Rule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", version.Name)
	if desc := strings.TrimSpace(version.Description); desc != "" {
		b.WriteString(desc)
		b.WriteString("\n\n")
	}
	b.WriteString("## Rules\n\n")
	for _, rule := range rules {
		fmt.Fprintf(&b, "* %s\n", oneLine(rule.Content))
	}
	fmt.Fprintf(&b, "\n---\n\n_Standard version %d_\n", version.Version)
	return b.String()
}

// bullets must stay on one line to round-trip through the importer
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
