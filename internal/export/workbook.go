package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/rpattn/standards/internal/domain"
)

const (
	versionsSheet = "Versions"
	rulesSheet    = "Rules"

	WorkbookMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// VersionHistory is one version with its rules and examples, as exported.
type VersionHistory struct {
	Version  domain.StandardVersion
	Rules    []domain.Rule
	Examples map[uuid.UUID][]domain.RuleExample
}

// WriteHistoryWorkbook writes an XLSX file with one row per version on the
// first sheet and one row per (version, rule) on the second.
func WriteHistoryWorkbook(w io.Writer, standard domain.Standard, history []VersionHistory) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", versionsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(rulesSheet); err != nil {
		return fmt.Errorf("failed to create rules sheet: %w", err)
	}

	versionHeader := []any{"Version", "Name", "Slug", "Description", "Scope", "Summary", "Rules", "Editor", "Created"}
	if err := f.SetSheetRow(versionsSheet, "A1", &versionHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	ruleHeader := []any{"Version", "Position", "Rule ID", "Content", "Languages"}
	if err := f.SetSheetRow(rulesSheet, "A1", &ruleHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	ruleRow := 2
	for i, entry := range history {
		v := entry.Version
		row := []any{
			v.Version,
			v.Name,
			v.Slug,
			v.Description,
			domain.ScopeValue(v.Scope),
			domain.ScopeValue(v.Summary),
			len(entry.Rules),
			editor(v.UserID),
			v.CreatedAt.UTC().Format(time.RFC3339),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(versionsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write version %d: %w", v.Version, err)
		}

		for _, rule := range entry.Rules {
			langs := domain.ExampleLanguages(entry.Examples[rule.ID])
			row := []any{v.Version, rule.Position + 1, rule.ID.String(), rule.Content, strings.Join(langs, ", ")}
			cell, err := excelize.CoordinatesToCellName(1, ruleRow)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(rulesSheet, cell, &row); err != nil {
				return fmt.Errorf("failed to write rule %s: %w", rule.ID, err)
			}
			ruleRow++
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{Title: standard.Name, Subject: standard.Slug}); err != nil {
		return fmt.Errorf("failed to set document properties: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func editor(id *uuid.UUID) string {
	if id == nil {
		return "import"
	}
	return id.String()
}
