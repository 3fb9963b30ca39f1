package ingestion

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned when an uploaded file is not markdown.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}
)

// ParsedStandard is the content recovered from a rendered standard file.
type ParsedStandard struct {
	Name        string
	Description string
	Rules       []string
}

// ParseMarkdown reads the format produced by the markdown exporter: a "# "
// title, free description text, a "## Rules" section of bullets, and an
// optional footer after a "---" line.
func ParseMarkdown(payload []byte) (ParsedStandard, error) {
	payload = bytes.TrimPrefix(payload, byteOrderMark)
	scanner := bufio.NewScanner(bytes.NewReader(payload))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var (
		parsed      ParsedStandard
		description []string
		inRules     bool
		lineNo      int
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \t\r")
		trimmed := strings.TrimSpace(line)

		switch {
		case parsed.Name == "":
			if trimmed == "" {
				continue
			}
			if !strings.HasPrefix(trimmed, "# ") {
				return ParsedStandard{}, fmt.Errorf("line %d: expected \"# <name>\" title", lineNo)
			}
			parsed.Name = strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		case trimmed == "---":
			return finish(parsed, description)
		case strings.EqualFold(trimmed, "## Rules"):
			inRules = true
		case inRules:
			if rule, ok := bullet(trimmed); ok {
				parsed.Rules = append(parsed.Rules, rule)
			} else if trimmed != "" && len(parsed.Rules) > 0 {
				// wrapped continuation of the previous bullet
				last := len(parsed.Rules) - 1
				parsed.Rules[last] = parsed.Rules[last] + " " + trimmed
			}
		default:
			description = append(description, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return ParsedStandard{}, fmt.Errorf("failed to read markdown: %w", err)
	}
	return finish(parsed, description)
}

func finish(parsed ParsedStandard, description []string) (ParsedStandard, error) {
	if parsed.Name == "" {
		return ParsedStandard{}, errors.New("markdown has no title")
	}
	parsed.Description = strings.TrimSpace(strings.Join(description, "\n"))
	return parsed, nil
}

func bullet(line string) (string, bool) {
	for _, marker := range []string{"* ", "- "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker)), true
		}
	}
	return "", false
}
