package domain

import "strings"

// Supported example languages, keyed by canonical identifier.
var knownLanguages = map[string][]string{
	"typescript": {"ts", "tsx"},
	"javascript": {"js", "jsx"},
	"python":     {"py"},
	"go":         {"golang"},
	"java":       nil,
	"kotlin":     {"kt"},
	"csharp":     {"c#", "cs"},
	"cpp":        {"c++"},
	"c":          nil,
	"php":        nil,
	"ruby":       {"rb"},
	"rust":       {"rs"},
	"swift":      nil,
	"scala":      nil,
	"sql":        nil,
	"html":       nil,
	"css":        nil,
	"scss":       nil,
	"yaml":       {"yml"},
	"json":       nil,
	"bash":       {"sh", "shell"},
	"markdown":   {"md"},
	"vue":        nil,
	"dart":       nil,
}

var languageAliases = func() map[string]string {
	out := make(map[string]string)
	for canonical, aliases := range knownLanguages {
		out[canonical] = canonical
		for _, alias := range aliases {
			out[alias] = canonical
		}
	}
	return out
}()

// NormalizeLanguage maps a language identifier or alias to its canonical form.
func NormalizeLanguage(lang string) (string, bool) {
	canonical, ok := languageAliases[strings.ToLower(strings.TrimSpace(lang))]
	return canonical, ok
}
