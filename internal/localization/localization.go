// Package localization provides functionality for internationalization (i18n).
// Translation catalogs are JSON files embedded into the binary, one per
// language (e.g. "en.json").
package localization

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// DefaultLanguage is used when nothing better matches.
const DefaultLanguage = "en"

//go:embed locales/*.json
var embedded embed.FS

// Localizer manages the translations for the application.
// It holds a map of languages, each with its own map of translation keys and values.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex

	// langs[i] is the catalog for the i-th tag known to matcher.
	langs   []string
	matcher language.Matcher
}

// NewLocalizer loads the catalogs bundled with the binary.
func NewLocalizer() (*Localizer, error) {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, err
	}
	return NewLocalizerFS(sub)
}

// NewLocalizerFS loads every *.json file at the root of fsys.
func NewLocalizerFS(fsys fs.FS) (*Localizer, error) {
	l := &Localizer{
		translations: make(map[string]map[string]string),
	}

	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		lang := strings.TrimSuffix(file.Name(), ".json")
		data, err := fs.ReadFile(fsys, path.Join(".", file.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read localization file %s: %w", file.Name(), err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("failed to parse localization file %s: %w", file.Name(), err)
		}

		l.translations[lang] = translations
	}

	l.buildMatcher()
	return l, nil
}

// buildMatcher registers every catalog whose name is a valid BCP 47 tag, with
// the default language first so it wins when nothing matches.
func (l *Localizer) buildMatcher() {
	names := make([]string, 0, len(l.translations))
	for lang := range l.translations {
		names = append(names, lang)
	}
	slices.SortFunc(names, func(a, b string) int {
		switch {
		case a == DefaultLanguage:
			return -1
		case b == DefaultLanguage:
			return 1
		}
		return strings.Compare(a, b)
	})

	tags := []language.Tag{language.Make(DefaultLanguage)}
	l.langs = []string{DefaultLanguage}
	for _, name := range names {
		if name == DefaultLanguage {
			continue
		}
		tag, err := language.Parse(name)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		l.langs = append(l.langs, name)
	}
	l.matcher = language.NewMatcher(tags)
}

// GetString returns the localized string for a given key and language.
// If the language or the key is not found, it returns the key itself as a fallback.
func (l *Localizer) GetString(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if langTranslations, ok := l.translations[lang]; ok {
		if value, ok := langTranslations[key]; ok {
			return value
		}
	}

	// Fallback to a default language if the key is not found in the specified language
	if lang != DefaultLanguage {
		if enTranslations, ok := l.translations[DefaultLanguage]; ok {
			if value, ok := enTranslations[key]; ok {
				return value
			}
		}
	}

	return key
}

// Format is GetString followed by fmt.Sprintf when args are given.
func (l *Localizer) Format(lang, key string, args ...any) string {
	s := l.GetString(lang, key)
	if len(args) == 0 {
		return s
	}
	return fmt.Sprintf(s, args...)
}

// Detect picks the catalog that best serves an Accept-Language header,
// honouring quality values. Unparseable headers get the default language.
func (l *Localizer) Detect(acceptLanguage string) string {
	desired, _, err := language.ParseAcceptLanguage(strings.TrimSpace(acceptLanguage))
	if err != nil || len(desired) == 0 {
		return DefaultLanguage
	}
	_, i, conf := l.matcher.Match(desired...)
	if conf == language.No {
		return DefaultLanguage
	}
	return l.langs[i]
}

// Languages lists the loaded catalogs.
func (l *Localizer) Languages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]string, 0, len(l.translations))
	for lang := range l.translations {
		out = append(out, lang)
	}
	return out
}
