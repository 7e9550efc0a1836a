// Package i18n resolves display strings through a language fallback chain.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var locales embed.FS

// DefaultLanguage terminates every fallback chain.
var DefaultLanguage = language.English

// Translator is a synchronous key -> string lookup. It is immutable once
// built and safe for concurrent use.
type Translator struct {
	chain   []language.Tag
	bundles map[language.Tag]map[string]string
}

// New builds a translator over the embedded bundles for lang, falling back
// through fallbacks and then English.
func New(lang string, fallbacks ...string) (*Translator, error) {
	bundles, err := loadEmbedded()
	if err != nil {
		return nil, err
	}
	return NewFromBundles(bundles, lang, fallbacks...), nil
}

// NewFromBundles builds a translator over caller-supplied bundles.
func NewFromBundles(bundles map[language.Tag]map[string]string, lang string, fallbacks ...string) *Translator {
	supported := supportedTags(bundles)
	t := &Translator{bundles: bundles}
	if len(supported) == 0 {
		return t
	}
	matcher := language.NewMatcher(supported)

	seen := make(map[language.Tag]bool)
	want := append([]string{lang}, fallbacks...)
	want = append(want, DefaultLanguage.String())
	for _, raw := range want {
		tag, err := language.Parse(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		_, idx, conf := matcher.Match(tag)
		if conf == language.No {
			continue
		}
		match := supported[idx]
		if !seen[match] {
			seen[match] = true
			t.chain = append(t.chain, match)
		}
	}
	return t
}

// T returns the string for key from the first bundle in the chain that has
// it, or the key itself.
func (t *Translator) T(key string) string {
	for _, tag := range t.chain {
		if s, ok := t.bundles[tag][key]; ok {
			return s
		}
	}
	return key
}

// Tf formats the string for key with args.
func (t *Translator) Tf(key string, args ...any) string {
	return fmt.Sprintf(t.T(key), args...)
}

// Language is the primary language of the chain.
func (t *Translator) Language() language.Tag {
	if len(t.chain) == 0 {
		return DefaultLanguage
	}
	return t.chain[0]
}

// Chain returns the resolved fallback chain.
func (t *Translator) Chain() []language.Tag {
	return append([]language.Tag(nil), t.chain...)
}

func loadEmbedded() (map[language.Tag]map[string]string, error) {
	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	bundles := make(map[language.Tag]map[string]string, len(entries))
	for _, e := range entries {
		name := e.Name()
		tag, err := language.Parse(strings.TrimSuffix(name, path.Ext(name)))
		if err != nil {
			return nil, fmt.Errorf("locale %s: %w", name, err)
		}
		data, err := locales.ReadFile("locales/" + name)
		if err != nil {
			return nil, err
		}
		messages := map[string]string{}
		if err := yaml.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("locale %s: %w", name, err)
		}
		bundles[tag] = messages
	}
	return bundles, nil
}

// supportedTags orders bundle tags with the default language first so it is
// the matcher's fallback.
func supportedTags(bundles map[language.Tag]map[string]string) []language.Tag {
	tags := make([]language.Tag, 0, len(bundles))
	for tag := range bundles {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i] == DefaultLanguage {
			return true
		}
		if tags[j] == DefaultLanguage {
			return false
		}
		return tags[i].String() < tags[j].String()
	})
	return tags
}
