// Package l10n provides a small value object for localized text blobs such
// as plan names and descriptions. Translations are stored as a flat map of
// BCP 47 language tags to strings; lookup falls back through language
// matching rather than failing on an exact-match miss.
package l10n

import (
	"maps"
	"slices"

	"golang.org/x/text/language"
)

// DefaultLanguage is used as the last resort when no requested language matches.
const DefaultLanguage = "en"

// Text holds translations of a single value keyed by language tag.
// A nil Text is valid and resolves to the empty string.
type Text map[string]string

// New returns a Text with a single translation.
func New(lang, value string) Text {
	return Text{lang: value}
}

// With returns a copy of the text with an added or replaced translation.
func (t Text) With(lang, value string) Text {
	out := make(Text, len(t)+1)
	maps.Copy(out, t)
	out[lang] = value
	return out
}

// In resolves the translation for the requested language. Resolution order:
// exact key match, closest match via x/text language matching (so "en-US"
// resolves to an "en" entry), the default language, then the first available
// translation in sorted key order so the result is deterministic.
func (t Text) In(lang string) string {
	if len(t) == 0 {
		return ""
	}
	if v, ok := t[lang]; ok {
		return v
	}

	keys := slices.Sorted(maps.Keys(t))

	if want, err := language.Parse(lang); err == nil {
		tags := make([]language.Tag, 0, len(keys))
		valid := make([]string, 0, len(keys))
		for _, k := range keys {
			tag, err := language.Parse(k)
			if err != nil {
				continue
			}
			tags = append(tags, tag)
			valid = append(valid, k)
		}
		if len(tags) > 0 {
			_, idx, conf := language.NewMatcher(tags).Match(want)
			if conf > language.No {
				return t[valid[idx]]
			}
		}
	}

	if v, ok := t[DefaultLanguage]; ok {
		return v
	}
	return t[keys[0]]
}

// String resolves the default-language translation.
func (t Text) String() string {
	return t.In(DefaultLanguage)
}

// IsEmpty reports whether the text carries no translations.
func (t Text) IsEmpty() bool {
	return len(t) == 0
}

// Languages returns the available language tags in sorted order.
func (t Text) Languages() []string {
	return slices.Sorted(maps.Keys(t))
}
