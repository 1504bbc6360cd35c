package scenario

import "golang.org/x/text/language"

// Translator resolves a translation key for a locale. Implementations live
// outside this module; ok is false when the key has no translation.
type Translator interface {
	Translate(tag language.Tag, key string) (text string, ok bool)
}

// Localized picks the user-facing string for a literal/key pair. A key the
// translator resolves takes precedence over the literal fallback.
func Localized(tr Translator, tag language.Tag, literal, key string) string {
	if key == "" || tr == nil {
		return literal
	}
	if text, ok := tr.Translate(tag, key); ok && text != "" {
		return text
	}
	return literal
}

// SupportedLanguages are the locales content is authored for. The first
// entry is the fallback.
var SupportedLanguages = []language.Tag{
	language.English,
	language.Spanish,
	language.French,
	language.German,
}

var matcher = language.NewMatcher(SupportedLanguages)

// NegotiateLanguage picks the best supported locale for an Accept-Language
// header value.
func NegotiateLanguage(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return SupportedLanguages[0]
	}
	_, idx, _ := matcher.Match(tags...)
	return SupportedLanguages[idx]
}
