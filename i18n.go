package goForms

import "context"

// Domain is an opaque handle naming a translation domain. The empty Domain selects the
// translator's default.
type Domain string

// Translations looks up translated messages.
type Translations interface {
	Gettext(message string) string
	Ngettext(singular, plural string, n int) string
}

// Translator is the optional i18n collaborator injected through [Builder.WithTranslator].
type Translator interface {
	Translations(ctx context.Context, domain Domain) Translations
}

// DefaultTranslations returns messages unchanged.
type DefaultTranslations struct{}

func (DefaultTranslations) Gettext(message string) string {
	return message
}

func (DefaultTranslations) Ngettext(singular, plural string, n int) string {
	if n == 1 {
		return singular
	}
	return plural
}
