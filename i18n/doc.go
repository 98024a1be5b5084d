// Package i18n provides a goForms.Translator backed by golang.org/x/text catalogs.
//
// Messages are registered per translation domain and language. The request locale is
// carried in the context (see WithLocale and LocaleMiddleware) and matched against the
// languages a domain knows, falling back to the catalog's default language.
//
// Registered messages are x/text format strings: a literal percent sign is written %%.
// Messages that were never registered are returned unchanged.
package i18n
