package i18n

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	goForms "github.com/MrEthical07/goForms"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// Catalog holds translations grouped by domain. It implements goForms.Translator and is
// safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	fallback language.Tag
	domains  map[goForms.Domain]*domainCatalog
}

type domainCatalog struct {
	builder *catalog.Builder
	langs   []language.Tag
	matcher language.Matcher
	keys    map[language.Tag]map[string]struct{}
}

// NewCatalog returns an empty catalog whose default language is fallback.
func NewCatalog(fallback language.Tag) *Catalog {
	return &Catalog{
		fallback: fallback,
		domains:  make(map[goForms.Domain]*domainCatalog),
	}
}

// Set registers msg as the translation of key in domain for tag.
func (c *Catalog) Set(domain goForms.Domain, tag language.Tag, key, msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := c.domainLocked(domain)
	// Gettext formats the translation, so literal percent signs must survive it.
	if err := d.builder.SetString(tag, key, strings.ReplaceAll(msg, "%", "%%")); err != nil {
		return fmt.Errorf("i18n: set %q for %s: %w", key, tag, err)
	}
	d.addKey(tag, key)
	return nil
}

// SetPlural registers the singular and plural forms of key, selected by the count passed
// to Ngettext. Either form may reference the count with %d.
func (c *Catalog) SetPlural(domain goForms.Domain, tag language.Tag, key, one, other string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := c.domainLocked(domain)
	if err := d.builder.Set(tag, key, plural.Selectf(1, "%d", plural.One, one, plural.Other, other)); err != nil {
		return fmt.Errorf("i18n: set plural %q for %s: %w", key, tag, err)
	}
	d.addKey(tag, key)
	return nil
}

// file layout: domain -> language -> key -> message.
type catalogFile map[string]map[string]map[string]string

// LoadFile registers every message of a YAML catalog file.
func (c *Catalog) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.LoadYAML(raw)
}

// LoadYAML registers every message of a YAML document laid out as
// domain, then language tag, then key to message. The domain "default" maps to the
// empty domain.
func (c *Catalog) LoadYAML(data []byte) error {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("i18n: parse catalog: %w", err)
	}

	var errs []error
	for domain, langs := range file {
		if domain == "default" {
			domain = ""
		}
		for lang, msgs := range langs {
			tag, err := language.Parse(lang)
			if err != nil {
				errs = append(errs, fmt.Errorf("i18n: domain %q: %w", domain, err))
				continue
			}
			for key, msg := range msgs {
				if err := c.Set(goForms.Domain(domain), tag, key, msg); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}
	return errors.Join(errs...)
}

// Translations returns the messages of domain for the locale carried by ctx.
func (c *Catalog) Translations(ctx context.Context, domain goForms.Domain) goForms.Translations {
	tag := c.fallback
	if t, ok := LocaleFromContext(ctx); ok {
		tag = t
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.domains[domain]
	if !ok {
		return goForms.DefaultTranslations{}
	}

	_, idx, conf := d.matcher.Match(tag)
	matched := c.fallback
	if conf != language.No {
		matched = d.langs[idx]
	}

	keys := make(map[string]struct{}, len(d.keys[matched]))
	for k := range d.keys[matched] {
		keys[k] = struct{}{}
	}
	return &translations{
		printer: message.NewPrinter(matched, message.Catalog(d.builder)),
		keys:    keys,
	}
}

func (c *Catalog) domainLocked(domain goForms.Domain) *domainCatalog {
	d, ok := c.domains[domain]
	if !ok {
		d = &domainCatalog{
			builder: catalog.NewBuilder(catalog.Fallback(c.fallback)),
			keys:    make(map[language.Tag]map[string]struct{}),
		}
		c.domains[domain] = d
	}
	return d
}

func (d *domainCatalog) addKey(tag language.Tag, key string) {
	set, ok := d.keys[tag]
	if !ok {
		set = make(map[string]struct{})
		d.keys[tag] = set
		d.langs = append(d.langs, tag)
		d.matcher = language.NewMatcher(d.langs)
	}
	set[key] = struct{}{}
}

type translations struct {
	printer *message.Printer
	keys    map[string]struct{}
}

func (t *translations) Gettext(msg string) string {
	if _, ok := t.keys[msg]; !ok {
		return msg
	}
	return t.printer.Sprintf(msg)
}

func (t *translations) Ngettext(singular, pluralMsg string, n int) string {
	if _, ok := t.keys[singular]; ok {
		return t.printer.Sprintf(singular, n)
	}
	if n == 1 {
		return singular
	}
	return pluralMsg
}
