// Package i18n serves the storefront's static message tables.
package i18n

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localesFS embed.FS

var ErrUnsupported = errors.New("unsupported language")

type localeFile struct {
	Locale   string            `yaml:"locale"`
	Name     string            `yaml:"name"`
	Messages map[string]string `yaml:"messages"`
}

type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Catalog is immutable after Load and safe for concurrent use.
type Catalog struct {
	fallback  string
	tables    map[string]map[string]string
	languages []Language
	codes     []string
	matcher   language.Matcher
}

// Load reads the embedded locale files. fallback must be one of them.
func Load(fallback string) (*Catalog, error) {
	paths, err := fs.Glob(localesFS, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list locales: %w", err)
	}
	sort.Strings(paths)

	c := &Catalog{fallback: fallback, tables: map[string]map[string]string{}}
	for _, p := range paths {
		raw, err := localesFS.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		var lf localeFile
		if err := yaml.Unmarshal(raw, &lf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		if lf.Locale == "" {
			return nil, fmt.Errorf("%s: missing locale", p)
		}
		c.tables[lf.Locale] = lf.Messages
		c.languages = append(c.languages, Language{Code: lf.Locale, Name: lf.Name})
	}
	if _, ok := c.tables[fallback]; !ok {
		return nil, fmt.Errorf("fallback language %q: %w", fallback, ErrUnsupported)
	}

	// the matcher treats its first tag as the default
	c.codes = []string{fallback}
	for _, l := range c.languages {
		if l.Code != fallback {
			c.codes = append(c.codes, l.Code)
		}
	}
	tags := make([]language.Tag, 0, len(c.codes))
	for _, code := range c.codes {
		tags = append(tags, language.Make(code))
	}
	c.matcher = language.NewMatcher(tags)
	return c, nil
}

func (c *Catalog) Fallback() string { return c.fallback }

func (c *Catalog) Languages() []Language {
	out := make([]Language, len(c.languages))
	copy(out, c.languages)
	return out
}

func (c *Catalog) Supported(code string) bool {
	_, ok := c.tables[code]
	return ok
}

// Translate looks key up in lang, then in the fallback language, and finally
// returns the key itself.
func (c *Catalog) Translate(lang, key string) string {
	if v, ok := c.tables[lang][key]; ok && v != "" {
		return v
	}
	if v, ok := c.tables[c.fallback][key]; ok && v != "" {
		return v
	}
	return key
}

// Messages returns the full table for lang with fallback entries filled in.
func (c *Catalog) Messages(lang string) map[string]string {
	out := make(map[string]string, len(c.tables[c.fallback]))
	for k, v := range c.tables[c.fallback] {
		out[k] = v
	}
	for k, v := range c.tables[lang] {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Match picks the best supported language for an Accept-Language header.
func (c *Catalog) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.fallback
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(c.codes) {
		return c.fallback
	}
	return c.codes[idx]
}

// Normalize maps code (e.g. "fr-CA") onto a supported language.
func (c *Catalog) Normalize(code string) (string, bool) {
	if c.Supported(code) {
		return code, true
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	if c.Supported(base.String()) {
		return base.String(), true
	}
	return "", false
}

// Preference is one visitor's selected language.
type Preference struct {
	mu      sync.RWMutex
	catalog *Catalog
	code    string
	save    func(ctx context.Context, code string) error
}

// NewPreference starts from the persisted code, or the fallback when it is
// missing or no longer supported.
func NewPreference(c *Catalog, persisted string, save func(ctx context.Context, code string) error) *Preference {
	code := c.fallback
	if n, ok := c.Normalize(persisted); ok {
		code = n
	}
	return &Preference{catalog: c, code: code, save: save}
}

func (p *Preference) Language() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.code
}

// Set persists and selects code.
func (p *Preference) Set(ctx context.Context, code string) error {
	n, ok := p.catalog.Normalize(code)
	if !ok {
		return fmt.Errorf("%q: %w", code, ErrUnsupported)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.save != nil {
		if err := p.save(ctx, n); err != nil {
			return fmt.Errorf("save language: %w", err)
		}
	}
	p.code = n
	return nil
}

// T translates key in the selected language.
func (p *Preference) T(key string) string {
	return p.catalog.Translate(p.Language(), key)
}
