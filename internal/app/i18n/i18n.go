// Package i18n loads locale bundles and negotiates the response language from
// the Accept-Language header.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultLanguage is used when negotiation finds no supported language.
const DefaultLanguage = "en"

// AllowedLanguages lists the languages the clinic is translated into.
var AllowedLanguages = []string{"en", "ko", "de", "es", "fa", "pt", "ru", "tr"}

//go:embed locales/*.json
var locales embed.FS

// Bundle holds flattened messages per language.
type Bundle struct {
	defaultLang string
	messages    map[string]map[string]string
}

// Embedded loads the locale files compiled into the binary.
func Embedded(defaultLang string) (*Bundle, error) {
	return Load(locales, "locales", defaultLang)
}

// Load reads every <lang>.json in dir. Nested objects become dotted keys.
// Only allowed languages are kept.
func Load(fsys fs.FS, dir, defaultLang string) (*Bundle, error) {
	if defaultLang == "" {
		defaultLang = DefaultLanguage
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read %s: %w", dir, err)
	}

	b := &Bundle{defaultLang: defaultLang, messages: make(map[string]map[string]string)}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}
		lang := strings.TrimSuffix(entry.Name(), ".json")
		if !isAllowed(lang) {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", entry.Name(), err)
		}
		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("i18n: %s is not valid JSON", entry.Name())
		}
		messages := make(map[string]string)
		flatten("", gjson.ParseBytes(data), messages)
		b.messages[lang] = messages
	}

	if _, ok := b.messages[defaultLang]; !ok {
		return nil, fmt.Errorf("i18n: default language %q has no locale file", defaultLang)
	}
	return b, nil
}

func flatten(prefix string, value gjson.Result, out map[string]string) {
	value.ForEach(func(key, val gjson.Result) bool {
		name := key.String()
		if prefix != "" {
			name = prefix + "." + name
		}
		if val.IsObject() {
			flatten(name, val, out)
		} else {
			out[name] = val.String()
		}
		return true
	})
}

func isAllowed(lang string) bool {
	for _, allowed := range AllowedLanguages {
		if allowed == lang {
			return true
		}
	}
	return false
}

// Languages returns the loaded languages in sorted order.
func (b *Bundle) Languages() []string {
	out := make([]string, 0, len(b.messages))
	for lang := range b.messages {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// DefaultLanguage returns the fallback language.
func (b *Bundle) DefaultLanguage() string { return b.defaultLang }

// Negotiate picks the best loaded language for an Accept-Language header.
// Tags are tried in q order; a regional tag falls back to its primary subtag.
func (b *Bundle) Negotiate(acceptLanguage string) string {
	for _, tag := range ParseAcceptLanguage(acceptLanguage) {
		tag = strings.ToLower(tag)
		if _, ok := b.messages[tag]; ok {
			return tag
		}
		if i := strings.IndexByte(tag, '-'); i > 0 {
			if _, ok := b.messages[tag[:i]]; ok {
				return tag[:i]
			}
		}
	}
	return b.defaultLang
}

type weightedTag struct {
	tag string
	q   float64
}

// ParseAcceptLanguage splits the header into language tags ordered by
// descending quality. Equal weights keep header order and an unparsable q
// counts as 1.
func ParseAcceptLanguage(header string) []string {
	if strings.TrimSpace(header) == "" {
		return nil
	}

	var tags []weightedTag
	for _, entry := range strings.Split(header, ",") {
		parts := strings.Split(entry, ";")
		tag := strings.TrimSpace(parts[0])
		if tag == "" {
			continue
		}
		q := 1.0
		for _, param := range parts[1:] {
			param = strings.TrimSpace(param)
			if !strings.HasPrefix(param, "q=") {
				continue
			}
			if parsed, err := strconv.ParseFloat(param[2:], 64); err == nil {
				q = parsed
			}
		}
		tags = append(tags, weightedTag{tag: tag, q: q})
	}

	sort.SliceStable(tags, func(i, j int) bool { return tags[i].q > tags[j].q })

	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.tag
	}
	return out
}

// Localizer returns the translator for lang, falling back to the default
// language for unknown languages.
func (b *Bundle) Localizer(lang string) *Localizer {
	messages, ok := b.messages[lang]
	if !ok {
		lang = b.defaultLang
		messages = b.messages[lang]
	}
	return &Localizer{lang: lang, messages: messages, fallback: b.messages[b.defaultLang]}
}

// Localizer translates message keys for one language.
type Localizer struct {
	lang     string
	messages map[string]string
	fallback map[string]string
}

// Lang returns the language code.
func (l *Localizer) Lang() string {
	if l == nil {
		return DefaultLanguage
	}
	return l.lang
}

// T translates key. Missing keys fall back to the default language and then
// to the key itself.
func (l *Localizer) T(key string) string {
	if l == nil {
		return key
	}
	if msg, ok := l.messages[key]; ok {
		return msg
	}
	if msg, ok := l.fallback[key]; ok {
		return msg
	}
	return key
}

type contextKey struct{}

// WithLocalizer stores l in ctx.
func WithLocalizer(ctx context.Context, l *Localizer) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the request's localizer, or nil when none was stored.
// A nil Localizer is usable and returns keys untranslated.
func FromContext(ctx context.Context) *Localizer {
	l, _ := ctx.Value(contextKey{}).(*Localizer)
	return l
}

// Middleware negotiates the language of every request and stores the
// localizer in the request context.
func Middleware(b *Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := b.Negotiate(r.Header.Get("Accept-Language"))
			w.Header().Set("Content-Language", lang)
			next.ServeHTTP(w, r.WithContext(WithLocalizer(r.Context(), b.Localizer(lang))))
		})
	}
}
