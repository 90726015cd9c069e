package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embedded(t *testing.T) *Bundle {
	t.Helper()
	b, err := Embedded(DefaultLanguage)
	require.NoError(t, err)
	return b
}

func TestEmbeddedBundleHasEveryLanguage(t *testing.T) {
	b := embedded(t)
	assert.Equal(t, []string{"de", "en", "es", "fa", "ko", "pt", "ru", "tr"}, b.Languages())

	en := b.Localizer("en")
	for _, lang := range b.Languages() {
		l := b.Localizer(lang)
		for key := range en.messages {
			_, ok := l.messages[key]
			assert.True(t, ok, "%s is missing %s", lang, key)
		}
	}
}

func TestNegotiate(t *testing.T) {
	b := embedded(t)

	cases := map[string]string{
		"":                                    "en",
		"   ":                                 "en",
		"fr":                                  "en",
		"ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7": "ko",
		"fr-CA,fr;q=0.9,de;q=0.5":             "de",
		"en;q=0.2,ru;q=0.8":                   "ru",
		"pt-BR":                               "pt",
		"TR":                                  "tr",
	}
	for header, want := range cases {
		assert.Equal(t, want, b.Negotiate(header), "header %q", header)
	}
}

func TestParseAcceptLanguage(t *testing.T) {
	assert.Equal(t, []string{"ko-KR", "ko", "en-US", "en"}, ParseAcceptLanguage("ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7"))
	assert.Equal(t, []string{"de", "es", "en"}, ParseAcceptLanguage("en;q=0.1, de, es;q=bogus"))
	assert.Nil(t, ParseAcceptLanguage(""))
}

func TestLoadFlattensNestedKeys(t *testing.T) {
	fsys := fstest.MapFS{
		"loc/en.json": {Data: []byte(`{"welcome":"Welcome","typeMismatch":{"date":"invalid date"}}`)},
		"loc/ko.json": {Data: []byte(`{"welcome":"환영합니다"}`)},
		"loc/xx.json": {Data: []byte(`{"welcome":"ignored"}`)},
	}
	b, err := Load(fsys, "loc", "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "ko"}, b.Languages())

	ko := b.Localizer("ko")
	assert.Equal(t, "환영합니다", ko.T("welcome"))
	assert.Equal(t, "invalid date", ko.T("typeMismatch.date"), "falls back to default language")
	assert.Equal(t, "missing.key", ko.T("missing.key"))

	assert.Equal(t, "en", b.Localizer("xx").Lang())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(fstest.MapFS{"loc/en.json": {Data: []byte(`{broken`)}}, "loc", "en")
	assert.Error(t, err)

	_, err = Load(fstest.MapFS{"loc/ko.json": {Data: []byte(`{}`)}}, "loc", "en")
	assert.Error(t, err)
}

func TestMiddlewareStoresLocalizer(t *testing.T) {
	b := embedded(t)

	var got string
	h := Middleware(b)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context()).T("welcome")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "Willkommen", got)
	assert.Equal(t, "de", rec.Header().Get("Content-Language"))

	var nilLocalizer *Localizer
	assert.Equal(t, "welcome", nilLocalizer.T("welcome"))
}
