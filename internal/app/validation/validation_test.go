package validation

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ownerForm struct {
	FirstName string `form:"firstName" validate:"notblank"`
	Telephone string `form:"telephone" validate:"notblank,telephone"`
}

type visitForm struct {
	Date        string `form:"date" validate:"notblank,isodate,notfuture"`
	Description string `form:"description" validate:"notblank"`
}

type upperTranslator struct{}

func (upperTranslator) T(key string) string { return strings.ToUpper(key) }

func withToday(t *testing.T, day string) {
	t.Helper()
	fixed, err := time.Parse(DateLayout, day)
	require.NoError(t, err)
	original := Now
	Now = func() time.Time { return fixed }
	t.Cleanup(func() { Now = original })
}

func TestValidateOwnerForm(t *testing.T) {
	errs := Validate(ownerForm{FirstName: "  ", Telephone: "12345"})
	require.False(t, errs.Empty())
	assert.Equal(t, []string{"firstName", "telephone"}, errs.Fields())
	assert.Equal(t, []string{KeyRequired}, errs.Keys("firstName"))
	assert.Equal(t, []string{KeyTelephone}, errs.Keys("telephone"))

	errs = Validate(ownerForm{FirstName: "George", Telephone: "6085551023"})
	assert.True(t, errs.Empty())
}

func TestValidateDates(t *testing.T) {
	withToday(t, "2024-06-15")

	cases := []struct {
		date string
		want []string
	}{
		{date: "2024-06-15"},
		{date: "2001-01-01"},
		{date: "", want: []string{KeyRequired}},
		{date: "15/06/2024", want: []string{KeyDate}},
		{date: "2024-02-30", want: []string{KeyDate}},
		{date: "2024-06-16", want: []string{KeyNotFuture}},
	}
	for _, tc := range cases {
		errs := Validate(visitForm{Date: tc.date, Description: "checkup"})
		assert.Equal(t, tc.want, errs.Keys("date"), "date %q", tc.date)
	}
}

func TestErrorsAddAndTranslate(t *testing.T) {
	errs := Validate(visitForm{Date: "2000-01-01"})
	errs.Add("name", KeyDuplicate)
	errs.Add("description", "extra")

	assert.True(t, errs.Has("description"))
	assert.True(t, errs.Has("name"))
	assert.False(t, errs.Has("date"))
	assert.Contains(t, errs.Error(), "description: required, extra")

	translated := errs.Translate(upperTranslator{})
	assert.Equal(t, "REQUIRED, EXTRA", translated["description"])
	assert.Equal(t, "DUPLICATE", translated["name"])
}

func TestNilErrorsIsEmpty(t *testing.T) {
	var errs *Errors
	assert.True(t, errs.Empty())
	assert.False(t, errs.Has("x"))
	assert.Empty(t, errs.Fields())
}

func TestBind(t *testing.T) {
	var form visitForm
	Bind(url.Values{"date": {" 2020-01-01 "}, "description": {"shots"}, "ignored": {"x"}}, &form)
	assert.Equal(t, "2020-01-01", form.Date)
	assert.Equal(t, "shots", form.Description)
}
